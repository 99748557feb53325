package cinematography

import (
	"reflect"
	"strings"
	"testing"

	"github.com/brian95240/elite-video-pipeline-v3.0/archetype"
)

func mediumCuriosity(t *testing.T) archetype.Profile {
	t.Helper()
	p, err := archetype.Default().Profile("curiosity", archetype.Medium)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFilterChain_OrderAndContent(t *testing.T) {
	e := NewEngine()
	p := mediumCuriosity(t)

	chain := e.FilterChain(p)

	// Camera movement template first, then grade, then vignette.
	if !strings.HasPrefix(chain, "scale=iw*1.1:ih*1.1,crop=1920:1080") {
		t.Errorf("chain does not start with dolly_forward template: %s", chain)
	}
	if !strings.Contains(chain, "eq=saturation=0.9:contrast=1.15") {
		t.Errorf("chain missing mystery_teal grade: %s", chain)
	}
	if !strings.Contains(chain, "vignette='PI/4*0.3'") {
		t.Errorf("chain missing vignette: %s", chain)
	}
}

func TestFilterChain_UnknownGradeSynthesized(t *testing.T) {
	e := NewEngine()
	p := archetype.Profile{
		Emotion: "fear",
		Camera:  archetype.Camera{Movement: "handheld_slight_shake"},
		Color:   archetype.Color{Grade: "horror_green_tint", Saturation: -30, Contrast: 1.5},
	}

	chain := e.FilterChain(p)
	if !strings.Contains(chain, "eq=saturation=0.7:contrast=1.5") {
		t.Errorf("unknown grade not synthesized from numeric values: %s", chain)
	}
}

func TestFilterChain_EmptyProfileIsNull(t *testing.T) {
	e := NewEngine()
	if chain := e.FilterChain(archetype.Profile{}); chain != "null" {
		t.Errorf("FilterChain(empty) = %q, want null", chain)
	}
}

func TestFilterChain_UnknownVFXSkipped(t *testing.T) {
	e := NewEngine()
	p := archetype.Profile{
		Emotion: "wonder",
		VFX:     []string{"nonexistent_effect", "depth_fog"},
	}

	chain := e.FilterChain(p)
	if strings.Contains(chain, "nonexistent") {
		t.Errorf("unknown vfx leaked into chain: %s", chain)
	}
	if chain != "gblur=sigma=5:steps=2" {
		t.Errorf("chain = %q, want depth_fog template only", chain)
	}
}

func TestFFmpegCommand(t *testing.T) {
	e := NewEngine()
	p := mediumCuriosity(t)

	cmd := e.FFmpegCommand("in.mp4", "out.mp4", p, 30)

	if !strings.HasPrefix(cmd, "ffmpeg -i in.mp4 -t 30 -filter_complex ") {
		t.Errorf("command prefix wrong: %s", cmd)
	}
	if !strings.Contains(cmd, "-c:v libx264 -preset medium -crf 23") {
		t.Errorf("missing video codec settings: %s", cmd)
	}
	if !strings.Contains(cmd, "-c:a aac -b:a 128k") {
		t.Errorf("missing audio codec settings: %s", cmd)
	}
	if !strings.HasSuffix(cmd, " out.mp4") {
		t.Errorf("missing output file: %s", cmd)
	}

	// No -t flag without a duration.
	if cmd := e.FFmpegCommand("in.mp4", "out.mp4", p, 0); strings.Contains(cmd, " -t ") {
		t.Errorf("zero duration added a -t flag: %s", cmd)
	}
}

func TestValidate(t *testing.T) {
	e := NewEngine()

	if errs := e.Validate(mediumCuriosity(t)); len(errs) != 0 {
		t.Errorf("Validate(valid profile) = %v, want none", errs)
	}
	if errs := e.Validate(archetype.Profile{}); len(errs) != 3 {
		t.Errorf("Validate(empty profile) = %v, want 3 errors", errs)
	}
}

func TestModulate(t *testing.T) {
	e := NewEngine()
	p := archetype.Profile{
		Camera: archetype.Camera{Speed: 1.0},
		Color:  archetype.Color{Saturation: 20, Contrast: 1.4},
	}

	light := e.Modulate(p, archetype.Light)
	if light.Camera.Speed != 0.5 || light.Color.Saturation != 10 {
		t.Errorf("light modulation = %+v", light)
	}
	if got := light.Color.Contrast; got != 1.2 {
		t.Errorf("light contrast = %g, want 1.2", got)
	}

	medium := e.Modulate(p, archetype.Medium)
	if !reflect.DeepEqual(medium, p) {
		t.Errorf("medium modulation changed the profile: %+v", medium)
	}

	heavy := e.Modulate(p, archetype.Heavy)
	if heavy.Camera.Speed != 1.5 || heavy.Color.Saturation != 30 {
		t.Errorf("heavy modulation = %+v", heavy)
	}
	if got := heavy.Color.Contrast; got < 1.599 || got > 1.601 {
		t.Errorf("heavy contrast = %g, want 1.6", got)
	}
}

func TestFilterStats(t *testing.T) {
	s := NewEngine().FilterStats()
	if s.TotalTemplates != len(filterTemplates) {
		t.Errorf("TotalTemplates = %d, want %d", s.TotalTemplates, len(filterTemplates))
	}
	if s.CameraMovements == 0 || s.ColorGrades == 0 || s.VFXEffects == 0 {
		t.Errorf("stats have empty categories: %+v", s)
	}
}

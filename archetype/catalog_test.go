package archetype

import (
	"context"
	"errors"
	"strings"
	"testing"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
	"github.com/brian95240/elite-video-pipeline-v3.0/store"
	"github.com/brian95240/elite-video-pipeline-v3.0/store/memory"
)

func TestDefault_TwelveArchetypes(t *testing.T) {
	c := Default()
	if c.Len() != 12 {
		t.Fatalf("Len = %d, want 12", c.Len())
	}

	want := []string{
		"curiosity", "fear", "joy", "melancholy", "nostalgia", "rage",
		"romance", "serenity", "tension", "triumph", "urgency", "wonder",
	}
	got := c.Emotions()
	if len(got) != len(want) {
		t.Fatalf("Emotions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Emotions[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestProfile_EveryEmotionEveryIntensity(t *testing.T) {
	c := Default()
	for _, emotion := range c.Emotions() {
		for _, intensity := range Intensities() {
			p, err := c.Profile(emotion, intensity)
			if err != nil {
				t.Fatalf("Profile(%s, %s) error: %v", emotion, intensity, err)
			}
			if p.Camera.Movement == "" {
				t.Errorf("Profile(%s, %s): empty camera movement", emotion, intensity)
			}
			if p.Color.Grade == "" {
				t.Errorf("Profile(%s, %s): empty color grade", emotion, intensity)
			}
			if len(p.VFX) == 0 {
				t.Errorf("Profile(%s, %s): no vfx layers", emotion, intensity)
			}
			if p.FFmpeg == "" {
				t.Errorf("Profile(%s, %s): empty ffmpeg template", emotion, intensity)
			}
		}
	}
}

func TestProfile_UnknownEmotionRejected(t *testing.T) {
	c := Default()
	_, err := c.Profile("boredom", Medium)
	if !errors.Is(err, pipeline.ErrValidation) {
		t.Errorf("Profile(boredom) error = %v, want ErrValidation", err)
	}
	if c.Has("boredom") {
		t.Error("Has(boredom) = true, want false")
	}
}

func TestProfile_SpotChecks(t *testing.T) {
	c := Default()

	p, err := c.Profile("curiosity", Heavy)
	if err != nil {
		t.Fatal(err)
	}
	if p.Camera.Movement != "push_in_dramatic" || p.Camera.FocalLength != 85 {
		t.Errorf("curiosity/heavy camera = %+v", p.Camera)
	}
	if p.Color.Grade != "noir_blue" || p.Color.Saturation != -20 || p.Color.Vignette != 0.5 {
		t.Errorf("curiosity/heavy color = %+v", p.Color)
	}

	p, err = c.Profile("rage", Heavy)
	if err != nil {
		t.Fatal(err)
	}
	if p.Color.Extra["red_crush"] != 0.3 {
		t.Errorf("rage/heavy red_crush = %v, want 0.3", p.Color.Extra["red_crush"])
	}

	// The heavy urgency treatment varies focal length per shot.
	p, err = c.Profile("urgency", Heavy)
	if err != nil {
		t.Fatal(err)
	}
	if p.Camera.FocalLength != 0 {
		t.Errorf("urgency/heavy focal length = %v, want 0", p.Camera.FocalLength)
	}
}

func TestParseIntensity(t *testing.T) {
	for _, raw := range []string{"light", "medium", "heavy"} {
		if _, err := ParseIntensity(raw); err != nil {
			t.Errorf("ParseIntensity(%q) error: %v", raw, err)
		}
	}
	if _, err := ParseIntensity("extreme"); !errors.Is(err, pipeline.ErrValidation) {
		t.Errorf("ParseIntensity(extreme) error = %v, want ErrValidation", err)
	}
}

func TestSeed_WritesAllVertices(t *testing.T) {
	c := Default()
	mem := memory.New()

	n, err := c.Seed(context.Background(), mem)
	if err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	if n != 36 {
		t.Errorf("Seed = %d vertices, want 36", n)
	}

	keys, err := mem.ScanKeys(context.Background(), store.VertexKeyPrefix)
	if err != nil {
		t.Fatalf("ScanKeys error: %v", err)
	}
	if len(keys) != 36 {
		t.Errorf("vertex keys = %d, want 36", len(keys))
	}

	attrs, err := mem.GetState(context.Background(), store.VertexKey("fear", "heavy"))
	if err != nil {
		t.Fatalf("GetState error: %v", err)
	}
	for _, field := range []string{"camera", "color", "vfx", "ffmpeg"} {
		if attrs[field] == "" {
			t.Errorf("fear:heavy missing %q field", field)
		}
	}
	if !strings.Contains(attrs["color"], "horror_green_tint") {
		t.Errorf("fear:heavy color = %s, want horror_green_tint grade", attrs["color"])
	}
}

// Package cinematography turns archetype profiles into ffmpeg filter chains
// and render commands, and gates the resulting grades against safety
// thresholds.
package cinematography

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/brian95240/elite-video-pipeline-v3.0/archetype"
)

// filterTemplates maps profile vocabulary (camera movements, color grades,
// VFX layers) to concrete ffmpeg filter expressions. Grades without a
// template fall back to a synthesized eq filter.
var filterTemplates = map[string]string{
	// Camera movements
	"slow_zoom_in":     "zoompan=z='min(zoom+0.0015,1.5)':d=900:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=1920x1080",
	"push_in_dramatic": "zoompan=z='min(zoom+0.003,2.0)':d=900:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=1920x1080",
	"dolly_forward":    "scale=iw*1.1:ih*1.1,crop=1920:1080",
	"slow_rise":        "zoompan=z='1':y='max(ih-ih/zoom,0-t*20)':d=900:s=1920x1080",
	"crane_up_hero":    "zoompan=z='1':y='max(ih-ih/zoom,0-t*40)':d=900:s=1920x1080",

	// Color grades
	"neutral_cool":     "eq=saturation=0.95:contrast=1.05",
	"mystery_teal":     "eq=saturation=0.9:contrast=1.15,colorbalance=bs=0.1:gs=0.05",
	"noir_blue":        "eq=saturation=0.8:contrast=1.35,colorbalance=bs=0.2",
	"warm_lift":        "eq=saturation=1.1:contrast=1.05,colorbalance=rs=0.1:gs=0.05",
	"golden_hour":      "eq=saturation=1.2:contrast=1.15,colorbalance=rs=0.15:gs=0.1",
	"epic_teal_orange": "eq=saturation=1.35:contrast=1.3,colorbalance=rs=0.2:bs=-0.1",

	// VFX layers
	"lens_flare":           "flare=0.5:0.5:2.0",
	"vignette_light":       "vignette='PI/4*0.2'",
	"vignette_heavy":       "vignette='PI/4*0.6'",
	"chromatic_aberration": "chromakey=0.1",
	"depth_fog":            "gblur=sigma=5:steps=2",
	"particle_glow":        "eq=brightness=0.1",

	// Distortion
	"handheld_shake": "transform='sin(2*PI*t*2)*2'",
	"dutch_tilt":     "rotate=15*PI/180",
	"screen_glitch":  "noise=alls=20:allf=t",
	"strobe_flash":   "eq=brightness='if(lt(t,0.1),1.5,1.0)'",

	// Motion
	"speed_lines": "scale=iw:ih,fps=120",
	"motion_blur": "minterpolate='fps=120:mi_mode=mci'",
	"zoom_blur":   "zoompan=z='if(eq(on,1),1.5,zoom-0.01)':d=1",
}

// Engine renders archetype profiles into ffmpeg filter chains.
type Engine struct {
	logger *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns a ready Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// FilterChain builds the comma-joined ffmpeg filter chain for a profile:
// camera movement, then color grade, then vignette, then VFX layers in
// order. Vocabulary without a template is skipped with a warning, except
// color grades which synthesize an eq filter from the numeric grade values.
// An empty chain is rendered as the ffmpeg null filter.
func (e *Engine) FilterChain(p archetype.Profile) string {
	var filters []string

	if m := p.Camera.Movement; m != "" {
		if tpl, ok := filterTemplates[m]; ok {
			filters = append(filters, tpl)
		} else {
			e.logger.Warn("unknown camera movement", "movement", m, "emotion", p.Emotion)
		}
	}

	if g := p.Color.Grade; g != "" {
		if tpl, ok := filterTemplates[g]; ok {
			filters = append(filters, tpl)
		} else {
			filters = append(filters, fmt.Sprintf("eq=saturation=%g:contrast=%g",
				1.0+p.Color.Saturation/100, p.Color.Contrast))
		}
	}

	if v := p.Color.Vignette; v != 0 {
		filters = append(filters, fmt.Sprintf("vignette='PI/4*%g'", v))
	}

	for _, effect := range p.VFX {
		if tpl, ok := filterTemplates[effect]; ok {
			filters = append(filters, tpl)
		} else {
			e.logger.Warn("unknown vfx layer", "vfx", effect, "emotion", p.Emotion)
		}
	}

	if len(filters) == 0 {
		return "null"
	}
	return strings.Join(filters, ",")
}

// FFmpegCommand assembles the full render command for a profile. A positive
// duration adds a -t limit.
func (e *Engine) FFmpegCommand(input, output string, p archetype.Profile, duration float64) string {
	var b strings.Builder
	b.WriteString("ffmpeg -i ")
	b.WriteString(input)
	if duration > 0 {
		fmt.Fprintf(&b, " -t %g", duration)
	}
	fmt.Fprintf(&b, " -filter_complex %q", e.FilterChain(p))
	b.WriteString(" -c:v libx264 -preset medium -crf 23")
	b.WriteString(" -c:a aac -b:a 128k ")
	b.WriteString(output)
	return b.String()
}

// Validate checks a profile has the shape the engine needs.
func (e *Engine) Validate(p archetype.Profile) []string {
	var errs []string
	if p.Camera.Movement == "" {
		errs = append(errs, "camera movement is required")
	}
	if p.Color.Grade == "" {
		errs = append(errs, "color grade is required")
	}
	if p.Emotion == "" {
		errs = append(errs, "emotion is required")
	}
	return errs
}

// Modulate scales a profile for an intensity level: light halves, heavy
// amplifies by 1.5. Camera speed and saturation scale directly; contrast
// scales its distance from the neutral 1.0.
func (e *Engine) Modulate(p archetype.Profile, intensity archetype.Intensity) archetype.Profile {
	multiplier := 1.0
	switch intensity {
	case archetype.Light:
		multiplier = 0.5
	case archetype.Heavy:
		multiplier = 1.5
	}

	p.Camera.Speed *= multiplier
	p.Color.Saturation *= multiplier
	p.Color.Contrast = 1.0 + (p.Color.Contrast-1.0)*multiplier
	return p
}

// Stats summarizes the filter template vocabulary by category.
type Stats struct {
	TotalTemplates    int `json:"total_templates"`
	CameraMovements   int `json:"camera_movements"`
	ColorGrades       int `json:"color_grades"`
	VFXEffects        int `json:"vfx_effects"`
	DistortionEffects int `json:"distortion_effects"`
	MotionEffects     int `json:"motion_effects"`
}

// FilterStats reports how many templates exist per category. Categories
// overlap so the counts do not sum to the total.
func (e *Engine) FilterStats() Stats {
	containsAny := func(k string, subs ...string) bool {
		for _, sub := range subs {
			if strings.Contains(k, sub) {
				return true
			}
		}
		return false
	}

	s := Stats{TotalTemplates: len(filterTemplates)}
	for k := range filterTemplates {
		if containsAny(k, "zoom", "dolly", "pan", "crane") {
			s.CameraMovements++
		}
		if containsAny(k, "cool", "warm", "golden", "noir", "epic") {
			s.ColorGrades++
		}
		if containsAny(k, "flare", "vignette", "glow", "fog", "glitch") {
			s.VFXEffects++
		}
		if containsAny(k, "shake", "tilt", "glitch", "strobe") {
			s.DistortionEffects++
		}
		if containsAny(k, "speed", "blur", "motion") {
			s.MotionEffects++
		}
	}
	return s
}

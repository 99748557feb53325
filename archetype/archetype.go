// Package archetype holds the emotional index: the twelve cinematographic
// archetypes a job can request and their per-intensity camera, color grade,
// VFX, and ffmpeg profiles.
package archetype

import (
	"fmt"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
)

// Version identifies the index generation. Seven archetypes carry over from
// v2.0 and five were added in v3.0.
const Version = "v3.0"

// Intensity scales a profile. Every archetype defines all three.
type Intensity string

const (
	Light  Intensity = "light"
	Medium Intensity = "medium"
	Heavy  Intensity = "heavy"
)

// Intensities lists the valid levels in ascending order.
func Intensities() []Intensity { return []Intensity{Light, Medium, Heavy} }

// ParseIntensity validates a raw intensity string.
func ParseIntensity(raw string) (Intensity, error) {
	switch Intensity(raw) {
	case Light, Medium, Heavy:
		return Intensity(raw), nil
	}
	return "", fmt.Errorf("pipeline: intensity %q: %w", raw, pipeline.ErrValidation)
}

// Camera describes the camera treatment at one intensity. FocalLength is in
// millimeters; zero means the profile varies the focal length per shot.
type Camera struct {
	Movement    string  `json:"movement"`
	Angle       string  `json:"angle"`
	Speed       float64 `json:"speed"`
	FocalLength float64 `json:"focal_length"`
}

// Color describes the grade at one intensity. Saturation is a percentage
// offset from neutral, Contrast a multiplier around 1.0. Extra carries the
// grade-specific knobs only some archetypes use (red_tint, diffusion, ...).
type Color struct {
	Grade      string             `json:"grade"`
	Saturation float64            `json:"saturation"`
	Contrast   float64            `json:"contrast"`
	Vignette   float64            `json:"vignette,omitempty"`
	Bloom      float64            `json:"bloom,omitempty"`
	Brightness float64            `json:"brightness,omitempty"`
	Gamma      float64            `json:"gamma,omitempty"`
	Grain      float64            `json:"grain,omitempty"`
	Warmth     float64            `json:"warmth,omitempty"`
	Extra      map[string]float64 `json:"extra,omitempty"`
}

// Archetype is one emotional vertex of the index with its full
// per-intensity treatment.
type Archetype struct {
	Name        string
	Description string
	Camera      map[Intensity]Camera
	Color       map[Intensity]Color
	VFX         map[Intensity][]string
	FFmpeg      string
}

// Profile is the flattened view of one archetype at one intensity, the shape
// handed to the cinematography engine.
type Profile struct {
	Emotion     string    `json:"emotion"`
	Intensity   Intensity `json:"intensity"`
	Description string    `json:"description"`
	Camera      Camera    `json:"camera"`
	Color       Color     `json:"color"`
	VFX         []string  `json:"vfx"`
	FFmpeg      string    `json:"ffmpeg"`
}

package cinematography

import (
	"fmt"

	"github.com/brian95240/elite-video-pipeline-v3.0/archetype"
)

// QualityGate checks applied color grades against broadcast-safe thresholds.
// Individual excesses are warnings, not failures; a grade fails the gate
// only when it stacks more than two of them.
type QualityGate struct {
	MaxContrast   float64
	MaxVignette   float64
	MaxSaturation float64 // absolute percentage offset
	MaxWarnings   int
}

// DefaultQualityGate returns the standard thresholds.
func DefaultQualityGate() *QualityGate {
	return &QualityGate{
		MaxContrast:   2.0,
		MaxVignette:   0.8,
		MaxSaturation: 50,
		MaxWarnings:   2,
	}
}

// Check evaluates the grade of a profile. It returns whether the gate
// passes and the warnings raised.
func (g *QualityGate) Check(p archetype.Profile) (bool, []string) {
	var warnings []string

	if s := p.Color.Saturation; s > g.MaxSaturation || s < -g.MaxSaturation {
		warnings = append(warnings, fmt.Sprintf("high saturation adjustment: %g%%", s))
	}
	if c := p.Color.Contrast; c > g.MaxContrast {
		warnings = append(warnings, fmt.Sprintf("contrast exceeds safe threshold: %g", c))
	}
	if v := p.Color.Vignette; v > g.MaxVignette {
		warnings = append(warnings, fmt.Sprintf("vignette too heavy: %g", v))
	}

	return len(warnings) <= g.MaxWarnings, warnings
}

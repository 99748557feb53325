// Package stage defines the closed, ordered set of processing stages a job
// passes through. The order is fixed at build time; there is no dynamic
// reconfiguration.
package stage

import "fmt"

// Stage identifies one of the eight processing roles in the pipeline.
type Stage string

const (
	// Oracle generates the script and emotional arc.
	Oracle Stage = "oracle"
	// Trickster synthesizes the voice track.
	Trickster Stage = "trickster"
	// Cartographer maps retention and renders the cinematography profile.
	Cartographer Stage = "cartographer"
	// Spectacle renders thumbnails and VFX.
	Spectacle Stage = "spectacle"
	// Ironist runs quality gates over the cinematography output.
	Ironist Stage = "ironist"
	// Alchemist tracks budget and spot pricing.
	Alchemist Stage = "alchemist"
	// Shadow checks legal compliance.
	Shadow Stage = "shadow"
	// Catalyst orchestrates the launch.
	Catalyst Stage = "catalyst"
)

// all is the fixed stage order. The first five stages are fed by named
// queues; the final three are driven synchronously by the orchestrator.
var all = [...]Stage{
	Oracle, Trickster, Cartographer, Spectacle, Ironist,
	Alchemist, Shadow, Catalyst,
}

// queuedCount is how many leading stages have a dedicated queue.
const queuedCount = 5

// All returns the eight stages in processing order.
func All() []Stage {
	out := make([]Stage, len(all))
	copy(out, all[:])
	return out
}

// Queued returns the five stages that consume from a named queue.
func Queued() []Stage {
	out := make([]Stage, queuedCount)
	copy(out, all[:queuedCount])
	return out
}

// IsQueued reports whether s consumes from a named queue rather than being
// driven synchronously.
func (s Stage) IsQueued() bool {
	for _, q := range all[:queuedCount] {
		if q == s {
			return true
		}
	}
	return false
}

// Next returns the stage following s in the fixed order, or false when s is
// the final stage.
func Next(s Stage) (Stage, bool) {
	for i, cur := range all {
		if cur == s && i+1 < len(all) {
			return all[i+1], true
		}
	}
	return "", false
}

// Parse validates a stage name.
func Parse(name string) (Stage, error) {
	for _, s := range all {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("stage: unknown stage %q", name)
}

// String returns the stage's queue-compatible name.
func (s Stage) String() string { return string(s) }

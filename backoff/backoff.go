// Package backoff provides retry delay strategies for stage execution.
// Strategies are stateless and safe for concurrent use.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy computes the delay before a retry attempt. Attempt 1 is the
// first retry after the initial failure.
type Strategy interface {
	Delay(attempt int) time.Duration
}

// None retries immediately. Useful for tests and idempotent in-process
// stages.
type None struct{}

// Delay always returns zero.
func (None) Delay(int) time.Duration { return 0 }

// Constant waits the same interval before every retry.
type Constant struct {
	Interval time.Duration
}

// NewConstant creates a constant backoff strategy.
func NewConstant(interval time.Duration) *Constant {
	return &Constant{Interval: interval}
}

// Delay returns the fixed interval.
func (c *Constant) Delay(int) time.Duration { return c.Interval }

// Exponential doubles the delay each attempt with up to 20% random jitter,
// capped at Max. Delay = min(Initial * 2^(attempt-1), Max) ± jitter.
type Exponential struct {
	Initial time.Duration
	Max     time.Duration

	// Jitter adds randomness as a fraction of the computed delay, in
	// [0, 1]. Zero disables jitter.
	Jitter float64
}

// NewExponential creates an exponential backoff strategy with 20% jitter.
func NewExponential(initial, maxDelay time.Duration) *Exponential {
	return &Exponential{Initial: initial, Max: maxDelay, Jitter: 0.2}
}

// Delay returns the jittered exponential delay for the attempt.
func (e *Exponential) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(e.Initial) * math.Pow(2, float64(attempt-1)))
	if e.Max > 0 && d > e.Max {
		d = e.Max
	}
	if e.Jitter > 0 {
		spread := e.Jitter * float64(d)
		d += time.Duration((rand.Float64()*2 - 1) * spread)
		if d < 0 {
			d = 0
		}
	}
	return d
}

package worker

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/brian95240/elite-video-pipeline-v3.0/stage"
)

// LimitConfig defines per-stage throughput behaviour.
type LimitConfig struct {
	// Stage the limits apply to.
	Stage stage.Stage

	// MaxConcurrency limits how many jobs from this stage may run
	// simultaneously across the local pool. Zero means no stage-specific
	// limit.
	MaxConcurrency int

	// RateLimit is the maximum sustained jobs per second that may be
	// dequeued for this stage. Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the burst size for the token-bucket rate limiter.
	// Defaults to 1 if RateLimit is set but RateBurst is zero.
	RateBurst int
}

type stageState struct {
	config  LimitConfig
	limiter *rate.Limiter
	active  int
}

// Limits controls per-stage rate limiting and concurrency. It is safe for
// concurrent use.
type Limits struct {
	mu     sync.Mutex
	stages map[stage.Stage]*stageState
}

// NewLimits creates a Limits with the given stage configurations. Stages
// not listed have no limits.
func NewLimits(configs ...LimitConfig) *Limits {
	l := &Limits{stages: make(map[stage.Stage]*stageState, len(configs))}
	for _, cfg := range configs {
		l.stages[cfg.Stage] = newStageState(cfg)
	}
	return l
}

func newStageState(cfg LimitConfig) *stageState {
	ss := &stageState{config: cfg}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		ss.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return ss
}

// Acquire checks rate and concurrency limits for the stage. If the job may
// proceed it increments the active counter and returns true. The caller
// MUST call Release when the job completes.
func (l *Limits) Acquire(s stage.Stage) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	ss := l.stages[s]
	if ss == nil {
		return true
	}
	if ss.limiter != nil && !ss.limiter.Allow() {
		return false
	}
	if ss.config.MaxConcurrency > 0 && ss.active >= ss.config.MaxConcurrency {
		return false
	}
	ss.active++
	return true
}

// Release decrements the active job count for the stage.
func (l *Limits) Release(s stage.Stage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ss := l.stages[s]; ss != nil && ss.active > 0 {
		ss.active--
	}
}

// ActiveCount returns the current number of active jobs for a stage.
func (l *Limits) ActiveCount(s stage.Stage) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ss := l.stages[s]; ss != nil {
		return ss.active
	}
	return 0
}

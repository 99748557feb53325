// Package worker runs the distributed consumption side of the pipeline: a
// pool of goroutines that block-pop stage queues, execute stage handlers,
// report status back through the orchestrator, and hand jobs off to the
// next queue. Throughput is shaped per stage with token-bucket rate limits
// and concurrency caps.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/brian95240/elite-video-pipeline-v3.0/job"
	"github.com/brian95240/elite-video-pipeline-v3.0/stage"
	"github.com/brian95240/elite-video-pipeline-v3.0/store"
)

// Handler processes one job at one stage.
type Handler func(ctx context.Context, j *job.Job) error

// Reporter receives worker status callbacks. The orchestrator Driver
// implements it.
type Reporter interface {
	UpdateStatus(ctx context.Context, jobID string, status job.Status, s stage.Stage, errText string) error
}

// Pool manages worker goroutines consuming the queued stages. Each queued
// stage gets its own set of workers; the synchronous tail stages run inline
// after the final queued stage succeeds.
type Pool struct {
	store    store.QueueStore
	reporter Reporter

	handlers       map[stage.Stage]Handler
	limits         *Limits
	concurrency    int
	dequeueTimeout time.Duration
	logger         *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithConcurrency sets the number of workers per queued stage.
func WithConcurrency(n int) PoolOption {
	return func(p *Pool) { p.concurrency = n }
}

// WithDequeueTimeout sets the blocking-pop timeout per poll. Shorter
// timeouts mean faster shutdown; zero would block indefinitely and is
// rejected in favor of the default.
func WithDequeueTimeout(d time.Duration) PoolOption {
	return func(p *Pool) {
		if d > 0 {
			p.dequeueTimeout = d
		}
	}
}

// WithHandler registers the handler for one stage.
func WithHandler(s stage.Stage, h Handler) PoolOption {
	return func(p *Pool) { p.handlers[s] = h }
}

// WithLimits sets per-stage rate limiting and concurrency control.
func WithLimits(l *Limits) PoolOption {
	return func(p *Pool) { p.limits = l }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) PoolOption {
	return func(p *Pool) { p.logger = l }
}

// NewPool creates a worker pool. Stages without a registered handler get a
// pass-through that succeeds immediately.
func NewPool(qs store.QueueStore, reporter Reporter, opts ...PoolOption) *Pool {
	p := &Pool{
		store:          qs,
		reporter:       reporter,
		handlers:       make(map[stage.Stage]Handler),
		concurrency:    2,
		dequeueTimeout: time.Second,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, s := range stage.All() {
		if _, ok := p.handlers[s]; !ok {
			p.handlers[s] = func(context.Context, *job.Job) error { return nil }
		}
	}
	return p
}

// Start launches the worker goroutines and returns immediately. Calling
// Start on a running pool is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true

	ctx, p.cancel = context.WithCancel(ctx)

	queued := stage.Queued()
	p.logger.Info("worker pool starting",
		slog.Int("concurrency", p.concurrency),
		slog.Int("stages", len(queued)),
	)

	for _, s := range queued {
		for range p.concurrency {
			p.wg.Add(1)
			go p.dequeueLoop(ctx, s)
		}
	}
}

// Stop cancels the workers and waits for in-flight work to finish. A
// blocking pop in progress rides out its timeout before the worker exits.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *Pool) dequeueLoop(ctx context.Context, s stage.Stage) {
	defer p.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		payload, err := p.store.Dequeue(ctx, s.String(), p.dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", "stage", s.String(), "error", err)
			time.Sleep(p.dequeueTimeout)
			continue
		}
		if payload == nil {
			continue
		}

		p.process(ctx, s, payload)
	}
}

func (p *Pool) process(ctx context.Context, s stage.Stage, payload []byte) {
	j, err := job.DecodeSnapshot(payload)
	if err != nil {
		p.logger.Error("dropping undecodable payload", "stage", s.String(), "error", err)
		return
	}

	if p.limits != nil {
		for !p.limits.Acquire(s) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
		defer p.limits.Release(s)
	}

	if err := p.reporter.UpdateStatus(ctx, j.JobID, job.StatusProcessing, s, ""); err != nil {
		p.logger.Error("status report failed", "job_id", j.JobID, "stage", s.String(), "error", err)
		return
	}

	if err := p.handlers[s](ctx, j); err != nil {
		p.fail(ctx, j, s, err)
		return
	}

	next, ok := stage.Next(s)
	if !ok {
		p.complete(ctx, j, s)
		return
	}
	if next.IsQueued() {
		if err := p.store.Enqueue(ctx, next.String(), payload); err != nil {
			p.fail(ctx, j, s, err)
		}
		return
	}

	// The tail stages have no queues; run them inline.
	for cur, ok := next, true; ok; cur, ok = stage.Next(cur) {
		if err := p.reporter.UpdateStatus(ctx, j.JobID, job.StatusProcessing, cur, ""); err != nil {
			p.logger.Error("status report failed", "job_id", j.JobID, "stage", cur.String(), "error", err)
			return
		}
		if err := p.handlers[cur](ctx, j); err != nil {
			p.fail(ctx, j, cur, err)
			return
		}
		s = cur
	}
	p.complete(ctx, j, s)
}

func (p *Pool) fail(ctx context.Context, j *job.Job, s stage.Stage, cause error) {
	p.logger.Error("stage failed", "job_id", j.JobID, "stage", s.String(), "error", cause)
	if err := p.reporter.UpdateStatus(ctx, j.JobID, job.StatusFailed, s, cause.Error()); err != nil {
		p.logger.Error("failure report failed", "job_id", j.JobID, "error", err)
	}
}

func (p *Pool) complete(ctx context.Context, j *job.Job, s stage.Stage) {
	if err := p.reporter.UpdateStatus(ctx, j.JobID, job.StatusCompleted, s, ""); err != nil {
		p.logger.Error("completion report failed", "job_id", j.JobID, "error", err)
		return
	}
	p.logger.Info("job completed", "job_id", j.JobID)
}

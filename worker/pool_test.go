package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brian95240/elite-video-pipeline-v3.0/archetype"
	"github.com/brian95240/elite-video-pipeline-v3.0/job"
	"github.com/brian95240/elite-video-pipeline-v3.0/orchestrator"
	"github.com/brian95240/elite-video-pipeline-v3.0/stage"
	"github.com/brian95240/elite-video-pipeline-v3.0/store/memory"
)

func waitForStatus(t *testing.T, d *orchestrator.Driver, jobID string, want job.Status) *job.Job {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		j, err := d.Status(context.Background(), jobID)
		if err == nil && j.Status == want {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	j, err := d.Status(context.Background(), jobID)
	t.Fatalf("job %q never reached %s (last: %+v, err: %v)", jobID, want, j, err)
	return nil
}

func TestPool_RunsJobThroughAllStages(t *testing.T) {
	mem := memory.New()
	d, err := orchestrator.New(mem, archetype.Default())
	if err != nil {
		t.Fatal(err)
	}

	visited := make(chan stage.Stage, 16)
	opts := []PoolOption{WithDequeueTimeout(50 * time.Millisecond)}
	for _, s := range stage.All() {
		s := s
		opts = append(opts, WithHandler(s, func(_ context.Context, j *job.Job) error {
			visited <- s
			return nil
		}))
	}

	pool := NewPool(mem, d, opts...)
	pool.Start(context.Background())
	defer pool.Stop()

	jobID, err := d.Submit(context.Background(), orchestrator.SubmitRequest{
		VideoID: "w1", Emotion: "triumph", Intensity: "medium",
	})
	if err != nil {
		t.Fatal(err)
	}

	j := waitForStatus(t, d, jobID, job.StatusCompleted)
	if j.CurrentService != stage.Catalyst.String() {
		t.Errorf("final service = %q, want catalyst", j.CurrentService)
	}

	close(visited)
	var order []stage.Stage
	for s := range visited {
		order = append(order, s)
	}
	all := stage.All()
	if len(order) != len(all) {
		t.Fatalf("stages visited = %v, want all 8 in order", order)
	}
	for i, s := range all {
		if order[i] != s {
			t.Errorf("stage[%d] = %s, want %s", i, order[i], s)
		}
	}
}

func TestPool_HandlerFailureDeadLetters(t *testing.T) {
	mem := memory.New()
	d, err := orchestrator.New(mem, archetype.Default())
	if err != nil {
		t.Fatal(err)
	}

	pool := NewPool(mem, d,
		WithDequeueTimeout(50*time.Millisecond),
		WithHandler(stage.Spectacle, func(context.Context, *job.Job) error {
			return errors.New("thumbnail render failed")
		}))
	pool.Start(context.Background())
	defer pool.Stop()

	jobID, err := d.Submit(context.Background(), orchestrator.SubmitRequest{
		VideoID: "w2", Emotion: "fear", Intensity: "heavy",
	})
	if err != nil {
		t.Fatal(err)
	}

	j := waitForStatus(t, d, jobID, job.StatusFailed)
	if j.Error != "thumbnail render failed" {
		t.Errorf("job error = %q", j.Error)
	}

	n, err := d.DLQ().Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("DLQ count = %d, want 1", n)
	}
}

func TestPool_StopIsIdempotentAndHalts(t *testing.T) {
	mem := memory.New()
	d, err := orchestrator.New(mem, archetype.Default())
	if err != nil {
		t.Fatal(err)
	}

	pool := NewPool(mem, d, WithDequeueTimeout(20*time.Millisecond))
	pool.Start(context.Background())
	pool.Start(context.Background()) // no-op

	done := make(chan struct{})
	go func() {
		pool.Stop()
		pool.Stop() // no-op
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestLimits_Concurrency(t *testing.T) {
	l := NewLimits(LimitConfig{Stage: stage.Oracle, MaxConcurrency: 2})

	if !l.Acquire(stage.Oracle) || !l.Acquire(stage.Oracle) {
		t.Fatal("first two acquires should succeed")
	}
	if l.Acquire(stage.Oracle) {
		t.Error("third acquire should be refused at MaxConcurrency 2")
	}
	if l.ActiveCount(stage.Oracle) != 2 {
		t.Errorf("ActiveCount = %d, want 2", l.ActiveCount(stage.Oracle))
	}

	l.Release(stage.Oracle)
	if !l.Acquire(stage.Oracle) {
		t.Error("acquire after release should succeed")
	}

	// Unconfigured stages are unlimited.
	for range 10 {
		if !l.Acquire(stage.Trickster) {
			t.Fatal("unconfigured stage should never refuse")
		}
	}
}

func TestLimits_RateLimit(t *testing.T) {
	l := NewLimits(LimitConfig{Stage: stage.Ironist, RateLimit: 1, RateBurst: 1})

	if !l.Acquire(stage.Ironist) {
		t.Fatal("first acquire should pass the burst")
	}
	l.Release(stage.Ironist)

	if l.Acquire(stage.Ironist) {
		t.Error("second immediate acquire should be rate-limited")
	}
}

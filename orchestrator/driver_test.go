package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
	"github.com/brian95240/elite-video-pipeline-v3.0/archetype"
	"github.com/brian95240/elite-video-pipeline-v3.0/cinematography"
	"github.com/brian95240/elite-video-pipeline-v3.0/job"
	"github.com/brian95240/elite-video-pipeline-v3.0/stage"
	"github.com/brian95240/elite-video-pipeline-v3.0/store"
	"github.com/brian95240/elite-video-pipeline-v3.0/store/memory"
)

func newTestDriver(t *testing.T, opts ...Option) (*Driver, *memory.Store) {
	t.Helper()
	mem := memory.New()
	d, err := New(mem, archetype.Default(), opts...)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return d, mem
}

func validRequest() SubmitRequest {
	return SubmitRequest{VideoID: "vid42", Emotion: "curiosity", Intensity: "medium"}
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := New(nil, archetype.Default()); !errors.Is(err, pipeline.ErrNoStore) {
		t.Errorf("New(nil) error = %v, want ErrNoStore", err)
	}
}

func TestSubmit(t *testing.T) {
	d, mem := newTestDriver(t)
	ctx := context.Background()

	jobID, err := d.Submit(ctx, validRequest())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !strings.HasPrefix(jobID, "vid42_") {
		t.Errorf("jobID = %q, want vid42_<ms>", jobID)
	}

	j, err := d.Status(ctx, jobID)
	if err != nil {
		t.Fatalf("Status error: %v", err)
	}
	if j.Status != job.StatusIdle || j.Emotion != "curiosity" {
		t.Errorf("submitted job = %+v", j)
	}

	// Snapshot is queued for the first stage.
	payload, err := mem.Dequeue(ctx, store.QueueOracle, time.Millisecond)
	if err != nil || payload == nil {
		t.Fatalf("oracle queue empty after submit: %v", err)
	}
	snap, err := job.DecodeSnapshot(payload)
	if err != nil {
		t.Fatal(err)
	}
	if snap.JobID != jobID {
		t.Errorf("queued snapshot job = %q, want %q", snap.JobID, jobID)
	}
}

func TestSubmit_ValidationLeavesNoTrace(t *testing.T) {
	d, mem := newTestDriver(t)
	ctx := context.Background()

	cases := []SubmitRequest{
		{VideoID: "", Emotion: "fear", Intensity: "light"},
		{VideoID: "v", Emotion: "fear", Intensity: "extreme"},
		{VideoID: "v", Emotion: "boredom", Intensity: "light"},
		{VideoID: "v", Emotion: "", Intensity: "light"},
	}
	for _, req := range cases {
		if _, err := d.Submit(ctx, req); !errors.Is(err, pipeline.ErrValidation) {
			t.Errorf("Submit(%+v) error = %v, want ErrValidation", req, err)
		}
	}

	if n, _ := mem.QueueLength(ctx, store.QueueOracle); n != 0 {
		t.Errorf("oracle depth after rejected submits = %d, want 0", n)
	}
	keys, _ := mem.ScanKeys(ctx, store.StateKeyPrefix)
	if len(keys) != 0 {
		t.Errorf("state keys after rejected submits = %v, want none", keys)
	}
}

func TestAdvance_CompletesAllStages(t *testing.T) {
	var visited []stage.Stage
	opts := make([]Option, 0, len(stage.All()))
	for _, s := range stage.All() {
		s := s
		switch s {
		case stage.Cartographer, stage.Ironist:
			// Keep the built-in runners for the in-process stages.
		default:
			opts = append(opts, WithStageRunner(s,
				func(context.Context, *job.Job, archetype.Profile) (map[string]string, error) {
					visited = append(visited, s)
					return nil, nil
				}))
		}
	}

	d, mem := newTestDriver(t, opts...)
	ctx := context.Background()

	jobID, err := d.Submit(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Advance(ctx, jobID); err != nil {
		t.Fatalf("Advance error: %v", err)
	}

	j, err := d.Status(ctx, jobID)
	if err != nil {
		t.Fatal(err)
	}
	if j.Status != job.StatusCompleted {
		t.Errorf("status = %s, want completed", j.Status)
	}
	if j.StartedAt == nil || j.CompletedAt == nil {
		t.Error("timestamps missing after completion")
	}
	if j.CurrentService != stage.Catalyst.String() {
		t.Errorf("current service = %q, want catalyst", j.CurrentService)
	}
	if len(visited) != 6 {
		t.Errorf("external stages visited = %v, want 6", visited)
	}

	// Cartographer stored the rendered filter chain.
	attrs, err := mem.GetState(ctx, store.StateKey(jobID))
	if err != nil {
		t.Fatal(err)
	}
	if chain := attrs[AttrFilterChain]; !strings.Contains(chain, "eq=saturation=0.9:contrast=1.15") {
		t.Errorf("filter chain = %q, want mystery_teal grade", chain)
	}
}

func TestAdvance_UnknownJob(t *testing.T) {
	d, _ := newTestDriver(t)
	if err := d.Advance(context.Background(), "nope_1"); !errors.Is(err, pipeline.ErrJobNotFound) {
		t.Errorf("Advance(unknown) error = %v, want ErrJobNotFound", err)
	}
}

func TestAdvance_StageFailureDeadLetters(t *testing.T) {
	boom := errors.New("render crashed")
	d, _ := newTestDriver(t,
		WithConfig(func() pipeline.Config {
			cfg := pipeline.DefaultConfig()
			cfg.MaxRetries = 0
			return cfg
		}()),
		WithStageRunner(stage.Spectacle,
			func(context.Context, *job.Job, archetype.Profile) (map[string]string, error) {
				return nil, boom
			}))
	ctx := context.Background()

	jobID, err := d.Submit(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}

	err = d.Advance(ctx, jobID)
	if !errors.Is(err, pipeline.ErrStageFailed) {
		t.Fatalf("Advance error = %v, want ErrStageFailed", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Advance error = %v, want wrapped cause", err)
	}

	j, err := d.Status(ctx, jobID)
	if err != nil {
		t.Fatal(err)
	}
	if j.Status != job.StatusFailed {
		t.Errorf("status = %s, want failed", j.Status)
	}
	if !strings.Contains(j.Error, "render crashed") {
		t.Errorf("job error = %q", j.Error)
	}

	n, err := d.DLQ().Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("DLQ count = %d, want exactly 1", n)
	}
	entries, err := d.DLQ().List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].JobID != jobID || !strings.Contains(entries[0].Error, "render crashed") {
		t.Errorf("DLQ entry = %+v", entries[0])
	}
}

func TestAdvance_RetriesWithinBudget(t *testing.T) {
	attempts := 0
	d, _ := newTestDriver(t,
		WithStageRunner(stage.Shadow,
			func(context.Context, *job.Job, archetype.Profile) (map[string]string, error) {
				attempts++
				if attempts < 3 {
					return nil, errors.New("transient")
				}
				return nil, nil
			}))
	ctx := context.Background()

	jobID, err := d.Submit(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Advance(ctx, jobID); err != nil {
		t.Fatalf("Advance error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}

	j, _ := d.Status(ctx, jobID)
	if j.Status != job.StatusCompleted {
		t.Errorf("status = %s, want completed after retries", j.Status)
	}
}

func TestAdvance_TerminalJobRejected(t *testing.T) {
	d, _ := newTestDriver(t)
	ctx := context.Background()

	jobID, err := d.Submit(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Advance(ctx, jobID); err != nil {
		t.Fatal(err)
	}

	if err := d.Advance(ctx, jobID); !errors.Is(err, pipeline.ErrInvalidTransition) {
		t.Errorf("Advance(completed) error = %v, want ErrInvalidTransition", err)
	}
}

func TestAdvance_QualityGateSoftFailure(t *testing.T) {
	d, _ := newTestDriver(t)
	// Impossible thresholds so every grade trips the gate.
	d.gate = &cinematography.QualityGate{MaxContrast: 0.1, MaxVignette: 0.01, MaxSaturation: 0.1, MaxWarnings: 0}
	ctx := context.Background()

	jobID, err := d.Submit(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Advance(ctx, jobID); err != nil {
		t.Fatalf("gate violation blocked completion: %v", err)
	}

	j, _ := d.Status(ctx, jobID)
	if j.Status != job.StatusCompleted {
		t.Errorf("status = %s, want completed despite gate warnings", j.Status)
	}
}

func TestBatchAdvance_CountsAlwaysReconcile(t *testing.T) {
	d, _ := newTestDriver(t)
	ctx := context.Background()

	reqs := []SubmitRequest{
		{VideoID: "b1", Emotion: "joy", Intensity: "light"},
		{VideoID: "b2", Emotion: "unknown", Intensity: "light"},
		{VideoID: "b3", Emotion: "rage", Intensity: "heavy"},
		{VideoID: "", Emotion: "joy", Intensity: "light"},
	}
	res := d.BatchAdvance(ctx, reqs)

	if res.Total != 4 {
		t.Errorf("Total = %d, want 4", res.Total)
	}
	if res.Successful != 2 || res.Failed != 2 {
		t.Errorf("Successful/Failed = %d/%d, want 2/2", res.Successful, res.Failed)
	}
	if res.Successful+res.Failed != res.Total {
		t.Errorf("counts do not reconcile: %+v", res)
	}
	if len(res.JobIDs) != 2 {
		t.Errorf("JobIDs = %v, want the 2 submitted", res.JobIDs)
	}
}

func TestUpdateStatus_EnforcesStateMachine(t *testing.T) {
	d, _ := newTestDriver(t)
	ctx := context.Background()

	jobID, err := d.Submit(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}

	// idle -> completed is illegal.
	err = d.UpdateStatus(ctx, jobID, job.StatusCompleted, stage.Oracle, "")
	if !errors.Is(err, pipeline.ErrInvalidTransition) {
		t.Errorf("idle->completed error = %v, want ErrInvalidTransition", err)
	}

	// idle -> processing -> paused -> processing -> completed is legal.
	steps := []struct {
		status job.Status
		st     stage.Stage
	}{
		{job.StatusProcessing, stage.Oracle},
		{job.StatusPaused, stage.Oracle},
		{job.StatusProcessing, stage.Trickster},
		{job.StatusCompleted, stage.Catalyst},
	}
	for _, step := range steps {
		if err := d.UpdateStatus(ctx, jobID, step.status, step.st, ""); err != nil {
			t.Fatalf("UpdateStatus(%s) error: %v", step.status, err)
		}
	}

	j, _ := d.Status(ctx, jobID)
	if j.Status != job.StatusCompleted || j.CompletedAt == nil {
		t.Errorf("final job = %+v", j)
	}
}

func TestUpdateStatus_FailureDeadLetters(t *testing.T) {
	d, _ := newTestDriver(t)
	ctx := context.Background()

	jobID, err := d.Submit(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.UpdateStatus(ctx, jobID, job.StatusProcessing, stage.Oracle, ""); err != nil {
		t.Fatal(err)
	}
	if err := d.UpdateStatus(ctx, jobID, job.StatusFailed, stage.Oracle, "voice synth died"); err != nil {
		t.Fatal(err)
	}

	n, _ := d.DLQ().Count(ctx)
	if n != 1 {
		t.Errorf("DLQ count = %d, want 1", n)
	}
	j, _ := d.Status(ctx, jobID)
	if j.Status != job.StatusFailed || j.Error != "voice synth died" {
		t.Errorf("failed job = %+v", j)
	}
}

func TestResetAll(t *testing.T) {
	d, mem := newTestDriver(t)
	ctx := context.Background()

	if _, err := d.Submit(ctx, validRequest()); err != nil {
		t.Fatal(err)
	}
	if _, err := archetype.Default().Seed(ctx, mem); err != nil {
		t.Fatal(err)
	}

	// Refused without confirmation, data intact.
	if err := d.ResetAll(ctx, false); !errors.Is(err, pipeline.ErrResetNotConfirmed) {
		t.Fatalf("ResetAll(false) error = %v, want ErrResetNotConfirmed", err)
	}
	if n, _ := mem.QueueLength(ctx, store.QueueOracle); n != 1 {
		t.Errorf("oracle depth after refused reset = %d, want 1", n)
	}

	if err := d.ResetAll(ctx, true); err != nil {
		t.Fatalf("ResetAll(true) error: %v", err)
	}
	if n, _ := mem.QueueLength(ctx, store.QueueOracle); n != 0 {
		t.Errorf("oracle depth after reset = %d, want 0", n)
	}
	keys, _ := mem.ScanKeys(ctx, store.StateKeyPrefix)
	if len(keys) != 0 {
		t.Errorf("state keys after reset = %v, want none", keys)
	}

	// Archetype vertices survive a reset.
	vkeys, _ := mem.ScanKeys(ctx, store.VertexKeyPrefix)
	if len(vkeys) != 36 {
		t.Errorf("vertex keys after reset = %d, want 36", len(vkeys))
	}
}

func TestLocalOnlyMode(t *testing.T) {
	d := NewLocal(archetype.Default())
	ctx := context.Background()

	jobID, err := d.Submit(ctx, validRequest())
	if err != nil {
		t.Fatalf("local Submit error: %v", err)
	}
	if !strings.HasPrefix(jobID, "vid42_") {
		t.Errorf("local jobID = %q", jobID)
	}

	// Validation still applies locally.
	if _, err := d.Submit(ctx, SubmitRequest{VideoID: "v", Emotion: "boredom", Intensity: "light"}); !errors.Is(err, pipeline.ErrValidation) {
		t.Errorf("local Submit(bad) error = %v, want ErrValidation", err)
	}

	if err := d.Advance(ctx, jobID); !errors.Is(err, pipeline.ErrLocalOnly) {
		t.Errorf("local Advance error = %v, want ErrLocalOnly", err)
	}
	if _, err := d.Status(ctx, jobID); !errors.Is(err, pipeline.ErrLocalOnly) {
		t.Errorf("local Status error = %v, want ErrLocalOnly", err)
	}
	if err := d.ResetAll(ctx, true); !errors.Is(err, pipeline.ErrLocalOnly) {
		t.Errorf("local ResetAll error = %v, want ErrLocalOnly", err)
	}
}

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
	"github.com/brian95240/elite-video-pipeline-v3.0/archetype"
	"github.com/brian95240/elite-video-pipeline-v3.0/job"
	"github.com/brian95240/elite-video-pipeline-v3.0/stage"
	"github.com/brian95240/elite-video-pipeline-v3.0/store"
)

// StageRunner executes one stage of a job. The returned attribute map is
// merged into the job's state record on success. The resolved archetype
// profile is passed in so runners never re-read the catalog.
type StageRunner func(ctx context.Context, j *job.Job, p archetype.Profile) (map[string]string, error)

// AttrFilterChain is the state attribute the cartographer stage writes.
const AttrFilterChain = "filter_chain"

// defaultRunner returns the built-in runner for a stage. Cartographer and
// ironist do real work in-process; the remaining stages are hooks for
// external services and succeed immediately.
func (d *Driver) defaultRunner(s stage.Stage) StageRunner {
	switch s {
	case stage.Cartographer:
		return func(_ context.Context, j *job.Job, p archetype.Profile) (map[string]string, error) {
			chain := d.engine.FilterChain(p)
			return map[string]string{AttrFilterChain: chain}, nil
		}
	case stage.Ironist:
		return func(ctx context.Context, j *job.Job, p archetype.Profile) (map[string]string, error) {
			if !d.qualityGates {
				return nil, nil
			}
			pass, warnings := d.gate.Check(p)
			if !pass {
				// Soft failure: report, but do not block completion.
				d.logger.Warn("quality gate exceeded",
					"job_id", j.JobID, "warnings", warnings)
				if err := d.audit.RecordStatus(ctx, j.JobID, j.Status,
					fmt.Sprintf("quality gate: %d warnings", len(warnings))); err != nil {
					d.logger.Error("audit record failed", "job_id", j.JobID, "error", err)
				}
			}
			return nil, nil
		}
	default:
		return func(context.Context, *job.Job, archetype.Profile) (map[string]string, error) {
			return nil, nil
		}
	}
}

// Advance runs a job synchronously through all eight stages in order. A
// stage failure, after exhausting the retry budget, marks the job failed,
// dead-letters it, and reports ErrStageFailed. Success marks the job
// completed.
func (d *Driver) Advance(ctx context.Context, jobID string) error {
	if d.mode == ModeLocalOnly {
		return fmt.Errorf("pipeline: advance %q: %w", jobID, pipeline.ErrLocalOnly)
	}

	ctx, span := d.tracer.Start(ctx, "pipeline.advance",
		trace.WithAttributes(attribute.String("pipeline.job_id", jobID)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	err := d.advance(ctx, jobID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (d *Driver) advance(ctx context.Context, jobID string) error {
	j, err := d.Status(ctx, jobID)
	if err != nil {
		return err
	}
	if j.Status.Terminal() {
		return fmt.Errorf("pipeline: advance %q from %s: %w",
			jobID, j.Status, pipeline.ErrInvalidTransition)
	}

	profile, err := d.catalog.Profile(j.Emotion, archetype.Intensity(j.Intensity))
	if err != nil {
		return fmt.Errorf("pipeline: advance %q: %w", jobID, err)
	}

	key := store.StateKey(jobID)
	for _, s := range stage.All() {
		if err := j.Transition(job.StatusProcessing); err != nil {
			return fmt.Errorf("pipeline: advance %q: %w", jobID, err)
		}
		j.CurrentService = s.String()

		attrs := map[string]string{
			job.AttrStatus:         string(j.Status),
			job.AttrCurrentService: j.CurrentService,
		}
		if j.StartedAt == nil {
			now := time.Now().UTC()
			j.StartedAt = &now
			attrs[job.AttrStartedAt] = now.Format(time.RFC3339Nano)
		}
		if err := d.store.UpdateState(ctx, key, attrs); err != nil {
			return fmt.Errorf("pipeline: advance %q: %w: %w", jobID, pipeline.ErrStoreUnavailable, err)
		}

		extra, err := d.runStage(ctx, s, j, profile)
		if err != nil {
			if dlErr := d.MoveToDeadLetter(ctx, jobID, err.Error()); dlErr != nil {
				d.logger.Error("dead-letter failed", "job_id", jobID, "error", dlErr)
			}
			return fmt.Errorf("pipeline: stage %s for %q: %w: %w",
				s, jobID, pipeline.ErrStageFailed, err)
		}
		if len(extra) > 0 {
			if err := d.store.UpdateState(ctx, key, extra); err != nil {
				return fmt.Errorf("pipeline: advance %q: %w: %w", jobID, pipeline.ErrStoreUnavailable, err)
			}
		}
	}

	if err := j.Transition(job.StatusCompleted); err != nil {
		return fmt.Errorf("pipeline: advance %q: %w", jobID, err)
	}
	now := time.Now().UTC()
	j.CompletedAt = &now
	err = d.store.UpdateState(ctx, key, map[string]string{
		job.AttrStatus:      string(j.Status),
		job.AttrCompletedAt: now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("pipeline: advance %q: %w: %w", jobID, pipeline.ErrStoreUnavailable, err)
	}

	if err := d.audit.RecordStatus(ctx, jobID, job.StatusCompleted, ""); err != nil {
		d.logger.Error("audit record failed", "job_id", jobID, "error", err)
	}

	d.logger.Info("job completed", "job_id", jobID, "video_id", j.VideoID)
	return nil
}

// runStage executes one stage's runner, retrying up to Config.MaxRetries
// times on failure before giving up. Each attempt's duration is recorded.
func (d *Driver) runStage(ctx context.Context, s stage.Stage, j *job.Job, p archetype.Profile) (map[string]string, error) {
	ctx, span := d.tracer.Start(ctx, "pipeline.stage."+s.String(),
		trace.WithAttributes(
			attribute.String("pipeline.job_id", j.JobID),
			attribute.String("pipeline.stage", s.String()),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	runner := d.runners[s]
	var lastErr error
	for attempt := 0; attempt <= d.cfg.MaxRetries; attempt++ {
		start := time.Now()
		extra, err := runner(ctx, j, p)
		if recErr := d.audit.RecordStageMetric(ctx, j.JobID, s, time.Since(start)); recErr != nil {
			d.logger.Error("audit record failed", "job_id", j.JobID, "error", recErr)
		}
		if err == nil {
			span.SetStatus(codes.Ok, "")
			return extra, nil
		}

		lastErr = err
		d.logger.Warn("stage attempt failed",
			"job_id", j.JobID, "stage", s.String(),
			"attempt", attempt+1, "error", err)

		if attempt < d.cfg.MaxRetries {
			if delay := d.retryDelay.Delay(attempt + 1); delay > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
			}
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return nil, lastErr
}

// BatchResult summarizes a batch submission run.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	JobIDs     []string `json:"job_ids"`
}

// BatchAdvance submits each request and runs it through the full stage
// sequence. Failures are independent; one bad job never stops the batch.
// Successful plus Failed always equals Total.
func (d *Driver) BatchAdvance(ctx context.Context, reqs []SubmitRequest) BatchResult {
	res := BatchResult{Total: len(reqs)}

	for _, req := range reqs {
		jobID, err := d.Submit(ctx, req)
		if err != nil {
			d.logger.Error("batch submit failed", "video_id", req.VideoID, "error", err)
			res.Failed++
			continue
		}
		res.JobIDs = append(res.JobIDs, jobID)

		if err := d.Advance(ctx, jobID); err != nil {
			d.logger.Error("batch advance failed", "job_id", jobID, "error", err)
			res.Failed++
			continue
		}
		res.Successful++
	}
	return res
}

package orchestrator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
	"github.com/brian95240/elite-video-pipeline-v3.0/job"
	"github.com/brian95240/elite-video-pipeline-v3.0/store"
)

// SubmitRequest describes one video job to submit.
type SubmitRequest struct {
	VideoID   string            `json:"video_id" validate:"required"`
	Emotion   string            `json:"emotion" validate:"required"`
	Intensity string            `json:"intensity" validate:"required,oneof=light medium heavy"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Submit validates the request, creates the job's state record, and
// enqueues it for the first stage. Returns the new job ID. Validation
// failures leave no trace in the store; store failures report
// ErrStoreUnavailable and create no job.
//
// In local-only mode the request is validated and acknowledged with a job
// ID, but nothing is persisted and the job cannot be advanced.
func (d *Driver) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	ctx, span := d.tracer.Start(ctx, "pipeline.submit",
		trace.WithAttributes(
			attribute.String("pipeline.video_id", req.VideoID),
			attribute.String("pipeline.emotion", req.Emotion),
			attribute.String("pipeline.intensity", req.Intensity),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	jobID, err := d.submit(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("pipeline.job_id", jobID))
	span.SetStatus(codes.Ok, "")
	return jobID, nil
}

func (d *Driver) submit(ctx context.Context, req SubmitRequest) (string, error) {
	if err := d.validate.Struct(req); err != nil {
		return "", fmt.Errorf("pipeline: submit: %w: %w", pipeline.ErrValidation, err)
	}
	if !d.catalog.Has(req.Emotion) {
		return "", fmt.Errorf("pipeline: submit: emotion %q: %w", req.Emotion, pipeline.ErrValidation)
	}

	j := job.New(req.VideoID, req.Emotion, req.Intensity, req.Metadata)

	if d.mode == ModeLocalOnly {
		d.logger.Warn("local-only submission, job not persisted",
			"job_id", j.JobID, "video_id", j.VideoID)
		return j.JobID, nil
	}

	key := store.StateKey(j.JobID)
	if err := d.store.CreateState(ctx, key, j.ToAttrs(), d.cfg.JobTTL); err != nil {
		return "", fmt.Errorf("pipeline: submit %q: %w: %w", j.JobID, pipeline.ErrStoreUnavailable, err)
	}

	snapshot, err := job.EncodeSnapshot(j)
	if err != nil {
		return "", fmt.Errorf("pipeline: submit %q: %w", j.JobID, err)
	}
	if err := d.store.Enqueue(ctx, store.QueueOracle, snapshot); err != nil {
		return "", fmt.Errorf("pipeline: submit %q: %w: %w", j.JobID, pipeline.ErrStoreUnavailable, err)
	}

	if err := d.audit.RecordJob(ctx, j); err != nil {
		d.logger.Error("audit record failed", "job_id", j.JobID, "error", err)
	}

	d.logger.Info("job submitted",
		"job_id", j.JobID,
		"video_id", j.VideoID,
		"emotion", j.Emotion,
		"intensity", j.Intensity)
	return j.JobID, nil
}

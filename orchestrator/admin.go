package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
	"github.com/brian95240/elite-video-pipeline-v3.0/job"
	"github.com/brian95240/elite-video-pipeline-v3.0/stage"
	"github.com/brian95240/elite-video-pipeline-v3.0/store"
)

// Status returns the job's current state, or ErrJobNotFound when no record
// exists (including records that aged out of their TTL).
func (d *Driver) Status(ctx context.Context, jobID string) (*job.Job, error) {
	if d.mode == ModeLocalOnly {
		return nil, fmt.Errorf("pipeline: status %q: %w", jobID, pipeline.ErrLocalOnly)
	}

	attrs, err := d.store.GetState(ctx, store.StateKey(jobID))
	if err != nil {
		if errors.Is(err, pipeline.ErrStateNotFound) {
			return nil, fmt.Errorf("pipeline: job %q: %w", jobID, pipeline.ErrJobNotFound)
		}
		return nil, fmt.Errorf("pipeline: status %q: %w: %w", jobID, pipeline.ErrStoreUnavailable, err)
	}
	return job.FromAttrs(attrs)
}

// UpdateStatus is the worker-facing status callback. It enforces the state
// machine before writing: an illegal transition reports
// ErrInvalidTransition and leaves the record untouched. Reporting a failure
// also dead-letters the job.
func (d *Driver) UpdateStatus(ctx context.Context, jobID string, status job.Status, s stage.Stage, errText string) error {
	j, err := d.Status(ctx, jobID)
	if err != nil {
		return err
	}
	if !job.CanTransition(j.Status, status) {
		return fmt.Errorf("pipeline: update %q %s -> %s: %w",
			jobID, j.Status, status, pipeline.ErrInvalidTransition)
	}

	attrs := map[string]string{
		job.AttrStatus:         string(status),
		job.AttrCurrentService: s.String(),
	}
	if errText != "" {
		attrs[job.AttrError] = errText
	}
	now := time.Now().UTC()
	if j.StartedAt == nil && status == job.StatusProcessing {
		attrs[job.AttrStartedAt] = now.Format(time.RFC3339Nano)
	}
	if status == job.StatusCompleted {
		attrs[job.AttrCompletedAt] = now.Format(time.RFC3339Nano)
	}

	if err := d.store.UpdateState(ctx, store.StateKey(jobID), attrs); err != nil {
		if errors.Is(err, pipeline.ErrStateNotFound) {
			return fmt.Errorf("pipeline: job %q: %w", jobID, pipeline.ErrJobNotFound)
		}
		return fmt.Errorf("pipeline: update %q: %w: %w", jobID, pipeline.ErrStoreUnavailable, err)
	}

	if err := d.audit.RecordStatus(ctx, jobID, status, errText); err != nil {
		d.logger.Error("audit record failed", "job_id", jobID, "error", err)
	}

	if status == job.StatusFailed {
		if err := d.moveToDeadLetter(ctx, jobID, errText); err != nil {
			return err
		}
	}
	return nil
}

// MoveToDeadLetter marks a job failed and pushes its final attribute
// snapshot onto the dead letter queue.
func (d *Driver) MoveToDeadLetter(ctx context.Context, jobID, errText string) error {
	if d.mode == ModeLocalOnly {
		return fmt.Errorf("pipeline: dead-letter %q: %w", jobID, pipeline.ErrLocalOnly)
	}

	err := d.store.UpdateState(ctx, store.StateKey(jobID), map[string]string{
		job.AttrStatus: string(job.StatusFailed),
		job.AttrError:  errText,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrStateNotFound) {
			return fmt.Errorf("pipeline: job %q: %w", jobID, pipeline.ErrJobNotFound)
		}
		return fmt.Errorf("pipeline: dead-letter %q: %w: %w", jobID, pipeline.ErrStoreUnavailable, err)
	}

	if err := d.audit.RecordStatus(ctx, jobID, job.StatusFailed, errText); err != nil {
		d.logger.Error("audit record failed", "job_id", jobID, "error", err)
	}
	return d.moveToDeadLetter(ctx, jobID, errText)
}

func (d *Driver) moveToDeadLetter(ctx context.Context, jobID, errText string) error {
	attrs, err := d.store.GetState(ctx, store.StateKey(jobID))
	if err != nil {
		return fmt.Errorf("pipeline: dead-letter %q: %w", jobID, err)
	}
	return d.dlq.Push(ctx, attrs, errText)
}

// ResetAll purges every queue and deletes every job state record. It
// refuses to run without explicit confirmation. Archetype vertex hashes
// are preserved.
func (d *Driver) ResetAll(ctx context.Context, confirm bool) error {
	if !confirm {
		return pipeline.ErrResetNotConfirmed
	}
	if d.mode == ModeLocalOnly {
		return fmt.Errorf("pipeline: reset: %w", pipeline.ErrLocalOnly)
	}

	for _, q := range store.AllQueues() {
		if err := d.store.PurgeQueue(ctx, q); err != nil {
			return fmt.Errorf("pipeline: reset queue %q: %w", q, err)
		}
	}

	keys, err := d.store.ScanKeys(ctx, store.StateKeyPrefix)
	if err != nil {
		return fmt.Errorf("pipeline: reset: %w", err)
	}
	for _, key := range keys {
		if err := d.store.DeleteState(ctx, key); err != nil {
			return fmt.Errorf("pipeline: reset state %q: %w", key, err)
		}
	}

	d.logger.Warn("pipeline reset", "states_deleted", len(keys))
	return nil
}

// Package audit records job lifecycle events and stage timings to a durable
// relational store, independent of the Redis state records and their TTL.
// The pipeline functions fully without it; wiring a recorder is optional.
package audit

import (
	"context"
	"time"

	"github.com/brian95240/elite-video-pipeline-v3.0/job"
	"github.com/brian95240/elite-video-pipeline-v3.0/stage"
)

// Recorder receives job lifecycle events. Implementations must be safe for
// concurrent use. Errors are reported but never block pipeline progress.
type Recorder interface {
	// RecordJob upserts the job's identity row.
	RecordJob(ctx context.Context, j *job.Job) error

	// RecordStatus appends a status change, with the error text for
	// failures.
	RecordStatus(ctx context.Context, jobID string, status job.Status, errText string) error

	// RecordStageMetric stores the wall-clock duration of one stage run.
	RecordStageMetric(ctx context.Context, jobID string, st stage.Stage, duration time.Duration) error

	// Close releases the recorder's resources.
	Close() error
}

// Nop is a Recorder that discards everything.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordJob(context.Context, *job.Job) error { return nil }

func (Nop) RecordStatus(context.Context, string, job.Status, string) error { return nil }

func (Nop) RecordStageMetric(context.Context, string, stage.Stage, time.Duration) error {
	return nil
}

func (Nop) Close() error { return nil }

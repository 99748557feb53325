// Package dlq provides the dead letter queue for jobs whose stage
// processing failed terminally. Entries capture the job's last known
// attributes and the error that killed it, and can be inspected, replayed
// from the start of the stage sequence, or purged.
package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/brian95240/elite-video-pipeline-v3.0/job"
	"github.com/brian95240/elite-video-pipeline-v3.0/store"
)

// Entry is one dead-lettered job: identity, the error that moved it here,
// and the full attribute snapshot at time of failure.
type Entry struct {
	JobID      string            `json:"job_id"`
	VideoID    string            `json:"video_id"`
	Emotion    string            `json:"emotion"`
	Intensity  string            `json:"intensity"`
	Status     string            `json:"status"`
	Error      string            `json:"error"`
	MovedAt    time.Time         `json:"moved_at"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// NewEntry builds an Entry from a job's state attributes.
func NewEntry(attrs map[string]string, errText string) Entry {
	return Entry{
		JobID:      attrs[job.AttrJobID],
		VideoID:    attrs[job.AttrVideoID],
		Emotion:    attrs[job.AttrEmotion],
		Intensity:  attrs[job.AttrIntensity],
		Status:     attrs[job.AttrStatus],
		Error:      errText,
		MovedAt:    time.Now().UTC(),
		Attributes: attrs,
	}
}

// Encode serializes the entry for the queue.
func (e Entry) Encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("pipeline/dlq: encode entry %q: %w", e.JobID, err)
	}
	return b, nil
}

// DecodeEntry deserializes a queued entry.
func DecodeEntry(payload []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(payload, &e); err != nil {
		return Entry{}, fmt.Errorf("pipeline/dlq: decode entry: %w", err)
	}
	return e, nil
}

// Service wraps the dead letter queue with push, inspection, replay, and
// purge operations.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates the DLQ service over the shared store.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Push dead-letters a job with its final attributes and error.
func (s *Service) Push(ctx context.Context, attrs map[string]string, errText string) error {
	entry := NewEntry(attrs, errText)
	payload, err := entry.Encode()
	if err != nil {
		return err
	}
	if err := s.store.Enqueue(ctx, store.QueueDeadLetter, payload); err != nil {
		return fmt.Errorf("pipeline/dlq: push %q: %w", entry.JobID, err)
	}

	s.logger.Warn("job dead-lettered",
		"job_id", entry.JobID,
		"video_id", entry.VideoID,
		"error", errText)
	return nil
}

// List returns up to limit entries from the head of the queue without
// removing them. Zero limit returns everything.
func (s *Service) List(ctx context.Context, limit int64) ([]Entry, error) {
	payloads, err := s.store.ListQueue(ctx, store.QueueDeadLetter, limit)
	if err != nil {
		return nil, fmt.Errorf("pipeline/dlq: list: %w", err)
	}

	entries := make([]Entry, 0, len(payloads))
	for _, p := range payloads {
		e, err := DecodeEntry(p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Count returns the number of dead-lettered jobs.
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.store.QueueLength(ctx, store.QueueDeadLetter)
	if err != nil {
		return 0, fmt.Errorf("pipeline/dlq: count: %w", err)
	}
	return n, nil
}

// Purge drops every entry. Dead-lettered job state records are untouched.
func (s *Service) Purge(ctx context.Context) error {
	if err := s.store.PurgeQueue(ctx, store.QueueDeadLetter); err != nil {
		return fmt.Errorf("pipeline/dlq: purge: %w", err)
	}
	return nil
}

// ReplayOldest pops the oldest entry, resets its state record to idle with
// a cleared error, and re-enqueues the job at the head of the stage
// sequence. Returns (nil, nil) when the queue is empty.
func (s *Service) ReplayOldest(ctx context.Context) (*Entry, error) {
	payload, err := s.store.Dequeue(ctx, store.QueueDeadLetter, time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("pipeline/dlq: replay: %w", err)
	}
	if payload == nil {
		return nil, nil
	}

	entry, err := DecodeEntry(payload)
	if err != nil {
		return nil, err
	}

	err = s.store.UpdateState(ctx, store.StateKey(entry.JobID), map[string]string{
		job.AttrStatus:         string(job.StatusIdle),
		job.AttrCurrentService: "",
		job.AttrError:          "",
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline/dlq: replay %q: %w", entry.JobID, err)
	}

	j := &job.Job{
		JobID:     entry.JobID,
		VideoID:   entry.VideoID,
		Emotion:   entry.Emotion,
		Intensity: entry.Intensity,
		Status:    job.StatusIdle,
	}
	snapshot, err := job.EncodeSnapshot(j)
	if err != nil {
		return nil, fmt.Errorf("pipeline/dlq: replay %q: %w", entry.JobID, err)
	}
	if err := s.store.Enqueue(ctx, store.QueueOracle, snapshot); err != nil {
		return nil, fmt.Errorf("pipeline/dlq: replay %q: %w", entry.JobID, err)
	}

	s.logger.Info("dead-lettered job replayed", "job_id", entry.JobID)
	return &entry, nil
}

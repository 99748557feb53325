package job

import (
	"encoding/json"
	"fmt"
	"time"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
	"github.com/brian95240/elite-video-pipeline-v3.0/id"
)

// Status represents the lifecycle state of a job.
type Status string

const (
	// StatusIdle means the job has been submitted but no stage has
	// started processing it.
	StatusIdle Status = "idle"
	// StatusProcessing means a stage is currently working on the job.
	StatusProcessing Status = "processing"
	// StatusCompleted means all stages finished successfully. Terminal.
	StatusCompleted Status = "completed"
	// StatusFailed means a stage failed and the job was dead-lettered.
	// Terminal.
	StatusFailed Status = "failed"
	// StatusPaused means an operator placed the job on hold; it may
	// resume to processing.
	StatusPaused Status = "paused"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether the state machine allows moving from one
// status to another. The machine is closed: idle feeds processing,
// processing resolves to completed or failed, and processing and paused
// swap for operator-triggered hold and resume. A processing-to-processing
// transition is allowed so stage handoffs can update the current service
// without a status change.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusIdle:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusProcessing || to == StatusCompleted ||
			to == StatusFailed || to == StatusPaused
	case StatusPaused:
		return to == StatusProcessing
	case StatusCompleted, StatusFailed:
		return false
	default:
		return false
	}
}

// Job represents a single video processing job flowing through the pipeline.
type Job struct {
	JobID          string            `json:"job_id"`
	VideoID        string            `json:"video_id"`
	Emotion        string            `json:"emotion"`
	Intensity      string            `json:"intensity"`
	Status         Status            `json:"status"`
	CurrentService string            `json:"current_service,omitempty"`
	Error          string            `json:"error,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	StartedAt      *time.Time        `json:"started_at,omitempty"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

// New builds an idle job for the given video, deriving its ID from the
// video identifier and the current time.
func New(videoID, emotion, intensity string, metadata map[string]string) *Job {
	now := time.Now().UTC()
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &Job{
		JobID:     id.NewAt(videoID, now),
		VideoID:   videoID,
		Emotion:   emotion,
		Intensity: intensity,
		Status:    StatusIdle,
		Metadata:  metadata,
		CreatedAt: now,
	}
}

// Transition moves the job to a new status, or returns ErrInvalidTransition
// if the state machine disallows it.
func (j *Job) Transition(to Status) error {
	if !CanTransition(j.Status, to) {
		return fmt.Errorf("job: %s -> %s: %w", j.Status, to, pipeline.ErrInvalidTransition)
	}
	j.Status = to
	return nil
}

// EncodeSnapshot serializes the job as a queue payload. The snapshot is a
// point-in-time copy, not a live reference to the state record.
func EncodeSnapshot(j *Job) ([]byte, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("job: encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot deserializes a queue payload back into a job.
func DecodeSnapshot(data []byte) (*Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("job: decode snapshot: %w", err)
	}
	return &j, nil
}

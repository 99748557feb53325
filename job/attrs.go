package job

import (
	"encoding/json"
	"fmt"
	"time"
)

// Attribute keys for the state-store hash representation of a job.
const (
	AttrJobID          = "job_id"
	AttrVideoID        = "video_id"
	AttrEmotion        = "emotion"
	AttrIntensity      = "intensity"
	AttrStatus         = "status"
	AttrCurrentService = "current_service"
	AttrError          = "error"
	AttrMetadata       = "metadata"
	AttrCreatedAt      = "created_at"
	AttrStartedAt      = "started_at"
	AttrCompletedAt    = "completed_at"
)

// ToAttrs converts the job to the flat attribute map stored in the state
// store. Timestamps use RFC 3339 with nanoseconds; metadata is embedded as a
// JSON object.
func (j *Job) ToAttrs() map[string]string {
	m := map[string]string{
		AttrJobID:     j.JobID,
		AttrVideoID:   j.VideoID,
		AttrEmotion:   j.Emotion,
		AttrIntensity: j.Intensity,
		AttrStatus:    string(j.Status),
		AttrCreatedAt: j.CreatedAt.Format(time.RFC3339Nano),
		AttrMetadata:  marshalJSON(j.Metadata),
	}
	if j.CurrentService != "" {
		m[AttrCurrentService] = j.CurrentService
	}
	if j.Error != "" {
		m[AttrError] = j.Error
	}
	if j.StartedAt != nil {
		m[AttrStartedAt] = j.StartedAt.Format(time.RFC3339Nano)
	}
	if j.CompletedAt != nil {
		m[AttrCompletedAt] = j.CompletedAt.Format(time.RFC3339Nano)
	}
	return m
}

// FromAttrs rebuilds a job from its state-store attribute map.
func FromAttrs(m map[string]string) (*Job, error) {
	if m[AttrJobID] == "" {
		return nil, fmt.Errorf("job: attrs missing %s", AttrJobID)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, m[AttrCreatedAt]) //nolint:errcheck // best-effort parse from trusted store data

	j := &Job{
		JobID:          m[AttrJobID],
		VideoID:        m[AttrVideoID],
		Emotion:        m[AttrEmotion],
		Intensity:      m[AttrIntensity],
		Status:         Status(m[AttrStatus]),
		CurrentService: m[AttrCurrentService],
		Error:          m[AttrError],
		Metadata:       unmarshalMap(m[AttrMetadata]),
		CreatedAt:      createdAt,
	}

	if v := m[AttrStartedAt]; v != "" {
		t, _ := time.Parse(time.RFC3339Nano, v) //nolint:errcheck // best-effort parse from trusted store data
		j.StartedAt = &t
	}
	if v := m[AttrCompletedAt]; v != "" {
		t, _ := time.Parse(time.RFC3339Nano, v) //nolint:errcheck // best-effort parse from trusted store data
		j.CompletedAt = &t
	}

	return j, nil
}

func marshalJSON(v any) string {
	b, _ := json.Marshal(v) //nolint:errcheck // marshal cannot fail for string maps
	return string(b)
}

func unmarshalMap(s string) map[string]string {
	if s == "" || s == "null" {
		return nil
	}
	out := make(map[string]string)
	_ = json.Unmarshal([]byte(s), &out) //nolint:errcheck // best-effort parse from trusted store data
	return out
}

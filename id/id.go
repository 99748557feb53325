// Package id derives job identifiers for the pipeline.
//
// A job ID is the caller-supplied video identifier joined to the submission
// time in Unix milliseconds: "video_001_1714060800123". IDs are sortable by
// submission time within a video and carry no coordination cost.
//
// Two submissions for the same video within the same millisecond collide.
// This is an accepted boundary of the scheme, not a bug to mask: callers
// needing stronger uniqueness must supply distinct video identifiers.
package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// New derives a job ID for the given video identifier at the current time.
func New(videoID string) string {
	return NewAt(videoID, time.Now())
}

// NewAt derives a job ID for the given video identifier at an explicit
// submission time. Primarily useful in tests.
func NewAt(videoID string, at time.Time) string {
	return videoID + "_" + strconv.FormatInt(at.UnixMilli(), 10)
}

// Parse splits a job ID back into its video identifier and submission time.
// Returns an error if the string does not carry a trailing millisecond
// timestamp component.
func Parse(jobID string) (videoID string, at time.Time, err error) {
	i := strings.LastIndexByte(jobID, '_')
	if i <= 0 || i == len(jobID)-1 {
		return "", time.Time{}, fmt.Errorf("id: parse %q: missing timestamp component", jobID)
	}

	ms, err := strconv.ParseInt(jobID[i+1:], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("id: parse %q: %w", jobID, err)
	}

	return jobID[:i], time.UnixMilli(ms).UTC(), nil
}

// Valid reports whether s looks like a job ID produced by New.
func Valid(s string) bool {
	_, _, err := Parse(s)
	return err == nil
}

package pipeline

import "errors"

var (
	// Store errors.
	ErrNoStore          = errors.New("pipeline: no store configured")
	ErrStoreUnavailable = errors.New("pipeline: store unavailable")
	ErrStateNotFound    = errors.New("pipeline: state record not found")
	ErrUnknownQueue     = errors.New("pipeline: unknown queue")

	// Job errors.
	ErrJobNotFound       = errors.New("pipeline: job not found")
	ErrInvalidTransition = errors.New("pipeline: invalid status transition")

	// Orchestrator errors.
	ErrValidation        = errors.New("pipeline: validation failed")
	ErrStageFailed       = errors.New("pipeline: stage execution failed")
	ErrResetNotConfirmed = errors.New("pipeline: reset requires confirmation")
	ErrLocalOnly         = errors.New("pipeline: operation unavailable in local-only mode")
)

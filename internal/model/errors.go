package model

import "errors"

// Sentinel errors for the task domain. Callers classify failures with
// errors.Is; the concrete detail travels in the wrapping message.
var (
	// ErrValidation is returned for bad caller input, such as a missing
	// field, a malformed identifier or an unsupported file format.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState is returned when an illegal task transition is
	// attempted, e.g. completing a task that never started processing.
	ErrInvalidState = errors.New("invalid task state")
)

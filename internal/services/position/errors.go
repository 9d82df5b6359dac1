package position

import "errors"

// Ordering-related errors
var (
	// ErrInvalidScope indicates a batch reorder referenced ids outside the
	// declared (project, list_position) bucket, or did not cover the
	// bucket exactly. The whole batch is rejected.
	ErrInvalidScope = errors.New("reorder references tasks outside the declared scope")

	// ErrInvalidPosition indicates a requested position below zero.
	ErrInvalidPosition = errors.New("invalid position: must be >= 0")
)

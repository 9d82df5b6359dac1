package task

import "errors"

// Task-related errors
var (
	// Validation errors
	ErrEmptyTitle       = errors.New("task title cannot be empty")
	ErrTitleTooLong     = errors.New("task title cannot exceed 255 characters")
	ErrInvalidTaskID    = errors.New("invalid task ID")
	ErrInvalidProjectID = errors.New("invalid project ID")

	// Business logic errors
	ErrTaskNotFound    = errors.New("task not found")
	ErrProjectNotFound = errors.New("project not found")

	// ErrBusy indicates the per-scope lock could not be acquired within
	// the configured budget. The caller should retry.
	ErrBusy = errors.New("operation busy: could not acquire scope lock, retry")

	// ErrStorage wraps unexpected storage failures so callers can tell
	// "your input was invalid" apart from "the system failed".
	ErrStorage = errors.New("storage error")
)

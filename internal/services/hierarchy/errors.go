package hierarchy

import "errors"

// Hierarchy-related errors
var (
	// ErrDepthExceeded indicates a change would nest a task deeper than
	// the configured maximum. Recoverable: pick a shallower parent.
	ErrDepthExceeded = errors.New("maximum subtask depth exceeded")

	// ErrInvalidParent indicates the proposed parent does not exist,
	// belongs to a different project, or sits inside the task's own subtree.
	ErrInvalidParent = errors.New("invalid parent task")

	// ErrCorruptHierarchy indicates a parent-chain walk exceeded its safety
	// bound. This means the depth invariant was already violated before the
	// call and should be surfaced as a server-side alert, not a user error.
	ErrCorruptHierarchy = errors.New("corrupt task hierarchy: parent chain exceeds safety bound")
)

package graph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrCircularDependency is the sentinel every cycle rejection unwraps to.
var ErrCircularDependency = errors.New("circular dependency detected")

// CycleError reports one concrete cycle found while validating a proposed
// dependency set. Traversal order is deterministic, so validating the same
// state always names the same path.
type CycleError struct {
	// Path lists the task ids along the cycle; the first and last id are
	// the same, e.g. [3 5 3] for 3 -> 5 -> 3.
	Path []int
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return ErrCircularDependency.Error()
	}
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("%s: %s", ErrCircularDependency.Error(), strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCircularDependency }

func cycleError(path []int) error {
	return &CycleError{Path: path}
}

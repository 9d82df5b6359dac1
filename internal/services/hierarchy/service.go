// Package hierarchy validates the parent/child task tree: depth bounds,
// self-ancestry, and subtree collection for cascade deletes.
package hierarchy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/cadena/internal/database"
	"github.com/thenoetrevino/cadena/internal/models"
)

// Service defines hierarchy validation operations
type Service interface {
	// Depth returns the number of ancestor hops from the task to its
	// top-level root. Top-level tasks have depth 0.
	Depth(ctx context.Context, task *models.Task) (int, error)

	// SubtreeHeight returns the length of the longest descendant chain
	// below the task. A leaf has height 0.
	SubtreeHeight(ctx context.Context, task *models.Task) (int, error)

	// ValidateCreateUnder checks that a new task may be created under the
	// given parent (nil means top level).
	ValidateCreateUnder(ctx context.Context, parent *models.Task) error

	// ValidateReparent checks that the task may be moved under newParent
	// (nil means promotion to top level). Rejects cross-project parents,
	// self-parenting, parents inside the task's own subtree, and moves
	// that would push the task's deepest descendant past the limit.
	ValidateReparent(ctx context.Context, task *models.Task, newParent *models.Task) error

	// Subtree returns the task and all of its descendants ordered
	// children-before-parents (deepest first), the order cascade deletion
	// needs.
	Subtree(ctx context.Context, task *models.Task) ([]*models.Task, error)
}

// service implements Service
type service struct {
	repo     database.TaskReader
	maxDepth int
}

// NewService creates a hierarchy service enforcing depth(task) < maxDepth.
func NewService(repo database.TaskReader, maxDepth int) Service {
	if maxDepth <= 0 {
		maxDepth = models.DefaultMaxDepth
	}
	return &service{repo: repo, maxDepth: maxDepth}
}

// Depth walks parent references until it reaches a top-level task.
// The walk is bounded at 2*maxDepth hops; exceeding the bound means the
// stored tree already violates the depth invariant.
func (s *service) Depth(ctx context.Context, task *models.Task) (int, error) {
	bound := 2 * s.maxDepth
	depth := 0
	current := task
	for current.ParentID != nil {
		depth++
		if depth > bound {
			slog.Error("parent chain exceeds safety bound",
				"task_id", task.ID, "bound", bound)
			return 0, fmt.Errorf("%w (task %d)", ErrCorruptHierarchy, task.ID)
		}
		parent, err := s.repo.GetTask(ctx, *current.ParentID)
		if err != nil {
			return 0, fmt.Errorf("failed to load parent %d: %w", *current.ParentID, err)
		}
		current = parent
	}
	return depth, nil
}

// SubtreeHeight does a level-order walk of the task's descendants.
// Bounded the same way as Depth so corrupted data cannot loop forever.
func (s *service) SubtreeHeight(ctx context.Context, task *models.Task) (int, error) {
	bound := 2 * s.maxDepth
	height := 0
	level := []*models.Task{task}
	for {
		var next []*models.Task
		for _, t := range level {
			children, err := s.repo.GetChildren(ctx, t.ID)
			if err != nil {
				return 0, fmt.Errorf("failed to load children of %d: %w", t.ID, err)
			}
			next = append(next, children...)
		}
		if len(next) == 0 {
			return height, nil
		}
		height++
		if height > bound {
			slog.Error("descendant chain exceeds safety bound",
				"task_id", task.ID, "bound", bound)
			return 0, fmt.Errorf("%w (task %d)", ErrCorruptHierarchy, task.ID)
		}
		level = next
	}
}

// ValidateCreateUnder checks depth for a new leaf under parent.
func (s *service) ValidateCreateUnder(ctx context.Context, parent *models.Task) error {
	if parent == nil {
		return nil
	}
	parentDepth, err := s.Depth(ctx, parent)
	if err != nil {
		return err
	}
	if parentDepth+1 >= s.maxDepth {
		return fmt.Errorf("%w: parent %d is at depth %d, limit is %d",
			ErrDepthExceeded, parent.ID, parentDepth, s.maxDepth)
	}
	return nil
}

// ValidateReparent checks tree-structure rules for moving task under newParent.
func (s *service) ValidateReparent(ctx context.Context, task *models.Task, newParent *models.Task) error {
	if newParent == nil {
		// Promotion to top level can only decrease depth.
		return nil
	}
	if newParent.ID == task.ID {
		return fmt.Errorf("%w: task %d cannot be its own parent", ErrInvalidParent, task.ID)
	}
	if newParent.ProjectID != task.ProjectID {
		return fmt.Errorf("%w: task %d belongs to a different project", ErrInvalidParent, newParent.ID)
	}

	// The new parent must not sit inside the task's own subtree. Walking
	// the parent's ancestor chain is cheaper than enumerating the subtree.
	inside, err := s.isAncestor(ctx, task.ID, newParent)
	if err != nil {
		return err
	}
	if inside {
		return fmt.Errorf("%w: task %d is a descendant of task %d",
			ErrInvalidParent, newParent.ID, task.ID)
	}

	// The moved task's deepest descendant must stay under the limit.
	parentDepth, err := s.Depth(ctx, newParent)
	if err != nil {
		return err
	}
	height, err := s.SubtreeHeight(ctx, task)
	if err != nil {
		return err
	}
	if parentDepth+1+height >= s.maxDepth {
		return fmt.Errorf("%w: task %d would reach depth %d, limit is %d",
			ErrDepthExceeded, task.ID, parentDepth+1+height, s.maxDepth)
	}
	return nil
}

// isAncestor reports whether ancestorID appears in task's parent chain.
func (s *service) isAncestor(ctx context.Context, ancestorID int, task *models.Task) (bool, error) {
	bound := 2 * s.maxDepth
	hops := 0
	current := task
	for current.ParentID != nil {
		if *current.ParentID == ancestorID {
			return true, nil
		}
		hops++
		if hops > bound {
			return false, fmt.Errorf("%w (task %d)", ErrCorruptHierarchy, task.ID)
		}
		parent, err := s.repo.GetTask(ctx, *current.ParentID)
		if err != nil {
			return false, fmt.Errorf("failed to load parent %d: %w", *current.ParentID, err)
		}
		current = parent
	}
	return false, nil
}

// Subtree collects the task and all descendants, deepest first.
func (s *service) Subtree(ctx context.Context, task *models.Task) ([]*models.Task, error) {
	var ordered []*models.Task
	bound := 2 * s.maxDepth

	var walk func(t *models.Task, depth int) error
	walk = func(t *models.Task, depth int) error {
		if depth > bound {
			return fmt.Errorf("%w (task %d)", ErrCorruptHierarchy, task.ID)
		}
		children, err := s.repo.GetChildren(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("failed to load children of %d: %w", t.ID, err)
		}
		for _, child := range children {
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		ordered = append(ordered, t)
		return nil
	}

	if err := walk(task, 0); err != nil {
		return nil, err
	}
	return ordered, nil
}

// Package graph keeps the "depends on" edge set acyclic.
//
// Edges are stored as (task_id, depends_on_id) pairs; the dependent view
// is derived on read. Validation runs before any edge is written, so a
// rejected set leaves existing edges untouched.
package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/thenoetrevino/cadena/internal/database"
	"github.com/thenoetrevino/cadena/internal/models"
)

// Service defines dependency graph operations
type Service interface {
	// WouldCreateCycle reports whether adding the edge task -> newDependency
	// would close a cycle. Self-dependency is a trivial cycle.
	WouldCreateCycle(ctx context.Context, task *models.Task, newDependencyID int) (bool, error)

	// ValidateSet checks a full proposed dependency set for the task,
	// failing fast with a CycleError naming the cycle path.
	ValidateSet(ctx context.Context, task *models.Task, dependencyIDs []int) error

	// Dependencies returns the tasks this task depends on, ordered by id.
	Dependencies(ctx context.Context, taskID int) ([]*models.TaskRef, error)

	// DependentTasks returns the tasks that depend on this task, ordered
	// by id. Derived from the edge set on read, never stored.
	DependentTasks(ctx context.Context, taskID int) ([]*models.TaskRef, error)
}

// service implements Service
type service struct {
	repo database.DependencyReader
}

// NewService creates a dependency graph service
func NewService(repo database.DependencyReader) Service {
	return &service{repo: repo}
}

// WouldCreateCycle checks reachability of task from newDependencyID over
// the current edge set.
func (s *service) WouldCreateCycle(ctx context.Context, task *models.Task, newDependencyID int) (bool, error) {
	if newDependencyID == task.ID {
		return true, nil
	}

	edges, err := s.repo.GetDependencyEdges(ctx, task.ProjectID)
	if err != nil {
		return false, fmt.Errorf("failed to load dependency edges: %w", err)
	}

	path := reach(edges, newDependencyID, task.ID)
	return path != nil, nil
}

// ValidateSet validates the proposed replacement edge set for the task.
//
// The stored graph is acyclic by invariant, so any new cycle must pass
// through the task being edited; a DFS from the task over the overlaid
// adjacency finds it. A shared visited set keeps re-traversal linear even
// when dependency subtrees overlap.
func (s *service) ValidateSet(ctx context.Context, task *models.Task, dependencyIDs []int) error {
	for _, depID := range dependencyIDs {
		if depID == task.ID {
			return cycleError([]int{task.ID, task.ID})
		}
	}

	edges, err := s.repo.GetDependencyEdges(ctx, task.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to load dependency edges: %w", err)
	}

	// Overlay the proposed set, sorted for deterministic traversal.
	proposed := append([]int(nil), dependencyIDs...)
	sort.Ints(proposed)
	edges[task.ID] = proposed

	if path := reach(edges, task.ID, task.ID); path != nil {
		return cycleError(path)
	}
	return nil
}

// reach runs an iterative-deepening-free DFS from `from`, returning the
// path from -> ... -> target if target is reachable, else nil. Neighbor
// lists are already sorted, so the first cycle found is stable.
func reach(edges map[int][]int, from, target int) []int {
	visited := make(map[int]bool)
	var path []int

	var dfs func(node int) bool
	dfs = func(node int) bool {
		path = append(path, node)
		for _, next := range edges[node] {
			if next == target {
				path = append(path, target)
				return true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if dfs(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if dfs(from) {
		return path
	}
	return nil
}

// Dependencies returns direct dependencies of a task
func (s *service) Dependencies(ctx context.Context, taskID int) ([]*models.TaskRef, error) {
	return s.repo.GetDependencies(ctx, taskID)
}

// DependentTasks returns the derived inverse view
func (s *service) DependentTasks(ctx context.Context, taskID int) ([]*models.TaskRef, error) {
	return s.repo.GetDependents(ctx, taskID)
}

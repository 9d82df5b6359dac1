package database

import (
	"context"

	"github.com/thenoetrevino/cadena/internal/models"
)

// PositionUpdate assigns one task an absolute position inside a bucket.
// The position manager computes a batch of these; the repository applies
// the whole batch in a single transaction.
type PositionUpdate struct {
	TaskID       int
	Position     int
	ListPosition string
}

// TaskReader defines read operations for tasks.
type TaskReader interface {
	GetTask(ctx context.Context, id int) (*models.Task, error)
	GetTasksByIDs(ctx context.Context, ids []int) ([]*models.Task, error)
	GetTasksByProject(ctx context.Context, projectID int) ([]*models.Task, error)
	GetTasksByBucket(ctx context.Context, projectID int, listPosition string) ([]*models.Task, error)
	GetChildren(ctx context.Context, taskID int) ([]*models.Task, error)
}

// DependencyReader defines read operations for the dependency edge set.
// All results are ordered by task id so traversal is deterministic.
type DependencyReader interface {
	GetDependencyIDs(ctx context.Context, taskID int) ([]int, error)
	GetDependencies(ctx context.Context, taskID int) ([]*models.TaskRef, error)
	GetDependents(ctx context.Context, taskID int) ([]*models.TaskRef, error)
	GetDependencyEdges(ctx context.Context, projectID int) (map[int][]int, error)
}

// TaskWriter defines write operations for tasks. Every method runs in a
// single transaction and appends the supplied history entry (or entries)
// inside it, so a mutation and its audit record commit or roll back
// together.
type TaskWriter interface {
	CreateTask(ctx context.Context, task *models.Task, entry *models.HistoryEntry) (*models.Task, error)
	UpdateTaskContent(ctx context.Context, id int, title, description string, entry *models.HistoryEntry) error
	UpdateTaskParent(ctx context.Context, id int, parentID *int, entry *models.HistoryEntry) error
	ReplaceDependencies(ctx context.Context, id int, dependsOn []int, entry *models.HistoryEntry) error
	ApplyPositions(ctx context.Context, updates []PositionUpdate, entry *models.HistoryEntry) error
	DeleteTasks(ctx context.Context, ids []int, entries []*models.HistoryEntry) error
}

// TaskRepository combines all task-related operations.
type TaskRepository interface {
	TaskReader
	DependencyReader
	TaskWriter
}

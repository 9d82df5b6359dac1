// Package history records the audit trail. One logical operation produces
// exactly one entry (a cascade delete is the exception: one entry per
// removed task, so the ledger shows what disappeared).
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/cadena/internal/database"
	"github.com/thenoetrevino/cadena/internal/models"
)

// Service defines audit trail operations
type Service interface {
	// NewEntry builds an entry ready to be appended. The id is assigned
	// here, before any transaction starts, so repositories can insert the
	// entry alongside the mutation it describes.
	NewEntry(task *models.Task, action models.HistoryAction, actorID string, details map[string]any) *models.HistoryEntry

	// NewProjectEntry builds an entry for an operation that spans a whole
	// bucket or project rather than one task, e.g. a batch reorder. The
	// task id is left zero.
	NewProjectEntry(projectID int, action models.HistoryAction, actorID string, details map[string]any) *models.HistoryEntry

	// Record appends a standalone entry.
	Record(ctx context.Context, entry *models.HistoryEntry) error

	// ListForTask returns a task's entries, newest first.
	ListForTask(ctx context.Context, taskID int) ([]*models.HistoryEntry, error)

	// ListForProject returns a project's entries, newest first.
	ListForProject(ctx context.Context, projectID int) ([]*models.HistoryEntry, error)
}

// service implements Service
type service struct {
	repo database.HistoryRepository
}

// NewService creates a history recorder
func NewService(repo database.HistoryRepository) Service {
	return &service{repo: repo}
}

// NewEntry builds an immutable audit record for one mutation of the task.
func (s *service) NewEntry(task *models.Task, action models.HistoryAction, actorID string, details map[string]any) *models.HistoryEntry {
	entityType := models.EntityTask
	if task.IsSubtask() {
		entityType = models.EntitySubtask
	}
	return &models.HistoryEntry{
		ID:         uuid.NewString(),
		EntityType: entityType,
		TaskID:     task.ID,
		ProjectID:  task.ProjectID,
		Action:     action,
		Details:    details,
		ActorID:    actorID,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewProjectEntry builds a project-scoped audit record.
func (s *service) NewProjectEntry(projectID int, action models.HistoryAction, actorID string, details map[string]any) *models.HistoryEntry {
	return &models.HistoryEntry{
		ID:         uuid.NewString(),
		EntityType: models.EntityTask,
		ProjectID:  projectID,
		Action:     action,
		Details:    details,
		ActorID:    actorID,
		CreatedAt:  time.Now().UTC(),
	}
}

// Record appends an entry outside a task mutation transaction.
func (s *service) Record(ctx context.Context, entry *models.HistoryEntry) error {
	return s.repo.AppendHistory(ctx, entry)
}

// ListForTask returns the task's audit trail, newest first
func (s *service) ListForTask(ctx context.Context, taskID int) ([]*models.HistoryEntry, error) {
	return s.repo.ListHistoryForTask(ctx, taskID)
}

// ListForProject returns the project's audit trail, newest first
func (s *service) ListForProject(ctx context.Context, projectID int) ([]*models.HistoryEntry, error) {
	return s.repo.ListHistoryForProject(ctx, projectID)
}

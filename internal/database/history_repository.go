package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/thenoetrevino/cadena/internal/models"
)

// HistoryRepo implements HistoryRepository against sqlite.
type HistoryRepo struct {
	db *sql.DB
}

// execer lets insertHistoryTx run inside either a transaction or a bare
// connection.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertHistoryTx appends one entry. Shared with TaskRepo so mutations
// and their audit records commit in the same transaction.
func insertHistoryTx(ctx context.Context, ex execer, entry *models.HistoryEntry) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal history details: %w", err)
	}

	_, err = ex.ExecContext(ctx,
		`INSERT INTO task_history (id, entity_type, task_id, project_id, action, details, actor_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.EntityType, entry.TaskID, entry.ProjectID,
		string(entry.Action), string(payload), entry.ActorID, entry.CreatedAt,
	)
	return err
}

// AppendHistory appends a standalone entry outside any task mutation.
func (r *HistoryRepo) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	return insertHistoryTx(ctx, r.db, entry)
}

// ListHistoryForTask returns a task's entries, newest first
func (r *HistoryRepo) ListHistoryForTask(ctx context.Context, taskID int) ([]*models.HistoryEntry, error) {
	return r.queryEntries(ctx,
		`SELECT id, entity_type, task_id, project_id, action, details, actor_id, created_at
		 FROM task_history
		 WHERE task_id = ?
		 ORDER BY created_at DESC, id DESC`,
		taskID,
	)
}

// ListHistoryForProject returns a project's entries, newest first
func (r *HistoryRepo) ListHistoryForProject(ctx context.Context, projectID int) ([]*models.HistoryEntry, error) {
	return r.queryEntries(ctx,
		`SELECT id, entity_type, task_id, project_id, action, details, actor_id, created_at
		 FROM task_history
		 WHERE project_id = ?
		 ORDER BY created_at DESC, id DESC`,
		projectID,
	)
}

func (r *HistoryRepo) queryEntries(ctx context.Context, query string, args ...any) ([]*models.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		entry := &models.HistoryEntry{}
		var action, details string
		if err := rows.Scan(
			&entry.ID, &entry.EntityType, &entry.TaskID, &entry.ProjectID,
			&action, &details, &entry.ActorID, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Action = models.HistoryAction(action)
		if details != "" {
			if err := json.Unmarshal([]byte(details), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshal history details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

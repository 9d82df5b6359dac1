package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thenoetrevino/cadena/internal/models"
)

// TaskRepo implements TaskRepository against sqlite.
type TaskRepo struct {
	db *sql.DB
}

// ============================================================================
// Read Operations
// ============================================================================

// GetTask retrieves a single task by id
func (r *TaskRepo) GetTask(ctx context.Context, id int) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return task, err
}

// GetTasksByIDs retrieves the given tasks, ordered by id.
// Missing ids are simply absent from the result; callers that need
// existence checks compare lengths.
func (r *TaskRepo) GetTasksByIDs(ctx context.Context, ids []int) ([]*models.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id IN (` + inPlaceholders(len(ids)) + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, intsToArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// GetTasksByProject retrieves all tasks for a project, ordered by bucket then position
func (r *TaskRepo) GetTasksByProject(ctx context.Context, projectID int) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE project_id = ?
		 ORDER BY list_position, position, id`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// GetTasksByBucket retrieves all tasks in one (project, list_position) bucket,
// ordered by position
func (r *TaskRepo) GetTasksByBucket(ctx context.Context, projectID int, listPosition string) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE project_id = ? AND list_position = ?
		 ORDER BY position, id`,
		projectID, listPosition,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// GetChildren retrieves the direct subtasks of a task, ordered by id
func (r *TaskRepo) GetChildren(ctx context.Context, taskID int) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE parent_id = ? ORDER BY id`,
		taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// GetDependencyIDs returns the ids this task depends on, ascending
func (r *TaskRepo) GetDependencyIDs(ctx context.Context, taskID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT depends_on_id FROM task_dependencies WHERE task_id = ? ORDER BY depends_on_id`,
		taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetDependencies returns references to the tasks this task depends on
func (r *TaskRepo) GetDependencies(ctx context.Context, taskID int) ([]*models.TaskRef, error) {
	return r.queryRefs(ctx,
		`SELECT t.id, t.title, t.list_position, t.position
		 FROM task_dependencies d
		 JOIN tasks t ON t.id = d.depends_on_id
		 WHERE d.task_id = ?
		 ORDER BY t.id`,
		taskID,
	)
}

// GetDependents returns references to the tasks that depend on this task.
// This is the derived inverse view; it is never stored.
func (r *TaskRepo) GetDependents(ctx context.Context, taskID int) ([]*models.TaskRef, error) {
	return r.queryRefs(ctx,
		`SELECT t.id, t.title, t.list_position, t.position
		 FROM task_dependencies d
		 JOIN tasks t ON t.id = d.task_id
		 WHERE d.depends_on_id = ?
		 ORDER BY t.id`,
		taskID,
	)
}

// GetDependencyEdges returns the full adjacency map for one project.
// Neighbor lists come back sorted so graph traversal is deterministic.
func (r *TaskRepo) GetDependencyEdges(ctx context.Context, projectID int) (map[int][]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT d.task_id, d.depends_on_id
		 FROM task_dependencies d
		 JOIN tasks t ON t.id = d.task_id
		 WHERE t.project_id = ?
		 ORDER BY d.task_id, d.depends_on_id`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	edges := make(map[int][]int)
	for rows.Next() {
		var from, to int
		if err := rows.Scan(&from, &to); err != nil {
			return nil, err
		}
		edges[from] = append(edges[from], to)
	}
	return edges, rows.Err()
}

func (r *TaskRepo) queryRefs(ctx context.Context, query string, args ...any) ([]*models.TaskRef, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*models.TaskRef
	for rows.Next() {
		ref := &models.TaskRef{}
		if err := rows.Scan(&ref.ID, &ref.Title, &ref.ListPosition, &ref.Position); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ============================================================================
// Write Operations
// ============================================================================

// CreateTask inserts a new task at the end of its bucket and appends the
// history entry in the same transaction. The entry's TaskID is filled in
// once the row id is known.
func (r *TaskRepo) CreateTask(ctx context.Context, task *models.Task, entry *models.HistoryEntry) (*models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Append to the end of the (project, list_position) bucket
	var position int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM tasks
		 WHERE project_id = ? AND list_position = ?`,
		task.ProjectID, task.ListPosition,
	).Scan(&position)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (project_id, parent_id, title, description, list_position, position)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		task.ProjectID, nullableInt(task.ParentID), task.Title, task.Description,
		task.ListPosition, position,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	if entry != nil {
		entry.TaskID = int(id)
		if err := insertHistoryTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	// Retrieve the created task to get timestamps
	created, err := scanTask(tx.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTaskContent updates a task's title and description
func (r *TaskRepo) UpdateTaskContent(ctx context.Context, id int, title, description string, entry *models.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE tasks
		 SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, description, id,
	)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	if entry != nil {
		if err := insertHistoryTx(ctx, tx, entry); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpdateTaskParent re-parents a task. A nil parentID promotes the task to
// top level. Depth and self-ancestry validation happen in the hierarchy
// service before this is called.
func (r *TaskRepo) UpdateTaskParent(ctx context.Context, id int, parentID *int, entry *models.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE tasks
		 SET parent_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullableInt(parentID), id,
	)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	if entry != nil {
		if err := insertHistoryTx(ctx, tx, entry); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReplaceDependencies swaps the full dependency edge set of a task.
// Acyclicity is validated by the graph service before this is called;
// the replacement itself is all-or-nothing.
func (r *TaskRepo) ReplaceDependencies(ctx context.Context, id int, dependsOn []int, entry *models.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM task_dependencies WHERE task_id = ?`, id); err != nil {
		return err
	}

	for _, depID := range dependsOn {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_dependencies (task_id, depends_on_id) VALUES (?, ?)`,
			id, depID,
		); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return err
	}

	if entry != nil {
		if err := insertHistoryTx(ctx, tx, entry); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ApplyPositions applies a renumbering plan in one transaction.
// Each update sets an absolute position (and bucket), so the batch is
// idempotent: applying the same plan twice yields the same layout.
func (r *TaskRepo) ApplyPositions(ctx context.Context, updates []PositionUpdate, entry *models.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range updates {
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks
			 SET position = ?, list_position = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			u.Position, u.ListPosition, u.TaskID,
		); err != nil {
			return err
		}
	}

	if entry != nil {
		if err := insertHistoryTx(ctx, tx, entry); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteTasks removes the given tasks in order (callers pass descendants
// before ancestors) and strips every dependency edge that references a
// deleted id. One history entry per deleted task is appended in the same
// transaction.
func (r *TaskRepo) DeleteTasks(ctx context.Context, ids []int, entries []*models.HistoryEntry) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	placeholders := inPlaceholders(len(ids))
	args := intsToArgs(ids)

	// Strip edges in both directions so no remaining task references a
	// deleted id.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM task_dependencies
		 WHERE task_id IN (`+placeholders+`) OR depends_on_id IN (`+placeholders+`)`,
		append(append([]any{}, args...), args...)...,
	); err != nil {
		return err
	}

	// Delete one by one in the given order; the parent_id foreign key
	// requires children to go first.
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
			return err
		}
	}

	for _, entry := range entries {
		if err := insertHistoryTx(ctx, tx, entry); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ============================================================================
// Scan helpers
// ============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var parentID sql.NullInt64
	var description sql.NullString
	err := row.Scan(
		&task.ID, &task.ProjectID, &parentID, &task.Title, &description,
		&task.ListPosition, &task.Position, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.ParentID = intPtr(parentID)
	task.Description = description.String
	return task, nil
}

func scanTasks(rows *sql.Rows) ([]*models.Task, error) {
	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
)

// runMigrations creates the database schema.
//
// Note: tasks.parent_id deliberately has no ON DELETE CASCADE. Cascade
// deletion is performed by the task service, deepest subtree first, so
// that every removed task gets its own history entry in a sensible order.
func runMigrations(ctx context.Context, db *sql.DB) error {
	schema := `
	-- Projects table
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Tasks table
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		parent_id INTEGER,
		title TEXT NOT NULL CHECK(length(title) <= 255),
		description TEXT,
		list_position TEXT NOT NULL DEFAULT 'todo',
		position INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
		FOREIGN KEY (parent_id) REFERENCES tasks(id)
	);

	-- Dependency edges: task_id depends on depends_on_id
	CREATE TABLE IF NOT EXISTS task_dependencies (
		task_id INTEGER NOT NULL,
		depends_on_id INTEGER NOT NULL,
		PRIMARY KEY (task_id, depends_on_id),
		FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE,
		FOREIGN KEY (depends_on_id) REFERENCES tasks(id) ON DELETE CASCADE
	);

	-- Append-only audit ledger
	CREATE TABLE IF NOT EXISTS task_history (
		id TEXT PRIMARY KEY,
		entity_type TEXT NOT NULL,
		task_id INTEGER NOT NULL,
		project_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '{}',
		actor_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Indexes for efficient queries
	CREATE INDEX IF NOT EXISTS idx_tasks_bucket ON tasks(project_id, list_position, position);
	CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);
	CREATE INDEX IF NOT EXISTS idx_deps_task ON task_dependencies(task_id);
	CREATE INDEX IF NOT EXISTS idx_deps_depends_on ON task_dependencies(depends_on_id);
	CREATE INDEX IF NOT EXISTS idx_history_task ON task_history(task_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_history_project ON task_history(project_id, created_at);
	`

	_, err := db.ExecContext(ctx, schema)
	return err
}

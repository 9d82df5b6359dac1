package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// SetupTestDB creates an in-memory database with full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	// A single connection keeps every caller on the same in-memory database
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints
	_, err = db.ExecContext(context.Background(), "PRAGMA foreign_keys = ON")
	if err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	// Run migrations inline
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// createTestSchema creates the complete database schema for testing
func createTestSchema(db *sql.DB) error {
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

	-- Dependency edges
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

	CREATE INDEX IF NOT EXISTS idx_tasks_bucket ON tasks(project_id, list_position, position);
	CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);
	CREATE INDEX IF NOT EXISTS idx_deps_task ON task_dependencies(task_id);
	CREATE INDEX IF NOT EXISTS idx_deps_depends_on ON task_dependencies(depends_on_id);
	CREATE INDEX IF NOT EXISTS idx_history_task ON task_history(task_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_history_project ON task_history(project_id, created_at);
	`

	_, err := db.ExecContext(context.Background(), schema)
	return err
}

// CreateTestProject creates a project row and returns its id
func CreateTestProject(t *testing.T, db *sql.DB, name string) int {
	t.Helper()
	result, err := db.ExecContext(context.Background(),
		"INSERT INTO projects (name, description) VALUES (?, ?)", name, "Test description")
	if err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get project id: %v", err)
	}
	return int(id)
}

// CreateTestTask inserts a task row directly and returns its id.
// parentID may be 0 for top-level tasks.
func CreateTestTask(t *testing.T, db *sql.DB, projectID int, parentID int, title, listPosition string, position int) int {
	t.Helper()
	var parent any
	if parentID > 0 {
		parent = parentID
	}
	result, err := db.ExecContext(context.Background(),
		`INSERT INTO tasks (project_id, parent_id, title, list_position, position)
		 VALUES (?, ?, ?, ?, ?)`,
		projectID, parent, title, listPosition, position)
	if err != nil {
		t.Fatalf("Failed to create test task: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get task id: %v", err)
	}
	return int(id)
}

// AddTestDependency inserts one dependency edge directly
func AddTestDependency(t *testing.T, db *sql.DB, taskID, dependsOnID int) {
	t.Helper()
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO task_dependencies (task_id, depends_on_id) VALUES (?, ?)",
		taskID, dependsOnID)
	if err != nil {
		t.Fatalf("Failed to add test dependency: %v", err)
	}
}

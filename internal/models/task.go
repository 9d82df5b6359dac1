package models

import "time"

// Task represents a single unit of work inside a project.
// ParentID is nil for top-level tasks; subtasks reference their parent by id
// rather than by embedded pointer so re-parenting is a single column update.
type Task struct {
	ID           int
	ProjectID    int
	ParentID     *int
	Title        string
	Description  string
	ListPosition string // workflow column label, e.g. "todo", "in_progress"
	Position     int    // ordering key within (project_id, list_position)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsSubtask reports whether the task has a parent.
func (t *Task) IsSubtask() bool {
	return t.ParentID != nil
}

// TaskRef is a lightweight reference to a task.
// Used for dependency views, board cards, and tree rendering without
// loading full task details.
type TaskRef struct {
	ID           int
	Title        string
	ListPosition string
	Position     int
}

// TaskDetail is a DTO for the full task view.
// Dependencies and Dependents are the direct edges only; Dependents is
// derived from the edge table on read, never stored.
type TaskDetail struct {
	Task
	Depth        int
	Dependencies []*TaskRef // tasks this task depends on
	Dependents   []*TaskRef // tasks that depend on this task
	Children     []*TaskRef // direct subtasks
}

// TreeNode is one node of a project's parent/child task tree.
type TreeNode struct {
	Task     *TaskRef
	Children []*TreeNode
}

// Board groups a project's tasks by workflow column.
// Each group is sorted ascending by position. Tasks with an empty
// list_position are grouped under UncategorizedBucket.
type Board map[string][]*TaskRef

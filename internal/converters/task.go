// Package converters provides type-safe conversion between internal
// domain models and the versioned output structs the CLI (and any other
// caller) serializes. Internal fields never leak into the wire format.
package converters

import (
	"time"

	"github.com/thenoetrevino/cadena/internal/models"
)

// TaskView is the external representation of a task.
type TaskView struct {
	ID           int       `json:"id"`
	ProjectID    int       `json:"project_id"`
	ParentID     *int      `json:"parent_id,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ListPosition string    `json:"list_position"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TaskRefView is the external representation of a task reference.
type TaskRefView struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	ListPosition string `json:"list_position"`
	Position     int    `json:"position"`
}

// TaskDetailView is the external representation of a full task view.
type TaskDetailView struct {
	TaskView
	Depth        int            `json:"depth"`
	Dependencies []*TaskRefView `json:"dependencies"`
	Dependents   []*TaskRefView `json:"dependents"`
	Children     []*TaskRefView `json:"children"`
}

// HistoryEntryView is the external representation of an audit entry.
type HistoryEntryView struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entity_type"`
	TaskID     int            `json:"task_id"`
	ProjectID  int            `json:"project_id"`
	Action     string         `json:"action"`
	Details    map[string]any `json:"details,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TaskToView converts a domain task to its external form
func TaskToView(t *models.Task) *TaskView {
	return &TaskView{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		ParentID:     t.ParentID,
		Title:        t.Title,
		Description:  t.Description,
		ListPosition: t.ListPosition,
		Position:     t.Position,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// RefToView converts a task reference
func RefToView(r *models.TaskRef) *TaskRefView {
	return &TaskRefView{
		ID:           r.ID,
		Title:        r.Title,
		ListPosition: r.ListPosition,
		Position:     r.Position,
	}
}

// RefsToViews converts a slice of task references.
// Always returns a non-nil slice so JSON renders [] rather than null.
func RefsToViews(refs []*models.TaskRef) []*TaskRefView {
	views := make([]*TaskRefView, 0, len(refs))
	for _, r := range refs {
		views = append(views, RefToView(r))
	}
	return views
}

// DetailToView converts a full task detail
func DetailToView(d *models.TaskDetail) *TaskDetailView {
	return &TaskDetailView{
		TaskView:     *TaskToView(&d.Task),
		Depth:        d.Depth,
		Dependencies: RefsToViews(d.Dependencies),
		Dependents:   RefsToViews(d.Dependents),
		Children:     RefsToViews(d.Children),
	}
}

// HistoryToView converts an audit entry
func HistoryToView(e *models.HistoryEntry) *HistoryEntryView {
	return &HistoryEntryView{
		ID:         e.ID,
		EntityType: e.EntityType,
		TaskID:     e.TaskID,
		ProjectID:  e.ProjectID,
		Action:     string(e.Action),
		Details:    e.Details,
		ActorID:    e.ActorID,
		CreatedAt:  e.CreatedAt,
	}
}

// HistoryToViews converts a slice of audit entries
func HistoryToViews(entries []*models.HistoryEntry) []*HistoryEntryView {
	views := make([]*HistoryEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, HistoryToView(e))
	}
	return views
}

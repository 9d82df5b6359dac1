package converters

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/thenoetrevino/cadena/internal/models"
)

func TestTaskToView(t *testing.T) {
	parentID := 3
	now := time.Now()
	task := &models.Task{
		ID: 7, ProjectID: 2, ParentID: &parentID,
		Title: "Task", Description: "Desc",
		ListPosition: "todo", Position: 4,
		CreatedAt: now, UpdatedAt: now,
	}

	view := TaskToView(task)
	if view.ID != 7 || view.ProjectID != 2 {
		t.Errorf("Unexpected identity: %+v", view)
	}
	if view.ParentID == nil || *view.ParentID != 3 {
		t.Errorf("Expected parent 3, got %v", view.ParentID)
	}
	if view.ListPosition != "todo" || view.Position != 4 {
		t.Errorf("Unexpected position fields: %+v", view)
	}
}

func TestRefsToViewsNeverNil(t *testing.T) {
	views := RefsToViews(nil)
	if views == nil {
		t.Fatal("Expected non-nil slice")
	}

	data, err := json.Marshal(views)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Expected empty JSON array, got %s", data)
	}
}

func TestDetailToView(t *testing.T) {
	detail := &models.TaskDetail{
		Task:  models.Task{ID: 1, ProjectID: 2, Title: "Root"},
		Depth: 1,
		Dependencies: []*models.TaskRef{
			{ID: 5, Title: "Dep", ListPosition: "todo", Position: 0},
		},
	}

	view := DetailToView(detail)
	if view.Depth != 1 {
		t.Errorf("Expected depth 1, got %d", view.Depth)
	}
	if len(view.Dependencies) != 1 || view.Dependencies[0].ID != 5 {
		t.Errorf("Unexpected dependencies: %v", view.Dependencies)
	}
	if view.Dependents == nil || view.Children == nil {
		t.Error("Expected non-nil ref slices")
	}
}

func TestHistoryToView(t *testing.T) {
	entry := &models.HistoryEntry{
		ID: "abc", EntityType: models.EntitySubtask,
		TaskID: 1, ProjectID: 2,
		Action:  models.ActionMoved,
		Details: map[string]any{"to_list": "done"},
		ActorID: "alice",
	}

	view := HistoryToView(entry)
	if view.Action != "moved" {
		t.Errorf("Expected action moved, got %q", view.Action)
	}
	if view.EntityType != models.EntitySubtask {
		t.Errorf("Expected subtask entity, got %q", view.EntityType)
	}
	if view.Details["to_list"] != "done" {
		t.Errorf("Unexpected details: %v", view.Details)
	}
}

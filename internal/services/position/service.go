// Package position owns per-bucket task ordering. A bucket is the set of
// tasks sharing one (project_id, list_position) pair; subtasks share the
// same ordering space as top-level tasks.
//
// Gaps between positions are permitted, duplicates are not. Every plan
// computed here assigns absolute positions, so applying the same plan
// twice yields the same layout.
package position

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/cadena/internal/database"
	"github.com/thenoetrevino/cadena/internal/models"
)

// Service defines ordering operations
type Service interface {
	// MoveTask moves one task to the slot at newPosition (an index into
	// the bucket's current order). An empty newListPosition keeps the task
	// in its current bucket. Out-of-range positions clamp to the end.
	// The history entry is appended in the same transaction as the
	// renumbering.
	MoveTask(ctx context.Context, taskID, newPosition int, newListPosition string, entry *models.HistoryEntry) error

	// ReorderBatch assigns positions 0..n-1 to the given ids, which must
	// cover the declared bucket exactly. All-or-nothing.
	ReorderBatch(ctx context.Context, projectID int, listPosition string, orderedIDs []int, entry *models.HistoryEntry) error

	// BoardView groups a project's tasks by list_position, each group
	// ascending by position. Empty list_position values group under the
	// reserved uncategorized key.
	BoardView(ctx context.Context, projectID int) (models.Board, error)
}

// service implements Service
type service struct {
	repo database.DataStore
}

// NewService creates a position service
func NewService(repo database.DataStore) Service {
	return &service{repo: repo}
}

// MoveTask renumbers only as needed: within one bucket it shifts the tasks
// strictly between the old and new slot by one; across buckets it closes
// the gap in the old bucket and opens one in the new.
func (s *service) MoveTask(ctx context.Context, taskID, newPosition int, newListPosition string, entry *models.HistoryEntry) error {
	if newPosition < 0 {
		return ErrInvalidPosition
	}

	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	target := newListPosition
	if target == "" {
		target = task.ListPosition
	}

	var updates []database.PositionUpdate
	if target == task.ListPosition {
		updates, err = s.planSameBucket(ctx, task, newPosition)
	} else {
		updates, err = s.planCrossBucket(ctx, task, newPosition, target)
	}
	if err != nil {
		return err
	}

	if entry != nil {
		entry.Details = map[string]any{
			"from_list":     task.ListPosition,
			"from_position": task.Position,
			"to_list":       target,
			"to_position":   movedPosition(updates, task.ID, task.Position),
		}
	}

	if err := s.repo.ApplyPositions(ctx, updates, entry); err != nil {
		return fmt.Errorf("failed to apply move: %w", err)
	}
	return nil
}

// planSameBucket shifts the tasks between the old and new slot by one and
// gives the moved task the position the target slot held.
func (s *service) planSameBucket(ctx context.Context, task *models.Task, newIdx int) ([]database.PositionUpdate, error) {
	bucket, err := s.repo.GetTasksByBucket(ctx, task.ProjectID, task.ListPosition)
	if err != nil {
		return nil, err
	}

	oldIdx := indexOf(bucket, task.ID)
	if oldIdx < 0 {
		return nil, database.ErrNotFound
	}
	if newIdx >= len(bucket) {
		newIdx = len(bucket) - 1
	}
	if newIdx == oldIdx {
		// Nothing to renumber; the audit entry still gets appended.
		return nil, nil
	}

	var updates []database.PositionUpdate
	targetPos := bucket[newIdx].Position
	if newIdx < oldIdx {
		// Moving up: slots [newIdx, oldIdx) shift down the list by one.
		for i := newIdx; i < oldIdx; i++ {
			updates = append(updates, database.PositionUpdate{
				TaskID:       bucket[i].ID,
				Position:     bucket[i].Position + 1,
				ListPosition: task.ListPosition,
			})
		}
	} else {
		// Moving down: slots (oldIdx, newIdx] shift up the list by one.
		for i := oldIdx + 1; i <= newIdx; i++ {
			updates = append(updates, database.PositionUpdate{
				TaskID:       bucket[i].ID,
				Position:     bucket[i].Position - 1,
				ListPosition: task.ListPosition,
			})
		}
	}
	updates = append(updates, database.PositionUpdate{
		TaskID:       task.ID,
		Position:     targetPos,
		ListPosition: task.ListPosition,
	})
	return updates, nil
}

// planCrossBucket closes the gap behind the task in its old bucket and
// inserts it into the target bucket at the requested slot.
func (s *service) planCrossBucket(ctx context.Context, task *models.Task, newIdx int, target string) ([]database.PositionUpdate, error) {
	oldBucket, err := s.repo.GetTasksByBucket(ctx, task.ProjectID, task.ListPosition)
	if err != nil {
		return nil, err
	}
	newBucket, err := s.repo.GetTasksByBucket(ctx, task.ProjectID, target)
	if err != nil {
		return nil, err
	}

	oldIdx := indexOf(oldBucket, task.ID)
	if oldIdx < 0 {
		return nil, database.ErrNotFound
	}

	var updates []database.PositionUpdate

	// Close the gap in the old bucket.
	for i := oldIdx + 1; i < len(oldBucket); i++ {
		updates = append(updates, database.PositionUpdate{
			TaskID:       oldBucket[i].ID,
			Position:     oldBucket[i].Position - 1,
			ListPosition: task.ListPosition,
		})
	}

	// Insert into the new bucket.
	if newIdx >= len(newBucket) {
		endPos := 0
		if len(newBucket) > 0 {
			endPos = newBucket[len(newBucket)-1].Position + 1
		}
		updates = append(updates, database.PositionUpdate{
			TaskID:       task.ID,
			Position:     endPos,
			ListPosition: target,
		})
		return updates, nil
	}

	targetPos := newBucket[newIdx].Position
	for i := newIdx; i < len(newBucket); i++ {
		updates = append(updates, database.PositionUpdate{
			TaskID:       newBucket[i].ID,
			Position:     newBucket[i].Position + 1,
			ListPosition: target,
		})
	}
	updates = append(updates, database.PositionUpdate{
		TaskID:       task.ID,
		Position:     targetPos,
		ListPosition: target,
	})
	return updates, nil
}

// ReorderBatch verifies the id list covers the bucket exactly, then
// assigns dense positions 0..n-1 in the given order.
func (s *service) ReorderBatch(ctx context.Context, projectID int, listPosition string, orderedIDs []int, entry *models.HistoryEntry) error {
	bucket, err := s.repo.GetTasksByBucket(ctx, projectID, listPosition)
	if err != nil {
		return err
	}

	if len(orderedIDs) != len(bucket) {
		return fmt.Errorf("%w: got %d ids, bucket %q has %d tasks",
			ErrInvalidScope, len(orderedIDs), listPosition, len(bucket))
	}

	members := make(map[int]bool, len(bucket))
	for _, t := range bucket {
		members[t.ID] = true
	}

	updates := make([]database.PositionUpdate, 0, len(orderedIDs))
	seen := make(map[int]bool, len(orderedIDs))
	for i, id := range orderedIDs {
		if !members[id] {
			return fmt.Errorf("%w: task %d is not in bucket %q", ErrInvalidScope, id, listPosition)
		}
		if seen[id] {
			return fmt.Errorf("%w: task %d listed twice", ErrInvalidScope, id)
		}
		seen[id] = true
		updates = append(updates, database.PositionUpdate{
			TaskID:       id,
			Position:     i,
			ListPosition: listPosition,
		})
	}

	if entry != nil {
		entry.Details = map[string]any{
			"list_position": listPosition,
			"order":         orderedIDs,
			"task_count":    len(orderedIDs),
		}
	}

	if err := s.repo.ApplyPositions(ctx, updates, entry); err != nil {
		return fmt.Errorf("failed to apply reorder: %w", err)
	}
	return nil
}

// BoardView groups all project tasks by workflow column.
func (s *service) BoardView(ctx context.Context, projectID int) (models.Board, error) {
	tasks, err := s.repo.GetTasksByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	board := make(models.Board)
	for _, t := range tasks {
		key := t.ListPosition
		if key == "" {
			key = models.UncategorizedBucket
		}
		board[key] = append(board[key], &models.TaskRef{
			ID:           t.ID,
			Title:        t.Title,
			ListPosition: t.ListPosition,
			Position:     t.Position,
		})
	}
	return board, nil
}

func indexOf(bucket []*models.Task, taskID int) int {
	for i, t := range bucket {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

func movedPosition(updates []database.PositionUpdate, taskID, fallback int) int {
	for _, u := range updates {
		if u.TaskID == taskID {
			return u.Position
		}
	}
	return fallback
}

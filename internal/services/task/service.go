// Package task is the composition root of the engine. Every public
// operation validates first, takes its scope locks, then persists the
// mutation and its audit entry in one transaction.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/thenoetrevino/cadena/internal/config"
	"github.com/thenoetrevino/cadena/internal/database"
	"github.com/thenoetrevino/cadena/internal/models"
	"github.com/thenoetrevino/cadena/internal/services/graph"
	"github.com/thenoetrevino/cadena/internal/services/hierarchy"
	"github.com/thenoetrevino/cadena/internal/services/history"
	"github.com/thenoetrevino/cadena/internal/services/position"
)

// Service defines all task-related business operations
type Service interface {
	// Read operations
	GetTask(ctx context.Context, taskID int) (*models.TaskDetail, error)
	BoardView(ctx context.Context, projectID int) (models.Board, error)
	Tree(ctx context.Context, projectID int) ([]*models.TreeNode, error)
	Dependencies(ctx context.Context, taskID int) ([]*models.TaskRef, error)
	DependentTasks(ctx context.Context, taskID int) ([]*models.TaskRef, error)
	ListHistoryForTask(ctx context.Context, taskID int) ([]*models.HistoryEntry, error)
	ListHistoryForProject(ctx context.Context, projectID int) ([]*models.HistoryEntry, error)

	// Write operations
	CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) error
	Reparent(ctx context.Context, taskID int, newParentID *int, actorID string) error
	SetDependencies(ctx context.Context, taskID int, dependencyIDs []int, actorID string) error
	MoveTask(ctx context.Context, taskID, newPosition int, newListPosition, actorID string) error
	ReorderBatch(ctx context.Context, projectID int, listPosition string, orderedIDs []int, actorID string) error
	DeleteTask(ctx context.Context, taskID int, actorID string) error
}

// CreateTaskRequest encapsulates all data needed to create a task
type CreateTaskRequest struct {
	ProjectID    int
	ParentID     *int // nil means top-level
	Title        string
	Description  string
	ListPosition string // empty means the configured initial column
	ActorID      string
}

// UpdateTaskRequest encapsulates all data needed to update a task
// Fields with pointers are optional - nil means don't update
type UpdateTaskRequest struct {
	TaskID      int
	Title       *string
	Description *string
	ActorID     string
}

// service implements Service
type service struct {
	repo          database.DataStore
	hierarchy     hierarchy.Service
	graph         graph.Service
	position      position.Service
	recorder      history.Service
	locks         *lockTable
	initialColumn string
}

// NewService creates the task service and wires the validators it
// orchestrates.
func NewService(repo database.DataStore, cfg *config.Config) Service {
	return &service{
		repo:          repo,
		hierarchy:     hierarchy.NewService(repo, cfg.MaxDepth),
		graph:         graph.NewService(repo),
		position:      position.NewService(repo),
		recorder:      history.NewService(repo),
		locks:         newLockTable(cfg.LockTimeout()),
		initialColumn: cfg.InitialColumn,
	}
}

// ============================================================================
// Write operations
// ============================================================================

// CreateTask validates depth if a parent is given, assigns an
// end-of-bucket position, persists, and records history. All validation
// failures surface before any write.
func (s *service) CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if req.ProjectID <= 0 {
		return nil, ErrInvalidProjectID
	}

	listPosition := req.ListPosition
	if listPosition == "" {
		listPosition = s.initialColumn
	}

	release, err := s.locks.acquire(ctx,
		projectKey(req.ProjectID), bucketKey(req.ProjectID, listPosition))
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.repo.GetProjectByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, storageErr("load project", err)
	}

	var parent *models.Task
	if req.ParentID != nil {
		parent, err = s.repo.GetTask(ctx, *req.ParentID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: parent %d does not exist",
				hierarchy.ErrInvalidParent, *req.ParentID)
		}
		if err != nil {
			return nil, storageErr("load parent", err)
		}
		if parent.ProjectID != req.ProjectID {
			return nil, fmt.Errorf("%w: parent %d belongs to a different project",
				hierarchy.ErrInvalidParent, parent.ID)
		}
		if err := s.hierarchy.ValidateCreateUnder(ctx, parent); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		ProjectID:    req.ProjectID,
		ParentID:     req.ParentID,
		Title:        req.Title,
		Description:  req.Description,
		ListPosition: listPosition,
	}

	entry := s.recorder.NewEntry(task, models.ActionCreated, req.ActorID, map[string]any{
		"title":         req.Title,
		"list_position": listPosition,
		"parent_id":     req.ParentID,
	})

	created, err := s.repo.CreateTask(ctx, task, entry)
	if err != nil {
		return nil, storageErr("create task", err)
	}
	return created, nil
}

// UpdateTask updates a task's title and/or description.
func (s *service) UpdateTask(ctx context.Context, req UpdateTaskRequest) error {
	if req.TaskID <= 0 {
		return ErrInvalidTaskID
	}
	if req.Title == nil && req.Description == nil {
		return nil
	}
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return err
		}
	}

	task, release, err := s.lockedTask(ctx, req.TaskID)
	if err != nil {
		return err
	}
	defer release()

	title := task.Title
	description := task.Description
	details := map[string]any{}
	if req.Title != nil && *req.Title != title {
		details["title"] = map[string]any{"before": title, "after": *req.Title}
		title = *req.Title
	}
	if req.Description != nil && *req.Description != description {
		details["description"] = map[string]any{"before": description, "after": *req.Description}
		description = *req.Description
	}
	if len(details) == 0 {
		return nil
	}

	entry := s.recorder.NewEntry(task, models.ActionUpdated, req.ActorID, details)
	if err := s.repo.UpdateTaskContent(ctx, task.ID, title, description, entry); err != nil {
		return storageErr("update task", err)
	}
	return nil
}

// Reparent moves a task under a new parent (nil promotes it to top level).
func (s *service) Reparent(ctx context.Context, taskID int, newParentID *int, actorID string) error {
	if taskID <= 0 {
		return ErrInvalidTaskID
	}

	task, release, err := s.lockedTask(ctx, taskID)
	if err != nil {
		return err
	}
	defer release()

	var newParent *models.Task
	if newParentID != nil {
		newParent, err = s.repo.GetTask(ctx, *newParentID)
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: parent %d does not exist",
				hierarchy.ErrInvalidParent, *newParentID)
		}
		if err != nil {
			return storageErr("load parent", err)
		}
	}

	if err := s.hierarchy.ValidateReparent(ctx, task, newParent); err != nil {
		return err
	}

	entry := s.recorder.NewEntry(task, models.ActionReparented, actorID, map[string]any{
		"from_parent": task.ParentID,
		"to_parent":   newParentID,
	})
	if err := s.repo.UpdateTaskParent(ctx, task.ID, newParentID, entry); err != nil {
		return storageErr("reparent task", err)
	}
	return nil
}

// SetDependencies replaces the task's dependency edge set after validating
// the full proposed set for cycles. On failure nothing is written.
func (s *service) SetDependencies(ctx context.Context, taskID int, dependencyIDs []int, actorID string) error {
	if taskID <= 0 {
		return ErrInvalidTaskID
	}

	task, release, err := s.lockedTask(ctx, taskID)
	if err != nil {
		return err
	}
	defer release()

	deps := dedupeInts(dependencyIDs)

	// Every referenced task must exist in the same project.
	if len(deps) > 0 {
		found, err := s.repo.GetTasksByIDs(ctx, deps)
		if err != nil {
			return storageErr("load dependencies", err)
		}
		if len(found) != len(deps) {
			return fmt.Errorf("%w: dependency does not exist", ErrTaskNotFound)
		}
		for _, dep := range found {
			if dep.ProjectID != task.ProjectID {
				return fmt.Errorf("%w: dependency %d belongs to a different project",
					ErrTaskNotFound, dep.ID)
			}
		}
	}

	if err := s.graph.ValidateSet(ctx, task, deps); err != nil {
		return err
	}

	before, err := s.repo.GetDependencyIDs(ctx, task.ID)
	if err != nil {
		return storageErr("load current dependencies", err)
	}

	entry := s.recorder.NewEntry(task, models.ActionDependencyChanged, actorID, map[string]any{
		"before": before,
		"after":  deps,
	})
	if err := s.repo.ReplaceDependencies(ctx, task.ID, deps, entry); err != nil {
		return storageErr("replace dependencies", err)
	}
	return nil
}

// MoveTask changes a single task's position and/or workflow column.
func (s *service) MoveTask(ctx context.Context, taskID, newPosition int, newListPosition, actorID string) error {
	if taskID <= 0 {
		return ErrInvalidTaskID
	}

	// The task's current bucket determines which locks to take, and the
	// bucket can change between the read and the acquisition. Re-check
	// under the lock and retry on movement.
	for attempt := 0; attempt < 3; attempt++ {
		task, err := s.getTask(ctx, taskID)
		if err != nil {
			return err
		}

		keys := []string{bucketKey(task.ProjectID, task.ListPosition)}
		if newListPosition != "" {
			keys = append(keys, bucketKey(task.ProjectID, newListPosition))
		}
		release, err := s.locks.acquire(ctx, keys...)
		if err != nil {
			return err
		}

		current, err := s.getTask(ctx, taskID)
		if err != nil {
			release()
			return err
		}
		if current.ListPosition != task.ListPosition {
			release()
			continue
		}

		entry := s.recorder.NewEntry(current, models.ActionMoved, actorID, nil)
		err = s.position.MoveTask(ctx, taskID, newPosition, newListPosition, entry)
		release()
		if err != nil && !isDomainErr(err) {
			return storageErr("move task", err)
		}
		return err
	}
	return fmt.Errorf("%w (task %d moved concurrently)", ErrBusy, taskID)
}

// ReorderBatch assigns positions 0..n-1 to one bucket's tasks in the given
// order. All-or-nothing; one history entry summarizes the batch.
func (s *service) ReorderBatch(ctx context.Context, projectID int, listPosition string, orderedIDs []int, actorID string) error {
	if projectID <= 0 {
		return ErrInvalidProjectID
	}
	if listPosition == "" {
		return fmt.Errorf("%w: empty list position", position.ErrInvalidScope)
	}

	release, err := s.locks.acquire(ctx, bucketKey(projectID, listPosition))
	if err != nil {
		return err
	}
	defer release()

	entry := s.recorder.NewProjectEntry(projectID, models.ActionReordered, actorID, nil)
	if err := s.position.ReorderBatch(ctx, projectID, listPosition, orderedIDs, entry); err != nil {
		if isDomainErr(err) {
			return err
		}
		return storageErr("reorder batch", err)
	}
	return nil
}

// DeleteTask removes a task and all of its descendants, deepest first, and
// strips the deleted ids from every remaining dependency set. One history
// entry is recorded for the root plus one per cascaded descendant.
func (s *service) DeleteTask(ctx context.Context, taskID int, actorID string) error {
	if taskID <= 0 {
		return ErrInvalidTaskID
	}

	task, release, err := s.lockedTask(ctx, taskID)
	if err != nil {
		return err
	}
	defer release()

	subtree, err := s.hierarchy.Subtree(ctx, task)
	if err != nil {
		if isDomainErr(err) {
			return err
		}
		return storageErr("collect subtree", err)
	}

	ids := make([]int, len(subtree))
	entries := make([]*models.HistoryEntry, len(subtree))
	for i, t := range subtree {
		ids[i] = t.ID
		entries[i] = s.recorder.NewEntry(t, models.ActionDeleted, actorID, map[string]any{
			"title":   t.Title,
			"cascade": t.ID != task.ID,
		})
	}

	if err := s.repo.DeleteTasks(ctx, ids, entries); err != nil {
		return storageErr("delete tasks", err)
	}
	return nil
}

// ============================================================================
// Read operations
// ============================================================================

// GetTask retrieves full task details including dependency views
func (s *service) GetTask(ctx context.Context, taskID int) (*models.TaskDetail, error) {
	if taskID <= 0 {
		return nil, ErrInvalidTaskID
	}

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	depth, err := s.hierarchy.Depth(ctx, task)
	if err != nil {
		return nil, err
	}
	deps, err := s.graph.Dependencies(ctx, taskID)
	if err != nil {
		return nil, storageErr("load dependencies", err)
	}
	dependents, err := s.graph.DependentTasks(ctx, taskID)
	if err != nil {
		return nil, storageErr("load dependents", err)
	}
	children, err := s.repo.GetChildren(ctx, taskID)
	if err != nil {
		return nil, storageErr("load children", err)
	}

	return &models.TaskDetail{
		Task:         *task,
		Depth:        depth,
		Dependencies: deps,
		Dependents:   dependents,
		Children:     taskRefs(children),
	}, nil
}

// BoardView groups a project's tasks by workflow column
func (s *service) BoardView(ctx context.Context, projectID int) (models.Board, error) {
	board, err := s.position.BoardView(ctx, projectID)
	if err != nil {
		return nil, storageErr("board view", err)
	}
	return board, nil
}

// Tree returns the project's parent/child task tree
func (s *service) Tree(ctx context.Context, projectID int) ([]*models.TreeNode, error) {
	tasks, err := s.repo.GetTasksByProject(ctx, projectID)
	if err != nil {
		return nil, storageErr("load project tasks", err)
	}

	nodes := make(map[int]*models.TreeNode, len(tasks))
	for _, t := range tasks {
		nodes[t.ID] = &models.TreeNode{Task: &models.TaskRef{
			ID:           t.ID,
			Title:        t.Title,
			ListPosition: t.ListPosition,
			Position:     t.Position,
		}}
	}

	var roots []*models.TreeNode
	for _, t := range tasks {
		node := nodes[t.ID]
		if t.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*t.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			// Orphaned parent reference; keep the task visible.
			roots = append(roots, node)
		}
	}
	return roots, nil
}

// Dependencies returns the tasks the given task depends on
func (s *service) Dependencies(ctx context.Context, taskID int) ([]*models.TaskRef, error) {
	if _, err := s.getTask(ctx, taskID); err != nil {
		return nil, err
	}
	refs, err := s.graph.Dependencies(ctx, taskID)
	if err != nil {
		return nil, storageErr("load dependencies", err)
	}
	return refs, nil
}

// DependentTasks returns the tasks that depend on the given task
func (s *service) DependentTasks(ctx context.Context, taskID int) ([]*models.TaskRef, error) {
	if _, err := s.getTask(ctx, taskID); err != nil {
		return nil, err
	}
	refs, err := s.graph.DependentTasks(ctx, taskID)
	if err != nil {
		return nil, storageErr("load dependents", err)
	}
	return refs, nil
}

// ListHistoryForTask returns the task's audit trail, newest first
func (s *service) ListHistoryForTask(ctx context.Context, taskID int) ([]*models.HistoryEntry, error) {
	entries, err := s.recorder.ListForTask(ctx, taskID)
	if err != nil {
		return nil, storageErr("list task history", err)
	}
	return entries, nil
}

// ListHistoryForProject returns the project's audit trail, newest first
func (s *service) ListHistoryForProject(ctx context.Context, projectID int) ([]*models.HistoryEntry, error) {
	entries, err := s.recorder.ListForProject(ctx, projectID)
	if err != nil {
		return nil, storageErr("list project history", err)
	}
	return entries, nil
}

// ============================================================================
// Helpers
// ============================================================================

// lockedTask fetches the task, acquires its project lock, and re-fetches
// under the lock so validation always sees current state.
func (s *service) lockedTask(ctx context.Context, taskID int) (*models.Task, func(), error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	release, err := s.locks.acquire(ctx, projectKey(task.ProjectID))
	if err != nil {
		return nil, nil, err
	}

	task, err = s.getTask(ctx, taskID)
	if err != nil {
		release()
		return nil, nil, err
	}
	return task, release, nil
}

func (s *service) getTask(ctx context.Context, taskID int) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w (id %d)", ErrTaskNotFound, taskID)
	}
	if err != nil {
		return nil, storageErr("load task", err)
	}
	return task, nil
}

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > models.MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func dedupeInts(ids []int) []int {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	out := sorted[:0]
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}

func taskRefs(tasks []*models.Task) []*models.TaskRef {
	refs := make([]*models.TaskRef, 0, len(tasks))
	for _, t := range tasks {
		refs = append(refs, &models.TaskRef{
			ID:           t.ID,
			Title:        t.Title,
			ListPosition: t.ListPosition,
			Position:     t.Position,
		})
	}
	return refs
}

// isDomainErr reports whether err is a validation outcome the caller
// should see as-is rather than a wrapped storage failure.
func isDomainErr(err error) bool {
	return errors.Is(err, hierarchy.ErrDepthExceeded) ||
		errors.Is(err, hierarchy.ErrInvalidParent) ||
		errors.Is(err, hierarchy.ErrCorruptHierarchy) ||
		errors.Is(err, graph.ErrCircularDependency) ||
		errors.Is(err, position.ErrInvalidScope) ||
		errors.Is(err, position.ErrInvalidPosition) ||
		errors.Is(err, database.ErrNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrBusy)
}

func storageErr(op string, err error) error {
	if isDomainErr(err) {
		return err
	}
	slog.Error("storage operation failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

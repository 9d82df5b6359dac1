package task

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/thenoetrevino/cadena/internal/config"
	"github.com/thenoetrevino/cadena/internal/database"
	"github.com/thenoetrevino/cadena/internal/models"
	"github.com/thenoetrevino/cadena/internal/services/graph"
	"github.com/thenoetrevino/cadena/internal/services/hierarchy"
	"github.com/thenoetrevino/cadena/internal/testutil"
)

func newTestService(t *testing.T) (Service, *database.Repository, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repo := database.NewRepository(db)
	return NewService(repo, config.Default()), repo, db
}

func mustCreate(t *testing.T, svc Service, projectID int, parentID int, title string) *models.Task {
	t.Helper()
	req := CreateTaskRequest{ProjectID: projectID, Title: title, ActorID: "tester"}
	if parentID > 0 {
		req.ParentID = &parentID
	}
	task, err := svc.CreateTask(context.Background(), req)
	if err != nil {
		t.Fatalf("Failed to create task %q: %v", title, err)
	}
	return task
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")

	_, err := svc.CreateTask(ctx, CreateTaskRequest{ProjectID: projectID, Title: ""})
	if !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Expected ErrEmptyTitle, got %v", err)
	}

	_, err = svc.CreateTask(ctx, CreateTaskRequest{
		ProjectID: projectID, Title: strings.Repeat("x", models.MaxTitleLength+1),
	})
	if !errors.Is(err, ErrTitleTooLong) {
		t.Errorf("Expected ErrTitleTooLong, got %v", err)
	}

	_, err = svc.CreateTask(ctx, CreateTaskRequest{ProjectID: 0, Title: "Task"})
	if !errors.Is(err, ErrInvalidProjectID) {
		t.Errorf("Expected ErrInvalidProjectID, got %v", err)
	}

	_, err = svc.CreateTask(ctx, CreateTaskRequest{ProjectID: 999, Title: "Task"})
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound, got %v", err)
	}

	missing := 999
	_, err = svc.CreateTask(ctx, CreateTaskRequest{
		ProjectID: projectID, Title: "Task", ParentID: &missing,
	})
	if !errors.Is(err, hierarchy.ErrInvalidParent) {
		t.Errorf("Expected ErrInvalidParent for missing parent, got %v", err)
	}
}

func TestCreateTaskDefaultsToInitialColumn(t *testing.T) {
	svc, _, db := newTestService(t)

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	task := mustCreate(t, svc, projectID, 0, "Task")

	if task.ListPosition != config.Default().InitialColumn {
		t.Errorf("Expected initial column %q, got %q",
			config.Default().InitialColumn, task.ListPosition)
	}
	if task.Position != 0 {
		t.Errorf("Expected position 0, got %d", task.Position)
	}
}

func TestCreateTaskRejectsCrossProjectParent(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	projectA := testutil.CreateTestProject(t, db, "Project A")
	projectB := testutil.CreateTestProject(t, db, "Project B")
	parent := mustCreate(t, svc, projectA, 0, "Parent")

	_, err := svc.CreateTask(ctx, CreateTaskRequest{
		ProjectID: projectB, Title: "Child", ParentID: &parent.ID,
	})
	if !errors.Is(err, hierarchy.ErrInvalidParent) {
		t.Errorf("Expected ErrInvalidParent, got %v", err)
	}
}

func TestCreateTaskDepthLimitLeavesNothingBehind(t *testing.T) {
	svc, repo, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	root := mustCreate(t, svc, projectID, 0, "Root")
	child := mustCreate(t, svc, projectID, root.ID, "Child")
	grandchild := mustCreate(t, svc, projectID, child.ID, "Grandchild")

	// Depth limit is 3: the grandchild sits at depth 2, one more level
	// would reach it.
	_, err := svc.CreateTask(ctx, CreateTaskRequest{
		ProjectID: projectID, Title: "Too deep", ParentID: &grandchild.ID, ActorID: "tester",
	})
	if !errors.Is(err, hierarchy.ErrDepthExceeded) {
		t.Fatalf("Expected ErrDepthExceeded, got %v", err)
	}

	// The rejected task left no row and no audit entry.
	tasks, err := repo.GetTasksByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("Failed to list tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Errorf("Expected 3 tasks, got %d", len(tasks))
	}
	entries, err := svc.ListHistoryForProject(ctx, projectID)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 history entries, got %d", len(entries))
	}
}

func TestUpdateTask(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	task := mustCreate(t, svc, projectID, 0, "Original")

	newTitle := "Renamed"
	err := svc.UpdateTask(ctx, UpdateTaskRequest{
		TaskID: task.ID, Title: &newTitle, ActorID: "tester",
	})
	if err != nil {
		t.Fatalf("Failed to update task: %v", err)
	}

	detail, err := svc.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if detail.Title != "Renamed" {
		t.Errorf("Expected renamed title, got %q", detail.Title)
	}

	entries, err := svc.ListHistoryForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries (create + update), got %d", len(entries))
	}
	if entries[0].Action != models.ActionUpdated {
		t.Errorf("Expected updated action, got %s", entries[0].Action)
	}
}

func TestUpdateTaskNoopWritesNothing(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	task := mustCreate(t, svc, projectID, 0, "Task")

	// No fields at all.
	if err := svc.UpdateTask(ctx, UpdateTaskRequest{TaskID: task.ID}); err != nil {
		t.Fatalf("Expected no-op update to pass, got %v", err)
	}
	// Same values as stored.
	sameTitle := "Task"
	if err := svc.UpdateTask(ctx, UpdateTaskRequest{TaskID: task.ID, Title: &sameTitle}); err != nil {
		t.Fatalf("Expected same-value update to pass, got %v", err)
	}

	entries, err := svc.ListHistoryForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the creation entry, got %d", len(entries))
	}
}

func TestSetDependenciesRejectsCycleAtomically(t *testing.T) {
	svc, repo, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	x := mustCreate(t, svc, projectID, 0, "X")
	y := mustCreate(t, svc, projectID, 0, "Y")

	if err := svc.SetDependencies(ctx, x.ID, []int{y.ID}, "tester"); err != nil {
		t.Fatalf("Failed to set dependencies: %v", err)
	}

	// Y -> X would close X -> Y -> X.
	err := svc.SetDependencies(ctx, y.ID, []int{x.ID}, "tester")
	if !errors.Is(err, graph.ErrCircularDependency) {
		t.Fatalf("Expected ErrCircularDependency, got %v", err)
	}

	// The rejected set left the stored edges untouched.
	ids, err := repo.GetDependencyIDs(ctx, y.ID)
	if err != nil {
		t.Fatalf("Failed to get dependency ids: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no edges for Y, got %v", ids)
	}
	ids, err = repo.GetDependencyIDs(ctx, x.ID)
	if err != nil {
		t.Fatalf("Failed to get dependency ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != y.ID {
		t.Errorf("Expected X to still depend on Y, got %v", ids)
	}
}

func TestSetDependenciesRejectsCrossProject(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	projectA := testutil.CreateTestProject(t, db, "Project A")
	projectB := testutil.CreateTestProject(t, db, "Project B")
	a := mustCreate(t, svc, projectA, 0, "A")
	b := mustCreate(t, svc, projectB, 0, "B")

	err := svc.SetDependencies(ctx, a.ID, []int{b.ID}, "tester")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound for cross-project dependency, got %v", err)
	}
}

func TestSetDependenciesRecordsBeforeAndAfter(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	a := mustCreate(t, svc, projectID, 0, "A")
	b := mustCreate(t, svc, projectID, 0, "B")
	c := mustCreate(t, svc, projectID, 0, "C")

	if err := svc.SetDependencies(ctx, a.ID, []int{b.ID}, "tester"); err != nil {
		t.Fatalf("Failed to set dependencies: %v", err)
	}
	if err := svc.SetDependencies(ctx, a.ID, []int{b.ID, c.ID}, "tester"); err != nil {
		t.Fatalf("Failed to set dependencies: %v", err)
	}

	entries, err := svc.ListHistoryForTask(ctx, a.ID)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	// create + two dependency changes, newest first.
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	latest := entries[0]
	if latest.Action != models.ActionDependencyChanged {
		t.Fatalf("Expected dependency_changed action, got %s", latest.Action)
	}
	if latest.Details["before"] == nil || latest.Details["after"] == nil {
		t.Errorf("Expected before/after in details, got %v", latest.Details)
	}
}

func TestSetDependenciesDeduplicates(t *testing.T) {
	svc, repo, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	a := mustCreate(t, svc, projectID, 0, "A")
	b := mustCreate(t, svc, projectID, 0, "B")

	if err := svc.SetDependencies(ctx, a.ID, []int{b.ID, b.ID}, "tester"); err != nil {
		t.Fatalf("Failed to set dependencies: %v", err)
	}

	ids, err := repo.GetDependencyIDs(ctx, a.ID)
	if err != nil {
		t.Fatalf("Failed to get dependency ids: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("Expected deduplicated edge set, got %v", ids)
	}
}

func TestReparent(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	root := mustCreate(t, svc, projectID, 0, "Root")
	task := mustCreate(t, svc, projectID, 0, "Task")

	if err := svc.Reparent(ctx, task.ID, &root.ID, "tester"); err != nil {
		t.Fatalf("Failed to reparent: %v", err)
	}

	detail, err := svc.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if detail.ParentID == nil || *detail.ParentID != root.ID {
		t.Errorf("Expected parent %d, got %v", root.ID, detail.ParentID)
	}
	if detail.Depth != 1 {
		t.Errorf("Expected depth 1, got %d", detail.Depth)
	}

	// Promote back to top level.
	if err := svc.Reparent(ctx, task.ID, nil, "tester"); err != nil {
		t.Fatalf("Failed to promote: %v", err)
	}
	detail, err = svc.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if detail.ParentID != nil {
		t.Errorf("Expected top-level task, got parent %v", detail.ParentID)
	}

	entries, err := svc.ListHistoryForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected create + 2 reparent entries, got %d", len(entries))
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	svc, repo, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	root := mustCreate(t, svc, projectID, 0, "Root")
	child := mustCreate(t, svc, projectID, root.ID, "Child")
	grandchild := mustCreate(t, svc, projectID, child.ID, "Grandchild")
	survivor := mustCreate(t, svc, projectID, 0, "Survivor")

	// Survivor depends on a task inside the doomed subtree.
	if err := svc.SetDependencies(ctx, survivor.ID, []int{child.ID}, "tester"); err != nil {
		t.Fatalf("Failed to set dependencies: %v", err)
	}

	if err := svc.DeleteTask(ctx, root.ID, "tester"); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}

	for _, id := range []int{root.ID, child.ID, grandchild.ID} {
		if _, err := svc.GetTask(ctx, id); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("Expected task %d gone, got %v", id, err)
		}
	}

	// The survivor's dangling edge was stripped.
	ids, err := repo.GetDependencyIDs(ctx, survivor.ID)
	if err != nil {
		t.Fatalf("Failed to get dependency ids: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected stripped dependencies, got %v", ids)
	}

	// One delete entry per removed task, cascade flagged on descendants.
	entries, err := svc.ListHistoryForProject(ctx, projectID)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	deletes := 0
	cascades := 0
	for _, e := range entries {
		if e.Action != models.ActionDeleted {
			continue
		}
		deletes++
		if e.Details["cascade"] == true {
			cascades++
		}
	}
	if deletes != 3 {
		t.Errorf("Expected 3 delete entries, got %d", deletes)
	}
	if cascades != 2 {
		t.Errorf("Expected 2 cascade entries, got %d", cascades)
	}
}

func TestMoveTaskShiftsBucket(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	p := mustCreate(t, svc, projectID, 0, "P")
	q := mustCreate(t, svc, projectID, 0, "Q")
	r := mustCreate(t, svc, projectID, 0, "R")

	if err := svc.MoveTask(ctx, r.ID, 0, "", "tester"); err != nil {
		t.Fatalf("Failed to move task: %v", err)
	}

	board, err := svc.BoardView(ctx, projectID)
	if err != nil {
		t.Fatalf("Failed to build board: %v", err)
	}
	column := board[config.Default().InitialColumn]
	if len(column) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(column))
	}
	want := []int{r.ID, p.ID, q.ID}
	for i, ref := range column {
		if ref.ID != want[i] {
			t.Errorf("Expected order %v, got task %d at slot %d", want, ref.ID, i)
		}
	}
}

func TestConcurrentMovesKeepPositionsUnique(t *testing.T) {
	svc, repo, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	var ids []int
	for _, title := range []string{"A", "B", "C", "D"} {
		ids = append(ids, mustCreate(t, svc, projectID, 0, title).ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs <- svc.MoveTask(ctx, ids[3], 0, "", "alice")
	}()
	go func() {
		defer wg.Done()
		errs <- svc.MoveTask(ctx, ids[0], 3, "", "bob")
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Concurrent move failed: %v", err)
		}
	}

	bucket, err := repo.GetTasksByBucket(ctx, projectID, config.Default().InitialColumn)
	if err != nil {
		t.Fatalf("Failed to get bucket: %v", err)
	}
	if len(bucket) != 4 {
		t.Fatalf("Expected 4 tasks, got %d", len(bucket))
	}
	seen := make(map[int]int)
	for _, task := range bucket {
		if prev, ok := seen[task.Position]; ok {
			t.Errorf("Tasks %d and %d share position %d", prev, task.ID, task.Position)
		}
		seen[task.Position] = task.ID
	}
}

func TestReorderBatchRecordsProjectEntry(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	a := mustCreate(t, svc, projectID, 0, "A")
	b := mustCreate(t, svc, projectID, 0, "B")

	column := config.Default().InitialColumn
	if err := svc.ReorderBatch(ctx, projectID, column, []int{b.ID, a.ID}, "tester"); err != nil {
		t.Fatalf("Failed to reorder: %v", err)
	}

	entries, err := svc.ListHistoryForProject(ctx, projectID)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	var reorder *models.HistoryEntry
	for _, e := range entries {
		if e.Action == models.ActionReordered {
			reorder = e
			break
		}
	}
	if reorder == nil {
		t.Fatal("Expected a reorder entry")
	}
	if reorder.TaskID != 0 {
		t.Errorf("Expected project-scoped entry, got task id %d", reorder.TaskID)
	}
	if reorder.Details["task_count"] != float64(2) {
		t.Errorf("Expected task_count 2, got %v", reorder.Details["task_count"])
	}
}

func TestGetTaskDetail(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	root := mustCreate(t, svc, projectID, 0, "Root")
	child := mustCreate(t, svc, projectID, root.ID, "Child")
	dep := mustCreate(t, svc, projectID, 0, "Dep")
	dependent := mustCreate(t, svc, projectID, 0, "Dependent")

	if err := svc.SetDependencies(ctx, root.ID, []int{dep.ID}, "tester"); err != nil {
		t.Fatalf("Failed to set dependencies: %v", err)
	}
	if err := svc.SetDependencies(ctx, dependent.ID, []int{root.ID}, "tester"); err != nil {
		t.Fatalf("Failed to set dependencies: %v", err)
	}

	detail, err := svc.GetTask(ctx, root.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if detail.Depth != 0 {
		t.Errorf("Expected depth 0, got %d", detail.Depth)
	}
	if len(detail.Dependencies) != 1 || detail.Dependencies[0].ID != dep.ID {
		t.Errorf("Unexpected dependencies: %v", detail.Dependencies)
	}
	if len(detail.Dependents) != 1 || detail.Dependents[0].ID != dependent.ID {
		t.Errorf("Unexpected dependents: %v", detail.Dependents)
	}
	if len(detail.Children) != 1 || detail.Children[0].ID != child.ID {
		t.Errorf("Unexpected children: %v", detail.Children)
	}
}

func TestTreeBuildsHierarchy(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	root := mustCreate(t, svc, projectID, 0, "Root")
	child := mustCreate(t, svc, projectID, root.ID, "Child")
	other := mustCreate(t, svc, projectID, 0, "Other")

	roots, err := svc.Tree(ctx, projectID)
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("Expected 2 roots, got %d", len(roots))
	}

	byID := make(map[int]*models.TreeNode)
	for _, node := range roots {
		byID[node.Task.ID] = node
	}
	rootNode, ok := byID[root.ID]
	if !ok {
		t.Fatal("Expected root in tree")
	}
	if len(rootNode.Children) != 1 || rootNode.Children[0].Task.ID != child.ID {
		t.Errorf("Expected child under root, got %v", rootNode.Children)
	}
	if _, ok := byID[other.ID]; !ok {
		t.Error("Expected second top-level task in tree")
	}
}

func TestReadsRejectMissingTask(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetTask(ctx, 999); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound from GetTask, got %v", err)
	}
	if _, err := svc.Dependencies(ctx, 999); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound from Dependencies, got %v", err)
	}
	if _, err := svc.DependentTasks(ctx, 999); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound from DependentTasks, got %v", err)
	}
	if err := svc.DeleteTask(ctx, 999, "tester"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound from DeleteTask, got %v", err)
	}
}

package hierarchy

import (
	"context"
	"errors"
	"testing"

	"github.com/thenoetrevino/cadena/internal/database"
	"github.com/thenoetrevino/cadena/internal/testutil"
)

const testMaxDepth = 3

func TestDepth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := database.NewRepository(db)
	svc := NewService(repo, testMaxDepth)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	root := testutil.CreateTestTask(t, db, projectID, 0, "Root", "todo", 0)
	child := testutil.CreateTestTask(t, db, projectID, root, "Child", "todo", 1)
	grandchild := testutil.CreateTestTask(t, db, projectID, child, "Grandchild", "todo", 2)

	for _, tc := range []struct {
		name   string
		taskID int
		want   int
	}{
		{"root", root, 0},
		{"child", child, 1},
		{"grandchild", grandchild, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			task, err := repo.GetTask(ctx, tc.taskID)
			if err != nil {
				t.Fatalf("Failed to get task: %v", err)
			}
			depth, err := svc.Depth(ctx, task)
			if err != nil {
				t.Fatalf("Failed to compute depth: %v", err)
			}
			if depth != tc.want {
				t.Errorf("Expected depth %d, got %d", tc.want, depth)
			}
		})
	}
}

func TestSubtreeHeight(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := database.NewRepository(db)
	svc := NewService(repo, testMaxDepth)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	root := testutil.CreateTestTask(t, db, projectID, 0, "Root", "todo", 0)
	child := testutil.CreateTestTask(t, db, projectID, root, "Child", "todo", 1)
	testutil.CreateTestTask(t, db, projectID, child, "Grandchild", "todo", 2)
	leaf := testutil.CreateTestTask(t, db, projectID, 0, "Leaf", "todo", 3)

	rootTask, err := repo.GetTask(ctx, root)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	height, err := svc.SubtreeHeight(ctx, rootTask)
	if err != nil {
		t.Fatalf("Failed to compute height: %v", err)
	}
	if height != 2 {
		t.Errorf("Expected height 2, got %d", height)
	}

	leafTask, err := repo.GetTask(ctx, leaf)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	height, err = svc.SubtreeHeight(ctx, leafTask)
	if err != nil {
		t.Fatalf("Failed to compute height: %v", err)
	}
	if height != 0 {
		t.Errorf("Expected leaf height 0, got %d", height)
	}
}

func TestValidateCreateUnderDepthLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := database.NewRepository(db)
	svc := NewService(repo, testMaxDepth)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	root := testutil.CreateTestTask(t, db, projectID, 0, "Root", "todo", 0)
	child := testutil.CreateTestTask(t, db, projectID, root, "Child", "todo", 1)
	grandchild := testutil.CreateTestTask(t, db, projectID, child, "Grandchild", "todo", 2)

	// Creating under a depth-1 parent yields depth 2, still under limit 3.
	childTask, _ := repo.GetTask(ctx, child)
	if err := svc.ValidateCreateUnder(ctx, childTask); err != nil {
		t.Errorf("Expected creation at depth 2 to pass, got %v", err)
	}

	// Creating under a depth-2 parent would yield depth 3, at the limit.
	grandchildTask, _ := repo.GetTask(ctx, grandchild)
	err := svc.ValidateCreateUnder(ctx, grandchildTask)
	if !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("Expected ErrDepthExceeded, got %v", err)
	}

	// Top-level creation always passes.
	if err := svc.ValidateCreateUnder(ctx, nil); err != nil {
		t.Errorf("Expected top-level creation to pass, got %v", err)
	}
}

func TestValidateReparentRejectsSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := database.NewRepository(db)
	svc := NewService(repo, testMaxDepth)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	id := testutil.CreateTestTask(t, db, projectID, 0, "Task", "todo", 0)
	task, _ := repo.GetTask(ctx, id)

	err := svc.ValidateReparent(ctx, task, task)
	if !errors.Is(err, ErrInvalidParent) {
		t.Errorf("Expected ErrInvalidParent, got %v", err)
	}
}

func TestValidateReparentRejectsOwnDescendant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := database.NewRepository(db)
	svc := NewService(repo, testMaxDepth)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	root := testutil.CreateTestTask(t, db, projectID, 0, "Root", "todo", 0)
	child := testutil.CreateTestTask(t, db, projectID, root, "Child", "todo", 1)

	rootTask, _ := repo.GetTask(ctx, root)
	childTask, _ := repo.GetTask(ctx, child)

	err := svc.ValidateReparent(ctx, rootTask, childTask)
	if !errors.Is(err, ErrInvalidParent) {
		t.Errorf("Expected ErrInvalidParent for descendant parent, got %v", err)
	}
}

func TestValidateReparentRejectsCrossProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := database.NewRepository(db)
	svc := NewService(repo, testMaxDepth)
	ctx := context.Background()

	projectA := testutil.CreateTestProject(t, db, "Project A")
	projectB := testutil.CreateTestProject(t, db, "Project B")
	a := testutil.CreateTestTask(t, db, projectA, 0, "A", "todo", 0)
	b := testutil.CreateTestTask(t, db, projectB, 0, "B", "todo", 0)

	taskA, _ := repo.GetTask(ctx, a)
	taskB, _ := repo.GetTask(ctx, b)

	err := svc.ValidateReparent(ctx, taskA, taskB)
	if !errors.Is(err, ErrInvalidParent) {
		t.Errorf("Expected ErrInvalidParent for cross-project parent, got %v", err)
	}
}

func TestValidateReparentCountsSubtreeHeight(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := database.NewRepository(db)
	svc := NewService(repo, testMaxDepth)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	// Task with one child: height 1.
	mover := testutil.CreateTestTask(t, db, projectID, 0, "Mover", "todo", 0)
	testutil.CreateTestTask(t, db, projectID, mover, "Mover child", "todo", 1)
	// Target parent at depth 1.
	root := testutil.CreateTestTask(t, db, projectID, 0, "Root", "todo", 2)
	target := testutil.CreateTestTask(t, db, projectID, root, "Target", "todo", 3)

	moverTask, _ := repo.GetTask(ctx, mover)
	targetTask, _ := repo.GetTask(ctx, target)

	// Moving under the depth-1 target would put the mover's child at
	// depth 3, which hits the limit.
	err := svc.ValidateReparent(ctx, moverTask, targetTask)
	if !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("Expected ErrDepthExceeded, got %v", err)
	}

	// Moving under the top-level root puts the child at depth 2. Fine.
	rootTask, _ := repo.GetTask(ctx, root)
	if err := svc.ValidateReparent(ctx, moverTask, rootTask); err != nil {
		t.Errorf("Expected reparent under root to pass, got %v", err)
	}

	// Promotion to top level always passes.
	if err := svc.ValidateReparent(ctx, moverTask, nil); err != nil {
		t.Errorf("Expected promotion to pass, got %v", err)
	}
}

func TestSubtreeDeepestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := database.NewRepository(db)
	svc := NewService(repo, testMaxDepth)
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, db, "Test Project")
	root := testutil.CreateTestTask(t, db, projectID, 0, "Root", "todo", 0)
	child := testutil.CreateTestTask(t, db, projectID, root, "Child", "todo", 1)
	grandchild := testutil.CreateTestTask(t, db, projectID, child, "Grandchild", "todo", 2)

	rootTask, _ := repo.GetTask(ctx, root)
	subtree, err := svc.Subtree(ctx, rootTask)
	if err != nil {
		t.Fatalf("Failed to collect subtree: %v", err)
	}

	if len(subtree) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(subtree))
	}
	// Every task must appear before its parent.
	index := make(map[int]int, len(subtree))
	for i, task := range subtree {
		index[task.ID] = i
	}
	if index[grandchild] > index[child] || index[child] > index[root] {
		t.Errorf("Expected deepest-first order, got %v", []int{
			index[grandchild], index[child], index[root]})
	}
}

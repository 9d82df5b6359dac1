package cli

import (
	"fmt"
	"strings"

	"github.com/thenoetrevino/cadena/internal/cli/styles"
	"github.com/thenoetrevino/cadena/internal/converters"
	"github.com/thenoetrevino/cadena/internal/models"
	taskservice "github.com/thenoetrevino/cadena/internal/services/task"
)

// CreateTaskOptions carries flags for the create command.
type CreateTaskOptions struct {
	ProjectID    int
	ParentID     int // 0 means top-level
	Title        string
	Description  string
	ListPosition string
	Actor        string
	JSON         bool
}

// CreateTask handles `cadena task create`
func (c *CLI) CreateTask(opts CreateTaskOptions) error {
	req := taskservice.CreateTaskRequest{
		ProjectID:    opts.ProjectID,
		Title:        opts.Title,
		Description:  opts.Description,
		ListPosition: opts.ListPosition,
		ActorID:      Actor(opts.Actor),
	}
	if opts.ParentID > 0 {
		parentID := opts.ParentID
		req.ParentID = &parentID
	}

	task, err := c.App.TaskService.CreateTask(c.Context(), req)
	if err != nil {
		return err
	}

	if opts.JSON {
		return PrintJSON(converters.TaskToView(task))
	}
	fmt.Println(styles.SuccessStyle.Render(
		fmt.Sprintf("Created task #%d %q in %s", task.ID, task.Title, task.ListPosition)))
	return nil
}

// ShowTask handles `cadena task show`
func (c *CLI) ShowTask(taskID int, asJSON bool) error {
	detail, err := c.App.TaskService.GetTask(c.Context(), taskID)
	if err != nil {
		return err
	}

	if asJSON {
		return PrintJSON(converters.DetailToView(detail))
	}

	fmt.Println(styles.TitleStyle.Render(fmt.Sprintf("#%d %s", detail.ID, detail.Title)))
	fmt.Println(styles.SubtitleStyle.Render(
		fmt.Sprintf("project %d · %s · position %d · depth %d",
			detail.ProjectID, detail.ListPosition, detail.Position, detail.Depth)))
	if detail.Description != "" {
		fmt.Println(detail.Description)
	}
	printRefSection("Dependencies", detail.Dependencies)
	printRefSection("Dependents", detail.Dependents)
	printRefSection("Subtasks", detail.Children)
	return nil
}

func printRefSection(name string, refs []*models.TaskRef) {
	if len(refs) == 0 {
		return
	}
	fmt.Println(styles.SectionStyle.Render(name))
	for _, r := range refs {
		fmt.Printf("  #%d %s (%s)\n", r.ID, r.Title, r.ListPosition)
	}
}

// UpdateTask handles `cadena task update`
func (c *CLI) UpdateTask(taskID int, title, description *string, actor string) error {
	err := c.App.TaskService.UpdateTask(c.Context(), taskservice.UpdateTaskRequest{
		TaskID:      taskID,
		Title:       title,
		Description: description,
		ActorID:     Actor(actor),
	})
	if err != nil {
		return err
	}
	fmt.Println(styles.SuccessStyle.Render(fmt.Sprintf("Updated task #%d", taskID)))
	return nil
}

// MoveTask handles `cadena task move`
func (c *CLI) MoveTask(taskID, position int, listPosition, actor string) error {
	err := c.App.TaskService.MoveTask(c.Context(), taskID, position, listPosition, Actor(actor))
	if err != nil {
		return err
	}
	target := listPosition
	if target == "" {
		target = "same column"
	}
	fmt.Println(styles.SuccessStyle.Render(
		fmt.Sprintf("Moved task #%d to position %d (%s)", taskID, position, target)))
	return nil
}

// ReparentTask handles `cadena task reparent`. parentID 0 promotes the
// task to top level.
func (c *CLI) ReparentTask(taskID, parentID int, actor string) error {
	var parent *int
	if parentID > 0 {
		parent = &parentID
	}
	if err := c.App.TaskService.Reparent(c.Context(), taskID, parent, Actor(actor)); err != nil {
		return err
	}
	if parent == nil {
		fmt.Println(styles.SuccessStyle.Render(fmt.Sprintf("Promoted task #%d to top level", taskID)))
	} else {
		fmt.Println(styles.SuccessStyle.Render(fmt.Sprintf("Moved task #%d under #%d", taskID, parentID)))
	}
	return nil
}

// SetDependencies handles `cadena task deps set`
func (c *CLI) SetDependencies(taskID int, dependencyIDs []int, actor string) error {
	err := c.App.TaskService.SetDependencies(c.Context(), taskID, dependencyIDs, Actor(actor))
	if err != nil {
		return err
	}
	fmt.Println(styles.SuccessStyle.Render(
		fmt.Sprintf("Task #%d now depends on %s", taskID, joinIDs(dependencyIDs))))
	return nil
}

// ListDependencies handles `cadena task deps`
func (c *CLI) ListDependencies(taskID int, asJSON bool) error {
	deps, err := c.App.TaskService.Dependencies(c.Context(), taskID)
	if err != nil {
		return err
	}
	dependents, err := c.App.TaskService.DependentTasks(c.Context(), taskID)
	if err != nil {
		return err
	}

	if asJSON {
		return PrintJSON(map[string]any{
			"dependencies": converters.RefsToViews(deps),
			"dependents":   converters.RefsToViews(dependents),
		})
	}
	printRefSection("Dependencies", deps)
	printRefSection("Dependents", dependents)
	if len(deps) == 0 && len(dependents) == 0 {
		fmt.Println(styles.SubtitleStyle.Render("No dependencies"))
	}
	return nil
}

// DeleteTask handles `cadena task delete`
func (c *CLI) DeleteTask(taskID int, actor string) error {
	if err := c.App.TaskService.DeleteTask(c.Context(), taskID, Actor(actor)); err != nil {
		return err
	}
	fmt.Println(styles.SuccessStyle.Render(
		fmt.Sprintf("Deleted task #%d and its subtasks", taskID)))
	return nil
}

// Reorder handles `cadena reorder`
func (c *CLI) Reorder(projectID int, listPosition string, orderedIDs []int, actor string) error {
	err := c.App.TaskService.ReorderBatch(c.Context(), projectID, listPosition, orderedIDs, Actor(actor))
	if err != nil {
		return err
	}
	fmt.Println(styles.SuccessStyle.Render(
		fmt.Sprintf("Reordered %q: %s", listPosition, joinIDs(orderedIDs))))
	return nil
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "nothing"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(parts, ", ")
}

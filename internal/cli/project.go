package cli

import (
	"fmt"

	"github.com/thenoetrevino/cadena/internal/cli/styles"
	"github.com/thenoetrevino/cadena/internal/models"
)

// CreateProject handles `cadena project create`
func (c *CLI) CreateProject(name, description string) error {
	project, err := c.App.Repo().CreateProject(c.Context(), name, description)
	if err != nil {
		return err
	}
	fmt.Println(styles.SuccessStyle.Render(
		fmt.Sprintf("Created project #%d %q", project.ID, project.Name)))
	return nil
}

// ListProjects handles `cadena project list`
func (c *CLI) ListProjects() error {
	projects, err := c.App.Repo().GetAllProjects(c.Context())
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println(styles.SubtitleStyle.Render("No projects"))
		return nil
	}
	for _, p := range projects {
		fmt.Printf("#%d %s\n", p.ID, p.Name)
	}
	return nil
}

// Tree handles `cadena project tree`
func (c *CLI) Tree(projectID int) error {
	roots, err := c.App.TaskService.Tree(c.Context(), projectID)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		fmt.Println(styles.SubtitleStyle.Render("No tasks"))
		return nil
	}
	for _, root := range roots {
		printTree(root, 0)
	}
	return nil
}

func printTree(node *models.TreeNode, indent int) {
	prefix := ""
	for i := 0; i < indent; i++ {
		prefix += "  "
	}
	fmt.Printf("%s#%d %s (%s)\n", prefix, node.Task.ID, node.Task.Title, node.Task.ListPosition)
	for _, child := range node.Children {
		printTree(child, indent+1)
	}
}

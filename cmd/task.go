package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/cadena/internal/cli"
)

var (
	flagProject     int
	flagParent      int
	flagTitle       string
	flagDescription string
	flagColumn      string
	flagPosition    int
	flagDeps        string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, inspect, and modify tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task or subtask",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.CreateTask(cli.CreateTaskOptions{
				ProjectID:    flagProject,
				ParentID:     flagParent,
				Title:        flagTitle,
				Description:  flagDescription,
				ListPosition: flagColumn,
				Actor:        flagActor,
				JSON:         flagJSON,
			})
		})
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task with its dependencies and subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.ShowTask(taskID, flagJSON)
		})
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task's title or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		var title, description *string
		if cmd.Flags().Changed("title") {
			title = &flagTitle
		}
		if cmd.Flags().Changed("description") {
			description = &flagDescription
		}
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.UpdateTask(taskID, title, description, flagActor)
		})
	},
}

var taskMoveCmd = &cobra.Command{
	Use:   "move <task-id>",
	Short: "Move a task to a new position, optionally in another column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.MoveTask(taskID, flagPosition, flagColumn, flagActor)
		})
	},
}

var taskReparentCmd = &cobra.Command{
	Use:   "reparent <task-id>",
	Short: "Move a task under a new parent (--parent 0 promotes to top level)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.ReparentTask(taskID, flagParent, flagActor)
		})
	},
}

var taskDepsCmd = &cobra.Command{
	Use:   "deps <task-id>",
	Short: "List a task's dependencies and dependents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.ListDependencies(taskID, flagJSON)
		})
	},
}

var taskDepsSetCmd = &cobra.Command{
	Use:   "set <task-id>",
	Short: "Replace a task's dependency set (--on 2,5,9 or --on '' to clear)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		depIDs, err := parseIDList(flagDeps)
		if err != nil {
			return err
		}
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.SetDependencies(taskID, depIDs, flagActor)
		})
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task and its entire subtree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.DeleteTask(taskID, flagActor)
		})
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)

	taskCmd.AddCommand(taskCreateCmd)
	taskCreateCmd.Flags().IntVarP(&flagProject, "project", "p", 0, "project id")
	taskCreateCmd.Flags().IntVar(&flagParent, "parent", 0, "parent task id (omit for top-level)")
	taskCreateCmd.Flags().StringVarP(&flagTitle, "title", "t", "", "task title")
	taskCreateCmd.Flags().StringVarP(&flagDescription, "description", "d", "", "task description")
	taskCreateCmd.Flags().StringVarP(&flagColumn, "column", "c", "", "list column (defaults to the configured initial column)")
	taskCreateCmd.MarkFlagRequired("project")
	taskCreateCmd.MarkFlagRequired("title")

	taskCmd.AddCommand(taskShowCmd)

	taskCmd.AddCommand(taskUpdateCmd)
	taskUpdateCmd.Flags().StringVarP(&flagTitle, "title", "t", "", "new title")
	taskUpdateCmd.Flags().StringVarP(&flagDescription, "description", "d", "", "new description")

	taskCmd.AddCommand(taskMoveCmd)
	taskMoveCmd.Flags().IntVar(&flagPosition, "to", 0, "target slot within the column")
	taskMoveCmd.Flags().StringVarP(&flagColumn, "column", "c", "", "target column (omit to stay in the current one)")
	taskMoveCmd.MarkFlagRequired("to")

	taskCmd.AddCommand(taskReparentCmd)
	taskReparentCmd.Flags().IntVar(&flagParent, "parent", 0, "new parent task id (0 promotes to top level)")
	taskReparentCmd.MarkFlagRequired("parent")

	taskCmd.AddCommand(taskDepsCmd)
	taskDepsCmd.AddCommand(taskDepsSetCmd)
	taskDepsSetCmd.Flags().StringVar(&flagDeps, "on", "", "comma-separated task ids this task depends on")
	taskDepsSetCmd.MarkFlagRequired("on")

	taskCmd.AddCommand(taskDeleteCmd)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

func parseIDList(arg string) ([]int, error) {
	if strings.TrimSpace(arg) == "" {
		return nil, nil
	}
	parts := strings.Split(arg, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid task id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

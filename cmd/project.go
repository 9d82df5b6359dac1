package cmd

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/cadena/internal/cli"
)

var (
	flagProjectName string
	flagProjectDesc string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.CreateProject(flagProjectName, flagProjectDesc)
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.ListProjects()
		})
	},
}

var projectTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show a project's task hierarchy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.Tree(flagProject)
		})
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)

	projectCmd.AddCommand(projectCreateCmd)
	projectCreateCmd.Flags().StringVarP(&flagProjectName, "name", "n", "", "project name")
	projectCreateCmd.Flags().StringVarP(&flagProjectDesc, "description", "d", "", "project description")
	projectCreateCmd.MarkFlagRequired("name")

	projectCmd.AddCommand(projectListCmd)

	projectCmd.AddCommand(projectTreeCmd)
	projectTreeCmd.Flags().IntVarP(&flagProject, "project", "p", 0, "project id")
	projectTreeCmd.MarkFlagRequired("project")
}

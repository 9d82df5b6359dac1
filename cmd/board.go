package cmd

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/cadena/internal/cli"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show a project's tasks grouped by column",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.Board(flagProject, flagJSON)
		})
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().IntVarP(&flagProject, "project", "p", 0, "project id")
	boardCmd.MarkFlagRequired("project")
}

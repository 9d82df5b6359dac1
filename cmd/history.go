package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/cadena/internal/cli"
)

var flagHistoryTask int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the audit trail for a task or project",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flagHistoryTask == 0 && flagProject == 0 {
			return errors.New("either --task or --project is required")
		}
		if flagHistoryTask != 0 && flagProject != 0 {
			return errors.New("--task and --project are mutually exclusive")
		}
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.History(flagHistoryTask, flagProject, flagJSON)
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&flagHistoryTask, "task", "t", 0, "task id")
	historyCmd.Flags().IntVarP(&flagProject, "project", "p", 0, "project id")
}

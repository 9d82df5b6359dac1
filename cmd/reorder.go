package cmd

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/cadena/internal/cli"
)

var flagOrder string

var reorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "Replace a column's ordering in one batch",
	Long: `Reassigns positions for every task in a column at once. The --order
list must name each task in the column exactly once.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		orderedIDs, err := parseIDList(flagOrder)
		if err != nil {
			return err
		}
		return withCLI(cmd, func(c *cli.CLI) error {
			return c.Reorder(flagProject, flagColumn, orderedIDs, flagActor)
		})
	},
}

func init() {
	rootCmd.AddCommand(reorderCmd)
	reorderCmd.Flags().IntVarP(&flagProject, "project", "p", 0, "project id")
	reorderCmd.Flags().StringVarP(&flagColumn, "column", "c", "", "column to reorder")
	reorderCmd.Flags().StringVar(&flagOrder, "order", "", "comma-separated task ids in their new order")
	reorderCmd.MarkFlagRequired("project")
	reorderCmd.MarkFlagRequired("column")
	reorderCmd.MarkFlagRequired("order")
}

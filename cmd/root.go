// Package cmd implements the cadena CLI commands.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/cadena/internal/cli"
)

// Global flags.
var (
	flagActor string
	flagJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "cadena",
	Short: "Cadena - hierarchical tasks with dependency tracking",
	Long: `Cadena manages tasks organized as bounded-depth hierarchies with
acyclic dependencies between them. Every change is recorded in an
audit trail.`,
	SilenceErrors: false,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagActor, "actor", "", "who is making the change (defaults to $USER)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
}

// Execute runs the root command with the given process context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// withCLI opens config and database, runs fn, and cleans up afterwards.
func withCLI(cmd *cobra.Command, fn func(c *cli.CLI) error) error {
	c, err := cli.NewCLI(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

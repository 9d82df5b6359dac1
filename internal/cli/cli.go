// Package cli implements the command handlers behind the cobra surface.
// Handlers are thin callers of the task service: they parse nothing and
// authorize nothing, they translate service results into styled output.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/thenoetrevino/cadena/internal/app"
	"github.com/thenoetrevino/cadena/internal/config"
	"github.com/thenoetrevino/cadena/internal/database"
)

// CLI represents the CLI application context
type CLI struct {
	App *app.App
	ctx context.Context
	db  interface{ Close() error }
}

// NewCLI initializes the CLI with config and database
func NewCLI(ctx context.Context) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	db, err := database.InitDB(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &CLI{
		App: app.New(db, cfg),
		ctx: ctx,
		db:  db,
	}, nil
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	if err := c.App.Close(); err != nil {
		return err
	}
	return c.db.Close()
}

// Context returns the ambient context for service calls
func (c *CLI) Context() context.Context {
	return c.ctx
}

// PrintJSON writes v as indented JSON to stdout
func PrintJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Actor resolves the acting user for history entries.
// Falls back to "unknown" when the environment gives nothing.
func Actor(flag string) string {
	if flag != "" {
		return flag
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

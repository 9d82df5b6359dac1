// Package app wires the repository and services together.
package app

import (
	"database/sql"

	"github.com/thenoetrevino/cadena/internal/config"
	"github.com/thenoetrevino/cadena/internal/database"
	historyservice "github.com/thenoetrevino/cadena/internal/services/history"
	taskservice "github.com/thenoetrevino/cadena/internal/services/task"
)

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	repo *database.Repository

	// Service layer (business logic)
	TaskService    taskservice.Service
	HistoryService historyservice.Service
}

// New creates a new App with all services initialized.
// This is the single entry point for creating the application container.
func New(db *sql.DB, cfg *config.Config) *App {
	repo := database.NewRepository(db)
	return &App{
		repo:           repo,
		TaskService:    taskservice.NewService(repo, cfg),
		HistoryService: historyservice.NewService(repo),
	}
}

// Repo returns the underlying repository for direct database access.
func (a *App) Repo() database.DataStore {
	return a.repo
}

// Close performs cleanup of application resources.
func (a *App) Close() error {
	return nil
}

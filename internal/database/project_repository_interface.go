package database

import (
	"context"

	"github.com/thenoetrevino/cadena/internal/models"
)

// ProjectRepository defines operations for projects.
type ProjectRepository interface {
	CreateProject(ctx context.Context, name, description string) (*models.Project, error)
	GetProjectByID(ctx context.Context, id int) (*models.Project, error)
	GetAllProjects(ctx context.Context) ([]*models.Project, error)
	DeleteProject(ctx context.Context, id int) error
}

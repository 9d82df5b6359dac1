package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/thenoetrevino/cadena/internal/models"
)

// ProjectRepo implements ProjectRepository against sqlite.
type ProjectRepo struct {
	db *sql.DB
}

// CreateProject creates a new project
func (r *ProjectRepo) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (name, description) VALUES (?, ?)`,
		name, description,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetProjectByID(ctx, int(id))
}

// GetProjectByID retrieves a project by id
func (r *ProjectRepo) GetProjectByID(ctx context.Context, id int) (*models.Project, error) {
	project := &models.Project{}
	var description sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM projects WHERE id = ?`,
		id,
	).Scan(&project.ID, &project.Name, &description, &project.CreatedAt, &project.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	project.Description = description.String
	return project, nil
}

// GetAllProjects retrieves all projects ordered by id
func (r *ProjectRepo) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project := &models.Project{}
		var description sql.NullString
		if err := rows.Scan(&project.ID, &project.Name, &description,
			&project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, err
		}
		project.Description = description.String
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project; tasks, edges, and the FK cascade take
// care of project-owned rows. History entries are retained.
func (r *ProjectRepo) DeleteProject(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

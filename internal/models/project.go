package models

import "time"

// Project represents a container for tasks
// Projects are the top-level organizational unit in Cadena
type Project struct {
	ID          int
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

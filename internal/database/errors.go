package database

import "errors"

// ErrNotFound is returned when a referenced task, project, or history
// entry does not exist. Repositories translate sql.ErrNoRows into this
// so callers never depend on database/sql directly.
var ErrNotFound = errors.New("record not found")

package database

import (
	"database/sql"
	"strings"
)

// taskColumns is the canonical select list for task rows.
const taskColumns = `id, project_id, parent_id, title, description, list_position, position, created_at, updated_at`

// inPlaceholders builds a "?, ?, ?" string for IN clauses with n entries.
func inPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// intsToArgs converts an int slice to the []any form ExecContext expects.
func intsToArgs(ids []int) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// nullableInt converts an optional id to a driver value.
func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// intPtr converts a scanned nullable column back to *int.
func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

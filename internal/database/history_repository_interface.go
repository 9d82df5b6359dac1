package database

import (
	"context"

	"github.com/thenoetrevino/cadena/internal/models"
)

// HistoryRepository defines operations on the append-only audit ledger.
// Entries are never updated or deleted; there is deliberately no write
// operation beyond Append.
type HistoryRepository interface {
	AppendHistory(ctx context.Context, entry *models.HistoryEntry) error
	ListHistoryForTask(ctx context.Context, taskID int) ([]*models.HistoryEntry, error)
	ListHistoryForProject(ctx context.Context, projectID int) ([]*models.HistoryEntry, error)
}

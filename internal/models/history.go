package models

import "time"

// HistoryAction describes the kind of mutation an audit entry records.
type HistoryAction string

// HistoryAction values used by the audit ledger.
const (
	ActionCreated           HistoryAction = "created"
	ActionUpdated           HistoryAction = "updated"
	ActionDeleted           HistoryAction = "deleted"
	ActionMoved             HistoryAction = "moved"
	ActionReordered         HistoryAction = "reordered"
	ActionDependencyChanged HistoryAction = "dependency_changed"
	ActionReparented        HistoryAction = "reparented"
)

// Entity types recorded on history entries.
const (
	EntityTask    = "task"
	EntitySubtask = "subtask"
)

// HistoryEntry is an immutable audit record of one logical mutation.
// Entries are created by the history recorder, appended in the same
// transaction as the mutation they describe, and never updated or deleted.
type HistoryEntry struct {
	ID         string // opaque uuid, assigned before the transaction commits
	EntityType string // EntityTask or EntitySubtask
	TaskID     int
	ProjectID  int
	Action     HistoryAction
	Details    map[string]any // structured before/after diff
	ActorID    string
	CreatedAt  time.Time
}

package models

// UncategorizedBucket is the reserved board group for tasks whose
// list_position is empty. Board views never drop tasks.
const UncategorizedBucket = "uncategorized"

// DefaultMaxDepth is the default bound on subtask nesting.
// depth(task) < DefaultMaxDepth must hold for every task.
const DefaultMaxDepth = 3

// DefaultListPosition is the workflow column assigned to new tasks when
// the caller does not supply one and no config override exists.
const DefaultListPosition = "todo"

// MaxTitleLength caps task titles, matching the storage schema check.
const MaxTitleLength = 255

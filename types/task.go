package types

import "time"

// Priority bounds for tasks. Zero means "unset" on input and is replaced
// by DefaultPriority.
const (
	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = 5
)

// Task represents a single to-do item belonging to one user.
type Task struct {
	// ID is the unique identifier of the task.
	ID int `json:"id" db:"id"`

	// OwnerID references the user who created the task. It is assigned
	// from the authenticated identity at creation and never changes.
	OwnerID int `json:"owner_id" db:"owner_id"`

	// Title is a short, non-empty summary of the task.
	Title string `json:"title" db:"title"`

	// Description is optional free-form detail.
	Description string `json:"description" db:"description"`

	// Priority ranks importance on a 1 (low) to 10 (high) scale.
	Priority int `json:"priority" db:"priority"`

	// Completed reports whether the task is done.
	Completed bool `json:"completed" db:"completed"`

	// CreatedAt is set once at creation and is the list ordering key
	// (newest first).
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TaskPatch carries a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	Priority    *int    `json:"priority"`
}

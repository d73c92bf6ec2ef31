package domain

import "time"

// MaxDescriptionLen is the longest description accepted, counted in characters.
const MaxDescriptionLen = 100

// Todo is the single persisted entity.
// Storage- and transport-agnostic: repositories and DTOs convert to and from it.
type Todo struct {
	ID          string
	Description string `validate:"notblank,max=100"`
	IsCompleted bool

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Toggled returns a copy with IsCompleted flipped and UpdatedAt set to at.
func (t Todo) Toggled(at time.Time) Todo {
	t.IsCompleted = !t.IsCompleted
	t.UpdatedAt = &at
	return t
}

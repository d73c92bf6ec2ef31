package repo

import (
	"context"
	"errors"

	dom "github.com/birlikkoshan/todo-serverless/internal/domain"
)

var (
	ErrNotFound      = errors.New("todo not found")
	ErrAlreadyExists = errors.New("todo already exists")
)

// TodoRepo is a flat key-value view of the todos table keyed by ID.
// Writes are unconditional except Create; concurrent writers to the same key
// resolve as last write wins.
type TodoRepo interface {
	List(ctx context.Context) ([]dom.Todo, error)
	GetByID(ctx context.Context, id string) (dom.Todo, error)
	// Create inserts t and fails with ErrAlreadyExists if the ID is taken.
	Create(ctx context.Context, t dom.Todo) error
	// Save writes t in full, inserting it when absent.
	Save(ctx context.Context, t dom.Todo) error
	// Delete removes the todo. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
}

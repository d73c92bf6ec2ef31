package dto

import (
	"time"

	dom "github.com/birlikkoshan/todo-serverless/internal/domain"
)

// CreateTodoRequest is the JSON body for POST /api/todos.
// ID and CreatedAt are normally left out and assigned by the server.
type CreateTodoRequest struct {
	ID          string     `json:"id,omitempty"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

func (r CreateTodoRequest) Todo() dom.Todo {
	t := dom.Todo{ID: r.ID, Description: r.Description, IsCompleted: r.IsCompleted}
	if r.CreatedAt != nil {
		t.CreatedAt = *r.CreatedAt
	}
	return t
}

// UpdateTodoRequest is the full todo sent with PUT /api/todos/{id}.
// UpdatedAt is accepted so a fetched todo can be sent back as is; the server
// overwrites it.
type UpdateTodoRequest struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (r UpdateTodoRequest) Todo() dom.Todo {
	t := dom.Todo{ID: r.ID, Description: r.Description, IsCompleted: r.IsCompleted}
	if r.CreatedAt != nil {
		t.CreatedAt = *r.CreatedAt
	}
	return t
}

type TodoResponse struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

func NewTodoResponse(t dom.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTodoResponses(list []dom.Todo) []TodoResponse {
	out := make([]TodoResponse, len(list))
	for i := range list {
		out[i] = NewTodoResponse(list[i])
	}
	return out
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

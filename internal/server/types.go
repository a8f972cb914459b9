package server

import "github.com/roach88/todokit/internal/todo"

// CreateRequest is the body of POST /v1/todos.
type CreateRequest struct {
	Text string   `json:"text" binding:"required"`
	Tags []string `json:"tags,omitempty"`
}

// UpdateRequest is the body of PATCH /v1/todos/:id. Absent fields are left
// alone; an empty text removes the todo.
type UpdateRequest struct {
	Text      *string   `json:"text,omitempty"`
	Completed *bool     `json:"completed,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
}

// ListResponse is returned by GET /v1/todos.
type ListResponse struct {
	// Todos are the todos passing the requested filter.
	Todos []*todo.Todo `json:"todos"`

	// Stats count the whole list, not just Todos.
	Stats todo.Stats `json:"stats"`
}

// ClearResponse is returned by POST /v1/todos/clear-completed.
type ClearResponse struct {
	Removed int        `json:"removed"`
	Stats   todo.Stats `json:"stats"`
}

// Snapshot is pushed to feed subscribers on connect and after every change.
type Snapshot struct {
	Type  string       `json:"type"`
	Todos []*todo.Todo `json:"todos"`
	Stats todo.Stats   `json:"stats"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code.
	Code string `json:"code"`
}

func newSnapshot(items []*todo.Todo) Snapshot {
	if items == nil {
		items = []*todo.Todo{}
	}
	return Snapshot{Type: "snapshot", Todos: items, Stats: todo.Count(items)}
}

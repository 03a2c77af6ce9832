package dto

import (
	"time"

	"github.com/spec-kit/todo-service/internal/domain"
)

// CreateTodoRequest payload for POST /todos. Any owner field sent by the
// client is not decoded.
type CreateTodoRequest struct {
	Text *string `json:"text"`
	Done *bool   `json:"done"`
}

// UpdateTodoRequest payload for PUT /todos/:id; absent fields stay unchanged.
type UpdateTodoRequest struct {
	Text *string `json:"text"`
	Done *bool   `json:"done"`
}

// Patch converts the request into a domain patch.
func (r UpdateTodoRequest) Patch() domain.TodoPatch {
	return domain.TodoPatch{Text: r.Text, Done: r.Done}
}

// TodoResponse is the public view of a todo. The owner id is never exposed.
type TodoResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTodoResponse maps a domain todo.
func NewTodoResponse(todo *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:        todo.ID,
		Text:      todo.Text,
		Done:      todo.Done,
		CreatedAt: todo.CreatedAt,
	}
}

// NewTodoListResponse maps todos, returning an empty slice rather than nil.
func NewTodoListResponse(todos []domain.Todo) []TodoResponse {
	items := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		items = append(items, NewTodoResponse(&todos[i]))
	}
	return items
}

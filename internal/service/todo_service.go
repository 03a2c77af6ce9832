package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/todo-service/internal/auth"
	"github.com/spec-kit/todo-service/internal/domain"
	"github.com/spec-kit/todo-service/internal/events"
	"github.com/spec-kit/todo-service/internal/repository"
	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

var (
	// ErrNotFound hides whether a todo is missing or owned by someone else.
	ErrNotFound = apperrors.NewNotFound("todo")
	// ErrInvalidTodo rejects malformed todo bodies.
	ErrInvalidTodo = apperrors.NewValidationError("invalid_todo", "text must be a non-empty string")
)

// TodoCounter counts successfully created todos.
type TodoCounter interface {
	RecordTodoCreated()
}

// TodoService runs owner-scoped CRUD. Every call takes the caller identity and
// every repository call is filtered by it.
type TodoService struct {
	todos      repository.TodoRepository
	counter    TodoCounter
	dispatcher events.Dispatcher
}

// TodoDependencies bundles collaborators for the todo service.
type TodoDependencies struct {
	TodoRepo   repository.TodoRepository
	Counter    TodoCounter
	Dispatcher events.Dispatcher
}

// TodoCreateInput describes todo creation payload.
type TodoCreateInput struct {
	Text string
	Done *bool
}

// NewTodoService constructs the service.
func NewTodoService(deps TodoDependencies) *TodoService {
	return &TodoService{
		todos:      deps.TodoRepo,
		counter:    deps.Counter,
		dispatcher: deps.Dispatcher,
	}
}

// List returns the caller's todos, newest first.
func (s *TodoService) List(ctx context.Context, caller domain.Identity) ([]domain.Todo, error) {
	if caller.SubjectID == "" {
		return nil, auth.ErrUnauthorized
	}
	todos, err := s.todos.ListByOwner(ctx, caller.SubjectID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("list todos: %w", err))
	}
	return todos, nil
}

// Create stores a todo owned by the caller.
func (s *TodoService) Create(ctx context.Context, caller domain.Identity, input TodoCreateInput) (*domain.Todo, error) {
	if caller.SubjectID == "" {
		return nil, auth.ErrUnauthorized
	}
	if input.Text == "" {
		return nil, ErrInvalidTodo
	}

	todo := &domain.Todo{OwnerID: caller.SubjectID, Text: input.Text}
	if input.Done != nil {
		todo.Done = *input.Done
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("create todo: %w", err))
	}
	if s.counter != nil {
		s.counter.RecordTodoCreated()
	}

	s.publish(ctx, events.Event{Type: events.EventTodoCreated, SubjectID: caller.SubjectID, ResourceID: todo.ID})
	return todo, nil
}

// Update applies patch to the caller's todo.
func (s *TodoService) Update(ctx context.Context, caller domain.Identity, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	if caller.SubjectID == "" {
		return nil, auth.ErrUnauthorized
	}
	if patch.Text != nil && *patch.Text == "" {
		return nil, ErrInvalidTodo
	}
	if !validID(id) {
		return nil, ErrNotFound
	}

	todo, err := s.todos.UpdateForOwner(ctx, id, caller.SubjectID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("update todo: %w", err))
	}

	s.publish(ctx, events.Event{Type: events.EventTodoUpdated, SubjectID: caller.SubjectID, ResourceID: todo.ID})
	return todo, nil
}

// Delete removes the caller's todo.
func (s *TodoService) Delete(ctx context.Context, caller domain.Identity, id string) error {
	if caller.SubjectID == "" {
		return auth.ErrUnauthorized
	}
	if !validID(id) {
		return ErrNotFound
	}

	if err := s.todos.DeleteForOwner(ctx, id, caller.SubjectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return apperrors.NewInternalError(fmt.Errorf("delete todo: %w", err))
	}

	s.publish(ctx, events.Event{Type: events.EventTodoDeleted, SubjectID: caller.SubjectID, ResourceID: id})
	return nil
}

func (s *TodoService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

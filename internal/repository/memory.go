package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/todo-service/internal/domain"
)

type memoryUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
	now     func() time.Time
}

// NewMemoryUserRepository returns a process-local UserRepository with a
// unique email index. Used when no database is configured and in tests.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{byEmail: make(map[string]domain.User), now: time.Now}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicate
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.now().UTC()
	r.byEmail[user.Email] = *user
	return nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

type memoryTodo struct {
	todo domain.Todo
	seq  uint64
}

type memoryTodoRepository struct {
	mu    sync.RWMutex
	todos map[string]*memoryTodo
	seq   uint64
	now   func() time.Time
}

// NewMemoryTodoRepository returns a process-local TodoRepository.
func NewMemoryTodoRepository() TodoRepository {
	return &memoryTodoRepository{todos: make(map[string]*memoryTodo), now: time.Now}
}

func (r *memoryTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	todo.ID = uuid.NewString()
	todo.CreatedAt = r.now().UTC()
	r.todos[todo.ID] = &memoryTodo{todo: *todo, seq: r.seq}
	return nil
}

func (r *memoryTodoRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	matches := make([]*memoryTodo, 0)
	for _, entry := range r.todos {
		if entry.todo.OwnerID == ownerID {
			matches = append(matches, entry)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.todo.CreatedAt.Equal(b.todo.CreatedAt) {
			return a.todo.CreatedAt.After(b.todo.CreatedAt)
		}
		return a.seq > b.seq
	})

	result := make([]domain.Todo, 0, len(matches))
	for _, entry := range matches {
		result = append(result, entry.todo)
	}
	return result, nil
}

func (r *memoryTodoRepository) UpdateForOwner(ctx context.Context, id, ownerID string, patch domain.TodoPatch) (*domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.todos[id]
	if !ok || entry.todo.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	patch.Apply(&entry.todo)
	updated := entry.todo
	return &updated, nil
}

func (r *memoryTodoRepository) DeleteForOwner(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.todos[id]
	if !ok || entry.todo.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

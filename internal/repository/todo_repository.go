package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/todo-service/internal/domain"
)

// TodoRepository encapsulates todo persistence. Every read and write past
// Create is filtered by owner; a record owned by someone else behaves exactly
// like a missing one and yields ErrNotFound.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Todo, error)
	UpdateForOwner(ctx context.Context, id, ownerID string, patch domain.TodoPatch) (*domain.Todo, error)
	DeleteForOwner(ctx context.Context, id, ownerID string) error
}

type todoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository instantiates repository.
func NewTodoRepository(pool *pgxpool.Pool) TodoRepository {
	return &todoRepository{pool: pool}
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	const query = `
        INSERT INTO todos (id, owner_id, text, done)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at`

	id := uuid.NewString()
	if err := r.pool.QueryRow(ctx, query,
		id,
		todo.OwnerID,
		todo.Text,
		todo.Done,
	).Scan(&todo.CreatedAt); err != nil {
		return translate(err)
	}
	todo.ID = id
	return nil
}

func (r *todoRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Todo, error) {
	const query = `
        SELECT id, owner_id, text, done, created_at
        FROM todos WHERE owner_id=$1
        ORDER BY created_at DESC, seq DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	return scanTodos(rows)
}

func (r *todoRepository) UpdateForOwner(ctx context.Context, id, ownerID string, patch domain.TodoPatch) (*domain.Todo, error) {
	const query = `
        UPDATE todos SET text=COALESCE($3, text), done=COALESCE($4, done)
        WHERE id=$1 AND owner_id=$2
        RETURNING id, owner_id, text, done, created_at`

	var todo domain.Todo
	if err := r.pool.QueryRow(ctx, query, id, ownerID, patch.Text, patch.Done).Scan(
		&todo.ID,
		&todo.OwnerID,
		&todo.Text,
		&todo.Done,
		&todo.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &todo, nil
}

func (r *todoRepository) DeleteForOwner(ctx context.Context, id, ownerID string) error {
	const query = `DELETE FROM todos WHERE id=$1 AND owner_id=$2`

	cmd, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTodos(rows pgx.Rows) ([]domain.Todo, error) {
	result := []domain.Todo{}
	for rows.Next() {
		var todo domain.Todo
		if err := rows.Scan(
			&todo.ID,
			&todo.OwnerID,
			&todo.Text,
			&todo.Done,
			&todo.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, todo)
	}
	return result, rows.Err()
}

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/todo-service/internal/domain"
)

func TestMemoryUserRepository(t *testing.T) {
	testUserRepository(t, NewMemoryUserRepository())
}

func TestMemoryTodoRepository(t *testing.T) {
	testTodoRepository(t, NewMemoryUserRepository(), NewMemoryTodoRepository())
}

func TestMemoryTodoRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryTodoRepository()
	ctx := context.Background()

	todo := &domain.Todo{OwnerID: "owner", Text: "original"}
	if err := repo.Create(ctx, todo); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	todo.Text = "mutated by caller"

	list, err := repo.ListByOwner(ctx, "owner")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if list[0].Text != "original" {
		t.Errorf("stored text = %q, want original", list[0].Text)
	}
}

func TestMemoryRepositories_HonorCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewMemoryUserRepository().Create(ctx, &domain.User{Email: "a@x.com"}); !errors.Is(err, context.Canceled) {
		t.Errorf("user Create err = %v, want context.Canceled", err)
	}
	if _, err := NewMemoryTodoRepository().ListByOwner(ctx, "owner"); !errors.Is(err, context.Canceled) {
		t.Errorf("todo ListByOwner err = %v, want context.Canceled", err)
	}
}

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/todo-service/internal/domain"
)

func testUserRepository(t *testing.T, users UserRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and lookup", func(t *testing.T) {
		user := &domain.User{Email: "lookup@x.com", PasswordHash: "hash"}
		if err := users.Create(ctx, user); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if user.ID == "" || user.CreatedAt.IsZero() {
			t.Fatalf("Create() did not populate id/created_at: %+v", user)
		}

		got, err := users.GetByEmail(ctx, "lookup@x.com")
		if err != nil {
			t.Fatalf("GetByEmail() error = %v", err)
		}
		if got.ID != user.ID || got.PasswordHash != "hash" {
			t.Errorf("GetByEmail() = %+v, want %+v", got, user)
		}
	})

	t.Run("missing email", func(t *testing.T) {
		if _, err := users.GetByEmail(ctx, "nobody@x.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		if err := users.Create(ctx, &domain.User{Email: "dup@x.com", PasswordHash: "h1"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := users.Create(ctx, &domain.User{Email: "dup@x.com", PasswordHash: "h2"}); !errors.Is(err, ErrDuplicate) {
			t.Fatalf("err = %v, want ErrDuplicate", err)
		}
		got, err := users.GetByEmail(ctx, "dup@x.com")
		if err != nil {
			t.Fatalf("GetByEmail() error = %v", err)
		}
		if got.PasswordHash != "h1" {
			t.Error("duplicate insert must not replace the original record")
		}
	})

	t.Run("concurrent duplicate inserts", func(t *testing.T) {
		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- users.Create(ctx, &domain.User{Email: "race@x.com", PasswordHash: "h"})
			}()
		}
		wg.Wait()
		close(errs)

		created := 0
		for err := range errs {
			switch {
			case err == nil:
				created++
			case !errors.Is(err, ErrDuplicate):
				t.Errorf("unexpected error: %v", err)
			}
		}
		if created != 1 {
			t.Errorf("created = %d, want exactly 1", created)
		}
	})
}

func createOwner(t *testing.T, users UserRepository, email string) string {
	t.Helper()
	user := &domain.User{Email: email, PasswordHash: "hash"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create(%s) error = %v", email, err)
	}
	return user.ID
}

func testTodoRepository(t *testing.T, users UserRepository, todos TodoRepository) {
	t.Helper()
	ctx := context.Background()
	alice := createOwner(t, users, "alice@x.com")
	bob := createOwner(t, users, "bob@x.com")

	var created []domain.Todo
	for _, text := range []string{"first", "second", "third"} {
		todo := &domain.Todo{OwnerID: alice, Text: text}
		if err := todos.Create(ctx, todo); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		created = append(created, *todo)
		time.Sleep(2 * time.Millisecond)
	}
	if err := todos.Create(ctx, &domain.Todo{OwnerID: bob, Text: "bob's"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("list is owner scoped and newest first", func(t *testing.T) {
		list, err := todos.ListByOwner(ctx, alice)
		if err != nil {
			t.Fatalf("ListByOwner() error = %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("len = %d, want 3", len(list))
		}
		want := []string{"third", "second", "first"}
		for i, todo := range list {
			if todo.Text != want[i] {
				t.Errorf("list[%d].Text = %q, want %q", i, todo.Text, want[i])
			}
			if todo.OwnerID != alice {
				t.Errorf("list[%d] owned by %q", i, todo.OwnerID)
			}
		}
	})

	t.Run("empty list for owner without records", func(t *testing.T) {
		list, err := todos.ListByOwner(ctx, uuid.NewString())
		if err != nil {
			t.Fatalf("ListByOwner() error = %v", err)
		}
		if list == nil || len(list) != 0 {
			t.Errorf("list = %v, want empty non-nil slice", list)
		}
	})

	t.Run("partial update", func(t *testing.T) {
		done := true
		updated, err := todos.UpdateForOwner(ctx, created[0].ID, alice, domain.TodoPatch{Done: &done})
		if err != nil {
			t.Fatalf("UpdateForOwner() error = %v", err)
		}
		if !updated.Done || updated.Text != "first" {
			t.Errorf("updated = %+v", updated)
		}
	})

	t.Run("other owner cannot update or delete", func(t *testing.T) {
		text := "hijacked"
		if _, err := todos.UpdateForOwner(ctx, created[1].ID, bob, domain.TodoPatch{Text: &text}); !errors.Is(err, ErrNotFound) {
			t.Errorf("update err = %v, want ErrNotFound", err)
		}
		if err := todos.DeleteForOwner(ctx, created[1].ID, bob); !errors.Is(err, ErrNotFound) {
			t.Errorf("delete err = %v, want ErrNotFound", err)
		}
		list, err := todos.ListByOwner(ctx, alice)
		if err != nil {
			t.Fatalf("ListByOwner() error = %v", err)
		}
		for _, todo := range list {
			if todo.Text == "hijacked" {
				t.Error("foreign update leaked into owner's record")
			}
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if err := todos.DeleteForOwner(ctx, uuid.NewString(), alice); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := todos.DeleteForOwner(ctx, created[2].ID, alice); err != nil {
			t.Fatalf("DeleteForOwner() error = %v", err)
		}
		if err := todos.DeleteForOwner(ctx, created[2].ID, alice); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
	})
}

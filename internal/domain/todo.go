package domain

import "time"

// Todo is an owner-scoped resource record.
type Todo struct {
	ID        string
	OwnerID   string
	Text      string
	Done      bool
	CreatedAt time.Time
}

// TodoPatch carries a partial update; nil fields are left untouched.
type TodoPatch struct {
	Text *string
	Done *bool
}

// Apply writes the set fields onto todo.
func (p TodoPatch) Apply(todo *Todo) {
	if p.Text != nil {
		todo.Text = *p.Text
	}
	if p.Done != nil {
		todo.Done = *p.Done
	}
}

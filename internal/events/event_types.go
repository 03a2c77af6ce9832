package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventTodoCreated    EventType = "todo_created"
	EventTodoUpdated    EventType = "todo_updated"
	EventTodoDeleted    EventType = "todo_deleted"
)

// Event represents a domain event emitted by services. Events carry ids only,
// never credentials or record contents.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	SubjectID  string    `json:"subject_id"`
	ResourceID string    `json:"resource_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

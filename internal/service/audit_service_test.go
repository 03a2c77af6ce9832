package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/todo-service/internal/events"
)

func TestAuditService_LogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:         "evt-1",
		Type:       events.EventTodoDeleted,
		SubjectID:  "user-1",
		ResourceID: "todo-1",
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	entries := logs.FilterMessage("audit").All()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != "todo_deleted" || fields["resource_id"] != "todo-1" || fields["subject_id"] != "user-1" {
		t.Errorf("fields = %v", fields)
	}
}

func TestAuditService_NilDispatcher(t *testing.T) {
	NewAuditService(nil, zap.NewNop()).RegisterHandlers()
}

package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainError(t *testing.T) {
	conflict := NewConflict("email_taken", "email already registered")

	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"domain error passes through", conflict, "email_taken", http.StatusConflict},
		{"wrapped domain error", fmt.Errorf("register: %w", conflict), "email_taken", http.StatusConflict},
		{"unknown error is internal", errors.New("connection refused"), "internal_error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.HTTPStatus != tt.wantStatus {
				t.Errorf("status = %d, want %d", got.HTTPStatus, tt.wantStatus)
			}
		})
	}

	if ToDomainError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestInternalErrorBodyHidesCause(t *testing.T) {
	err := NewInternalError(errors.New("pq: password authentication failed for user app"))
	body := err.Body()
	if len(body) != 1 || body["error"] != "internal_error" {
		t.Fatalf("body = %v, want only the error code", body)
	}
	if !errors.Is(err, err.Err) {
		t.Error("expected cause to stay reachable through Unwrap")
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status   int
		wantCode string
	}{
		{http.StatusNotFound, "not_found"},
		{http.StatusMethodNotAllowed, "method_not_allowed"},
		{http.StatusRequestEntityTooLarge, "bad_request"},
		{http.StatusTooManyRequests, "rate_limited"},
		{http.StatusBadGateway, "internal_error"},
	}
	for _, tt := range tests {
		got := FromStatus(tt.status, nil)
		if got.Code != tt.wantCode {
			t.Errorf("FromStatus(%d).Code = %q, want %q", tt.status, got.Code, tt.wantCode)
		}
	}
}

package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

type countingRecorder struct {
	n atomic.Int64
}

func (r *countingRecorder) RecordRateLimited() { r.n.Add(1) }

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func headerKey(c *fiber.Ctx) string {
	return c.Get("X-Client")
}

func newLimitedApp(l *Limiter, calls *int) *fiber.App {
	app := fiber.New()
	app.Use(l.Handle)
	app.Get("/health", func(c *fiber.Ctx) error {
		*calls++
		return c.SendString("ok")
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, client string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Client", client)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	return resp
}

func TestLimiter_RejectsOverCapAndResetsAfterWindow(t *testing.T) {
	clock := newTestClock()
	recorder := &countingRecorder{}
	l := New(NewMemoryStore(WithClock(clock.Now)), 120, time.Minute, nil,
		WithKeyFunc(headerKey), WithRecorder(recorder))

	calls := 0
	app := newLimitedApp(l, &calls)

	for i := 1; i <= 120; i++ {
		resp := doRequest(t, app, "10.0.0.1")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, resp.StatusCode)
		}
	}

	resp := doRequest(t, app, "10.0.0.1")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("request 121: status = %d, want 429", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "rate_limited" {
		t.Errorf("body = %v, want rate_limited", body)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if got := resp.Header.Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
	if calls != 120 {
		t.Errorf("handler calls = %d, want 120", calls)
	}
	if recorder.n.Load() != 1 {
		t.Errorf("recorded rejections = %d, want 1", recorder.n.Load())
	}

	if resp := doRequest(t, app, "10.0.0.2"); resp.StatusCode != http.StatusOK {
		t.Errorf("other client status = %d, want 200", resp.StatusCode)
	}

	clock.Advance(time.Minute + time.Second)
	if resp := doRequest(t, app, "10.0.0.1"); resp.StatusCode != http.StatusOK {
		t.Errorf("after window status = %d, want 200", resp.StatusCode)
	}
}

func TestLimiter_AllowIsExactUnderConcurrency(t *testing.T) {
	l := New(NewMemoryStore(), 120, time.Hour, nil)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 300; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(context.Background(), "ip:1.2.3.4").Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if allowed.Load() != 120 {
		t.Errorf("allowed = %d, want 120", allowed.Load())
	}
}

func TestLimiter_FailsOpenOnStoreError(t *testing.T) {
	l := New(failingStore{}, 1, time.Minute, nil, WithKeyFunc(headerKey))
	calls := 0
	app := newLimitedApp(l, &calls)

	for i := 0; i < 3; i++ {
		if resp := doRequest(t, app, "c"); resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
	}
}

func TestLimiter_DisabledWhenLimitIsZero(t *testing.T) {
	l := New(failingStore{}, 0, time.Minute, nil)
	if d := l.Allow(context.Background(), "k"); !d.Allowed {
		t.Error("expected zero limit to allow everything")
	}
}

func TestRemoteAddrKey(t *testing.T) {
	app := fiber.New()
	var key string
	app.Get("/", func(c *fiber.Ctx) error {
		key = RemoteAddrKey(c)
		return nil
	})
	if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if len(key) <= len("ip:") || key[:3] != "ip:" {
		t.Errorf("key = %q, want ip:<addr>", key)
	}
}

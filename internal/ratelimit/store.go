package ratelimit

import (
	"context"
	"sync"
	"time"
)

// WindowStore counts hits per key inside fixed windows.
type WindowStore interface {
	// Hit records one request for key and returns the number of requests
	// seen in the current window, including this one, and when the window ends.
	Hit(ctx context.Context, key string, window time.Duration) (count int, windowEnd time.Time, err error)
}

type rateWindow struct {
	count int
	start time.Time
	end   time.Time
}

// MemoryStore keeps windows in process memory. Stale windows are replaced on
// the next hit for their key; StartSweeper additionally drops idle keys.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	now     func() time.Time

	stopCh chan struct{}
	once   sync.Once
}

// MemoryOption customises a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]*rateWindow),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hit implements WindowStore.
func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.After(w.end) {
		w = &rateWindow{start: now, end: now.Add(window)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.end, nil
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// StartSweeper drops expired windows every interval until Close is called.
func (s *MemoryStore) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Sweep removes every window that has ended.
func (s *MemoryStore) Sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, w := range s.windows {
		if now.After(w.end) {
			delete(s.windows, key)
		}
	}
}

// Close stops the sweeper.
func (s *MemoryStore) Close() {
	s.once.Do(func() {
		close(s.stopCh)
	})
}

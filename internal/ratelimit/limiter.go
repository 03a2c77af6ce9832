package ratelimit

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed bool
	Count   int
	Limit   int
	ResetAt time.Time
}

// Remaining returns how many requests are left in the window.
func (d Decision) Remaining() int {
	if d.Count >= d.Limit {
		return 0
	}
	return d.Limit - d.Count
}

// Recorder is notified about rejected requests.
type Recorder interface {
	RecordRateLimited()
}

// KeyFunc derives the client key for a request.
type KeyFunc func(c *fiber.Ctx) string

// Limiter is a fixed-window request limiter.
type Limiter struct {
	store    WindowStore
	limit    int
	window   time.Duration
	logger   *zap.Logger
	recorder Recorder
	keyFn    KeyFunc
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithRecorder reports rejections to r.
func WithRecorder(r Recorder) Option {
	return func(l *Limiter) {
		l.recorder = r
	}
}

// WithKeyFunc overrides the default remote address key.
func WithKeyFunc(fn KeyFunc) Option {
	return func(l *Limiter) {
		l.keyFn = fn
	}
}

// New builds a limiter allowing limit requests per window per key.
func New(store WindowStore, limit int, window time.Duration, logger *zap.Logger, opts ...Option) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
		keyFn:  RemoteAddrKey,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow counts a request for key. Store failures fail open.
func (l *Limiter) Allow(ctx context.Context, key string) Decision {
	if l.limit <= 0 {
		return Decision{Allowed: true}
	}
	count, resetAt, err := l.store.Hit(ctx, key, l.window)
	if err != nil {
		l.logger.Error("rate limit store failure", zap.Error(err))
		return Decision{Allowed: true, Limit: l.limit}
	}
	return Decision{
		Allowed: count <= l.limit,
		Count:   count,
		Limit:   l.limit,
		ResetAt: resetAt,
	}
}

// Handle rejects requests over the limit with 429 before any later handler runs.
func (l *Limiter) Handle(c *fiber.Ctx) error {
	key := l.keyFn(c)
	decision := l.Allow(c.UserContext(), key)

	if decision.Limit > 0 {
		c.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining()))
		if !decision.ResetAt.IsZero() {
			c.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		}
	}
	if decision.Allowed {
		return c.Next()
	}

	if l.recorder != nil {
		l.recorder.RecordRateLimited()
	}
	l.logger.Warn("rate limit exceeded",
		zap.String("key", key),
		zap.String("path", c.Path()),
		zap.Int("count", decision.Count),
	)

	retryAfter := int(math.Ceil(time.Until(decision.ResetAt).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))

	rejected := apperrors.NewRateLimited()
	return c.Status(rejected.HTTPStatus).JSON(rejected.Body())
}

// RemoteAddrKey keys requests by client IP.
func RemoteAddrKey(c *fiber.Ctx) string {
	ip := c.IP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

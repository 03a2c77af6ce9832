package observability

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

const (
	requestIDKey = "request_id"
	unmatchedKey = "route_unmatched"

	// UnmatchedRoute labels requests that hit no registered route.
	UnmatchedRoute = "unmatched"
)

// RequestLogger times every request, records it in metrics and writes one log line.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		} else {
			requestID = strings.Clone(requestID)
		}
		c.Locals(requestIDKey, requestID)
		c.Set(fiber.HeaderXRequestID, requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFromError(err)
		}
		duration := time.Since(start)
		method := strings.Clone(c.Method())
		route := RouteLabel(c)

		metrics.RecordRequest(method, route, status, duration)
		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("route", route),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
		return err
	}
}

// MarkUnmatched flags the request as not matching any route.
func MarkUnmatched(c *fiber.Ctx) {
	c.Locals(unmatchedKey, true)
}

// RouteLabel returns the matched route template, keeping label cardinality
// bounded for parameterised paths.
func RouteLabel(c *fiber.Ctx) string {
	if unmatched, _ := c.Locals(unmatchedKey).(bool); unmatched {
		return UnmatchedRoute
	}
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return UnmatchedRoute
}

// RequestID returns the id assigned by RequestLogger.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

func statusFromError(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return apperrors.ToDomainError(err).HTTPStatus
}

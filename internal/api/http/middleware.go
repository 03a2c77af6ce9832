package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/todo-service/internal/observability"
	"github.com/spec-kit/todo-service/internal/ratelimit"
	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches the global pipeline. Order is fixed: rate
// limiting, instrumentation, error mapping, request timeout. Route-level
// middleware such as the auth gate runs after all of them.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, limiter *ratelimit.Limiter, timeout time.Duration) {
	if limiter != nil {
		app.Use(limiter.Handle)
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("request_id", observability.RequestID(c)),
				)
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed",
						zap.Error(domainErr),
						zap.String("request_id", observability.RequestID(c)),
					)
				}
				c.Status(domainErr.HTTPStatus)
				err = c.JSON(domainErr.Body())
			}
		}()
		return c.Next()
	}
}

// errorHandler is the fiber fallback for errors that escape the pipeline.
func errorHandler(c *fiber.Ctx, err error) error {
	domainErr := toDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(domainErr.Body())
}

func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.FromStatus(fiberErr.Code, err)
	}
	return apperrors.ToDomainError(err)
}

// notFound terminates requests no route matched.
func notFound(c *fiber.Ctx) error {
	observability.MarkUnmatched(c)
	return fiber.ErrNotFound
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/todo-service/internal/api/http/handlers"
	"github.com/spec-kit/todo-service/internal/auth"
	"github.com/spec-kit/todo-service/internal/config"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Todos          *handlers.TodosHandler
	Metrics        fiber.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// NewApp builds the fiber application with the service error mapping.
func NewApp(cfg config.AppConfig) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               cfg.Name,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
}

// RegisterRoutes wires HTTP routes. It must run after RegisterMiddlewares and
// registers the catch-all for unmatched paths last.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/error", cfg.Health.Boom)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	// The gate is attached per route so a rejected request is still labelled
	// with its route template.
	gate := cfg.AuthMiddleware.Handle
	app.Get("/todos", gate, cfg.Todos.List)
	app.Post("/todos", gate, cfg.Todos.Create)
	app.Put("/todos/:id", gate, cfg.Todos.Update)
	app.Delete("/todos/:id", gate, cfg.Todos.Delete)

	app.Use(notFound)
}

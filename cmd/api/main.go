package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/todo-service/internal/api/http"
	"github.com/spec-kit/todo-service/internal/api/http/handlers"
	"github.com/spec-kit/todo-service/internal/auth"
	"github.com/spec-kit/todo-service/internal/config"
	"github.com/spec-kit/todo-service/internal/events"
	"github.com/spec-kit/todo-service/internal/observability"
	"github.com/spec-kit/todo-service/internal/persistence"
	"github.com/spec-kit/todo-service/internal/ratelimit"
	"github.com/spec-kit/todo-service/internal/repository"
	"github.com/spec-kit/todo-service/internal/service"
	"github.com/spec-kit/todo-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.UsesDevSecret() {
		logger.Warn("AUTH_JWT_SECRET not set; signing tokens with the development secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var (
		userRepo repository.UserRepository
		todoRepo repository.TodoRepository
	)
	if pg.Configured() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		todoRepo = repository.NewTodoRepository(pg.PoolHandle())
	} else {
		userRepo = repository.NewMemoryUserRepository()
		todoRepo = repository.NewMemoryTodoRepository()
	}

	metrics := observability.NewMetrics(nil)

	var (
		redis       *persistence.Redis
		windowStore ratelimit.WindowStore
	)
	switch cfg.RateLimit.Backend {
	case config.RateLimitBackendRedis:
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		windowStore = ratelimit.NewRedisStore(redis.Client, "")
	default:
		memoryStore := ratelimit.NewMemoryStore()
		memoryStore.StartSweeper(cfg.RateLimit.SweepInterval())
		defer memoryStore.Close()
		windowStore = memoryStore
	}
	limiter := ratelimit.New(windowStore, cfg.RateLimit.Requests, cfg.RateLimit.Window(), logger,
		ratelimit.WithRecorder(metrics),
	)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	todoService := service.NewTodoService(service.TodoDependencies{
		TodoRepo:   todoRepo,
		Counter:    metrics,
		Dispatcher: dispatcher,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	app := httptransport.NewApp(cfg.App)
	httptransport.RegisterMiddlewares(app, logger, metrics, limiter, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Todos:          handlers.NewTodosHandler(todoService),
		Metrics:        metrics.Handler(),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

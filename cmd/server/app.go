package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	apiMiddleware "github.com/mkarpov/todoevo/internal/api/middleware"
	"github.com/mkarpov/todoevo/internal/breaker"
	"github.com/mkarpov/todoevo/internal/config"
	"github.com/mkarpov/todoevo/internal/platform/postgres"
	"github.com/mkarpov/todoevo/internal/platform/resilience"
	"github.com/mkarpov/todoevo/internal/service"
	"github.com/mkarpov/todoevo/internal/service/auth"
	"github.com/mkarpov/todoevo/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores, wrapped by the circuit breaker decorators.
	userStore store.UserStore
	taskStore store.TaskStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	taskService      *service.TaskService

	// Persistence circuit breaker shared by both stores.
	circuitBreaker *breaker.Breaker

	// Per-route rate limiters, stopped on shutdown.
	rateLimiters []*apiMiddleware.RateLimiter
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) *application {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.circuitBreaker = breaker.New(
		cfg.Breaker.FailureThreshold,
		time.Duration(cfg.Breaker.CooldownSeconds)*time.Second,
	)

	app.userStore = resilience.NewUserStore(
		postgres.NewPostgresUserStore(db, logger, cfg.Auth.BcryptCost),
		app.circuitBreaker,
	)
	app.taskStore = resilience.NewTaskStore(
		postgres.NewPostgresTaskStore(db, logger),
		app.circuitBreaker,
	)

	app.taskService = service.NewTaskService(app.taskStore, logger)

	return app
}

// initAuth sets up the JWT service and password verifier. Kept separate from
// newApplication because it can fail on a missing or short signing secret.
func (app *application) initAuth() error {
	jwtService, err := auth.NewJWTService(app.config.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.jwtService = jwtService
	app.passwordVerifier = auth.NewBcryptVerifier()

	app.logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", app.config.Auth.TokenLifetimeMinutes)
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	if err := app.initAuth(); err != nil {
		return err
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	for _, rl := range app.rateLimiters {
		rl.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

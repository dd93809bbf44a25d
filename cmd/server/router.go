package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkarpov/todoevo/internal/api"
	apiMiddleware "github.com/mkarpov/todoevo/internal/api/middleware"
	"github.com/mkarpov/todoevo/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	taskHandler := api.NewTaskHandler(app.taskService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	authLimiter := apiMiddleware.NewRateLimiter(app.config.RateLimit.AuthPerMinute)
	taskLimiter := apiMiddleware.NewRateLimiter(app.config.RateLimit.TasksPerMinute)
	app.rateLimiters = append(app.rateLimiters, authLimiter, taskLimiter)

	// Authentication endpoints. Signup and login are public; the rest
	// require a valid bearer token.
	r.Route("/auth", func(r chi.Router) {
		r.Use(authLimiter.Limit)

		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/me", authHandler.Me)
			r.Put("/profile", authHandler.UpdateProfile)
		})
	})

	// Task endpoints, all scoped to the authenticated user.
	r.Route("/tasks", func(r chi.Router) {
		r.Use(taskLimiter.Limit)
		r.Use(authMiddleware.Authenticate)

		r.Post("/", taskHandler.Create)
		r.Get("/", taskHandler.List)
		r.Get("/{id}", taskHandler.Get)
		r.Put("/{id}", taskHandler.Update)
		r.Patch("/{id}", taskHandler.Update)
		r.Patch("/{id}/complete", taskHandler.ToggleComplete)
		r.Delete("/{id}", taskHandler.Delete)
	})

	// Liveness check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	// Readiness check, including database connectivity.
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "database": "ok"}
		code := http.StatusOK
		if err := app.db.PingContext(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
		shared.RespondWithJSON(w, r, code, status)
	})

	return r
}

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mkarpov/todoevo/internal/api/shared"
	"github.com/mkarpov/todoevo/internal/breaker"
	"github.com/mkarpov/todoevo/internal/domain"
	"github.com/mkarpov/todoevo/internal/platform/logger"
	"github.com/mkarpov/todoevo/internal/store"
)

// respondServiceError translates errors surfaced by services and stores
// into HTTP responses. Not-found covers both nonexistent and not-owned
// resources; an open circuit becomes 503 without leaking store details.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, breaker.ErrOpen):
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable")
	case store.IsNotFoundError(err):
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
	case store.IsDuplicateError(err):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Email already registered")
	case domain.IsValidationError(err):
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
	default:
		log := logger.FromContext(r.Context())
		log.Error("unhandled service error",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

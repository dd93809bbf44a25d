// Package resilience wraps store implementations with a circuit breaker so
// a failing database cannot compound load. The wrapped stores pass results
// and errors through unchanged; when the circuit is open, calls fail fast
// with breaker.ErrOpen without touching the underlying store.
//
// Only genuine store failures count against the breaker. Expected business
// outcomes such as not-found, duplicate email or validation errors are
// propagated to the caller but recorded as successful calls, since the
// database answered them just fine.
package resilience

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mkarpov/todoevo/internal/breaker"
	"github.com/mkarpov/todoevo/internal/domain"
	"github.com/mkarpov/todoevo/internal/store"
)

// businessOutcome reports whether err is an expected answer rather than a
// downstream failure.
func businessOutcome(err error) bool {
	if err == nil {
		return true
	}
	if store.IsNotFoundError(err) || store.IsDuplicateError(err) {
		return true
	}
	if errors.Is(err, store.ErrInvalidEntity) {
		return true
	}
	// Domain validation sentinels surfaced by the stores.
	return domain.IsValidationError(err)
}

// guard runs op under the breaker, counting only non-business errors as
// failures. It returns ErrOpen when the circuit rejects the call, and the
// operation's own error otherwise.
func guard(ctx context.Context, cb *breaker.Breaker, op func(ctx context.Context) error) error {
	var opErr error
	err := cb.Execute(ctx, func(ctx context.Context) error {
		opErr = op(ctx)
		if businessOutcome(opErr) {
			return nil
		}
		return opErr
	})
	if err != nil && opErr == nil {
		// The circuit rejected the call; op never ran.
		return err
	}
	return opErr
}

// TaskStore decorates a store.TaskStore with a circuit breaker.
type TaskStore struct {
	inner store.TaskStore
	cb    *breaker.Breaker
}

// NewTaskStore wraps the given task store with the given breaker. The
// breaker is typically shared with the user store so the circuit reflects
// the health of the one database behind both.
func NewTaskStore(inner store.TaskStore, cb *breaker.Breaker) *TaskStore {
	return &TaskStore{inner: inner, cb: cb}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	return guard(ctx, s.cb, func(ctx context.Context) error {
		return s.inner.Create(ctx, task)
	})
}

// List implements store.TaskStore.List
func (s *TaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.Task, int, error) {
	var tasks []*domain.Task
	var total int
	err := guard(ctx, s.cb, func(ctx context.Context) error {
		var opErr error
		tasks, total, opErr = s.inner.List(ctx, ownerID, offset, limit)
		return opErr
	})
	return tasks, total, err
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id int64, ownerID uuid.UUID) (*domain.Task, error) {
	var task *domain.Task
	err := guard(ctx, s.cb, func(ctx context.Context) error {
		var opErr error
		task, opErr = s.inner.GetByID(ctx, id, ownerID)
		return opErr
	})
	return task, err
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	var task *domain.Task
	err := guard(ctx, s.cb, func(ctx context.Context) error {
		var opErr error
		task, opErr = s.inner.Update(ctx, id, ownerID, patch)
		return opErr
	})
	return task, err
}

// ToggleCompletion implements store.TaskStore.ToggleCompletion
func (s *TaskStore) ToggleCompletion(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
) (*domain.Task, error) {
	var task *domain.Task
	err := guard(ctx, s.cb, func(ctx context.Context) error {
		var opErr error
		task, opErr = s.inner.ToggleCompletion(ctx, id, ownerID)
		return opErr
	})
	return task, err
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, id int64, ownerID uuid.UUID) error {
	return guard(ctx, s.cb, func(ctx context.Context) error {
		return s.inner.Delete(ctx, id, ownerID)
	})
}

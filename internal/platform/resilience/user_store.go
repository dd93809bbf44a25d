package resilience

import (
	"context"

	"github.com/google/uuid"
	"github.com/mkarpov/todoevo/internal/breaker"
	"github.com/mkarpov/todoevo/internal/domain"
	"github.com/mkarpov/todoevo/internal/store"
)

// UserStore decorates a store.UserStore with a circuit breaker.
type UserStore struct {
	inner store.UserStore
	cb    *breaker.Breaker
}

// NewUserStore wraps the given user store with the given breaker.
func NewUserStore(inner store.UserStore, cb *breaker.Breaker) *UserStore {
	return &UserStore{inner: inner, cb: cb}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	return guard(ctx, s.cb, func(ctx context.Context) error {
		return s.inner.Create(ctx, user)
	})
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user *domain.User
	err := guard(ctx, s.cb, func(ctx context.Context) error {
		var opErr error
		user, opErr = s.inner.GetByID(ctx, id)
		return opErr
	})
	return user, err
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := guard(ctx, s.cb, func(ctx context.Context) error {
		var opErr error
		user, opErr = s.inner.GetByEmail(ctx, email)
		return opErr
	})
	return user, err
}

// Update implements store.UserStore.Update
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	return guard(ctx, s.cb, func(ctx context.Context) error {
		return s.inner.Update(ctx, user)
	})
}

// Delete implements store.UserStore.Delete
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return guard(ctx, s.cb, func(ctx context.Context) error {
		return s.inner.Delete(ctx, id)
	})
}

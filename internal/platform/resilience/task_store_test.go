package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpov/todoevo/internal/breaker"
	"github.com/mkarpov/todoevo/internal/domain"
	"github.com/mkarpov/todoevo/internal/platform/resilience"
	"github.com/mkarpov/todoevo/internal/store"
)

var errConnRefused = errors.New("connection refused")

// flakyTaskStore fails every call with the configured error until healed.
type flakyTaskStore struct {
	err   error
	calls int
}

func (f *flakyTaskStore) outcome() error {
	f.calls++
	return f.err
}

func (f *flakyTaskStore) Create(ctx context.Context, task *domain.Task) error {
	return f.outcome()
}

func (f *flakyTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.Task, int, error) {
	return nil, 0, f.outcome()
}

func (f *flakyTaskStore) GetByID(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
) (*domain.Task, error) {
	if err := f.outcome(); err != nil {
		return nil, err
	}
	return &domain.Task{ID: id, UserID: ownerID, Title: "ok"}, nil
}

func (f *flakyTaskStore) Update(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if err := f.outcome(); err != nil {
		return nil, err
	}
	return &domain.Task{ID: id, UserID: ownerID}, nil
}

func (f *flakyTaskStore) ToggleCompletion(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
) (*domain.Task, error) {
	if err := f.outcome(); err != nil {
		return nil, err
	}
	return &domain.Task{ID: id, UserID: ownerID, Completed: true}, nil
}

func (f *flakyTaskStore) Delete(ctx context.Context, id int64, ownerID uuid.UUID) error {
	return f.outcome()
}

func TestTaskStore_OpensOnRepeatedStoreFailures(t *testing.T) {
	inner := &flakyTaskStore{err: errConnRefused}
	cb := breaker.New(3, time.Minute)
	s := resilience.NewTaskStore(inner, cb)
	ctx := context.Background()
	owner := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := s.GetByID(ctx, 1, owner)
		require.ErrorIs(t, err, errConnRefused)
	}
	assert.Equal(t, breaker.StateOpen, cb.State())

	// The next call fails fast without reaching the store.
	callsBefore := inner.calls
	_, err := s.GetByID(ctx, 1, owner)
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.Equal(t, callsBefore, inner.calls)
}

func TestTaskStore_BusinessOutcomesDoNotTrip(t *testing.T) {
	inner := &flakyTaskStore{err: store.ErrTaskNotFound}
	cb := breaker.New(3, time.Minute)
	s := resilience.NewTaskStore(inner, cb)
	ctx := context.Background()
	owner := uuid.New()

	// Far more not-found answers than the threshold. The caller still sees
	// every one of them, but the circuit stays closed.
	for i := 0; i < 10; i++ {
		_, err := s.GetByID(ctx, 1, owner)
		require.ErrorIs(t, err, store.ErrTaskNotFound)
	}
	assert.Equal(t, breaker.StateClosed, cb.State())
	assert.Zero(t, cb.Failures())
}

func TestTaskStore_ValidationErrorsDoNotTrip(t *testing.T) {
	inner := &flakyTaskStore{err: domain.ErrEmptyTaskTitle}
	cb := breaker.New(2, time.Minute)
	s := resilience.NewTaskStore(inner, cb)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := s.Create(ctx, &domain.Task{})
		require.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
	}
	assert.Equal(t, breaker.StateClosed, cb.State())
}

func TestTaskStore_RecoversAfterCooldown(t *testing.T) {
	inner := &flakyTaskStore{err: errConnRefused}
	cb := breaker.New(2, 10*time.Millisecond)
	s := resilience.NewTaskStore(inner, cb)
	ctx := context.Background()
	owner := uuid.New()

	for i := 0; i < 2; i++ {
		_, err := s.GetByID(ctx, 1, owner)
		require.ErrorIs(t, err, errConnRefused)
	}
	require.Equal(t, breaker.StateOpen, cb.State())

	inner.err = nil
	time.Sleep(20 * time.Millisecond)

	task, err := s.GetByID(ctx, 1, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, breaker.StateClosed, cb.State())
}

func TestTaskStore_ResultsPassThrough(t *testing.T) {
	inner := &flakyTaskStore{}
	cb := breaker.New(2, time.Minute)
	s := resilience.NewTaskStore(inner, cb)
	ctx := context.Background()
	owner := uuid.New()

	task, err := s.ToggleCompletion(ctx, 7, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(7), task.ID)
	assert.True(t, task.Completed)
}

func TestSharedBreakerCoversBothStores(t *testing.T) {
	tasks := &flakyTaskStore{err: errConnRefused}
	users := &flakyUserStore{err: errConnRefused}
	cb := breaker.New(3, time.Minute)
	taskStore := resilience.NewTaskStore(tasks, cb)
	userStore := resilience.NewUserStore(users, cb)
	ctx := context.Background()

	// Failures on either store count against the one shared circuit.
	_, err := taskStore.GetByID(ctx, 1, uuid.New())
	require.ErrorIs(t, err, errConnRefused)
	_, err = userStore.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, errConnRefused)
	_, err = taskStore.GetByID(ctx, 1, uuid.New())
	require.ErrorIs(t, err, errConnRefused)

	require.Equal(t, breaker.StateOpen, cb.State())

	_, err = userStore.GetByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, breaker.ErrOpen)
	_, err = taskStore.GetByID(ctx, 1, uuid.New())
	assert.ErrorIs(t, err, breaker.ErrOpen)
}

// flakyUserStore mirrors flakyTaskStore for the user side.
type flakyUserStore struct {
	err   error
	calls int
}

func (f *flakyUserStore) outcome() error {
	f.calls++
	return f.err
}

func (f *flakyUserStore) Create(ctx context.Context, user *domain.User) error {
	return f.outcome()
}

func (f *flakyUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := f.outcome(); err != nil {
		return nil, err
	}
	return &domain.User{ID: id}, nil
}

func (f *flakyUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := f.outcome(); err != nil {
		return nil, err
	}
	return &domain.User{Email: email}, nil
}

func (f *flakyUserStore) Update(ctx context.Context, user *domain.User) error {
	return f.outcome()
}

func (f *flakyUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return f.outcome()
}

func TestUserStore_DuplicateEmailDoesNotTrip(t *testing.T) {
	inner := &flakyUserStore{err: store.ErrEmailExists}
	cb := breaker.New(2, time.Minute)
	s := resilience.NewUserStore(inner, cb)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := s.Create(ctx, &domain.User{})
		require.ErrorIs(t, err, store.ErrEmailExists)
	}
	assert.Equal(t, breaker.StateClosed, cb.State())
}

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkarpov/todoevo/internal/domain"
	"github.com/mkarpov/todoevo/internal/store"
)

// MemoryTaskStore implements the store.TaskStore interface with an
// in-memory slice. Task IDs are sequential, mirroring the database's
// bigserial column. A mutex makes the store safe for the concurrent
// handlers in tests; the console variant is single-threaded and simply
// never contends for it.
type MemoryTaskStore struct {
	mu     sync.Mutex
	tasks  []*domain.Task
	nextID int64
}

// NewMemoryTaskStore creates an empty in-memory task store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{nextID: 1}
}

// Ensure MemoryTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*MemoryTaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.nextID
	s.nextID++

	// Store a copy so later mutations by the caller don't leak in.
	stored := *task
	s.tasks = append(s.tasks, &stored)
	return nil
}

// List implements store.TaskStore.List
func (s *MemoryTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.Task, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit > store.MaxPageSize {
		limit = store.MaxPageSize
	}
	if limit < 0 {
		limit = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []*domain.Task
	for _, t := range s.tasks {
		if t.UserID == ownerID {
			owned = append(owned, t)
		}
	}
	total := len(owned)

	if offset >= total {
		return []*domain.Task{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]*domain.Task, 0, end-offset)
	for _, t := range owned[offset:end] {
		cp := *t
		page = append(page, &cp)
	}
	return page, total, nil
}

// GetByID implements store.TaskStore.GetByID
func (s *MemoryTaskStore) GetByID(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(id, ownerID)
	if t == nil {
		return nil, store.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

// Update implements store.TaskStore.Update
func (s *MemoryTaskStore) Update(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(id, ownerID)
	if t == nil {
		return nil, store.ErrTaskNotFound
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	t.UpdatedAt = time.Now().UTC()

	cp := *t
	return &cp, nil
}

// ToggleCompletion implements store.TaskStore.ToggleCompletion
func (s *MemoryTaskStore) ToggleCompletion(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(id, ownerID)
	if t == nil {
		return nil, store.ErrTaskNotFound
	}

	t.Completed = !t.Completed
	t.UpdatedAt = time.Now().UTC()

	cp := *t
	return &cp, nil
}

// Delete implements store.TaskStore.Delete
func (s *MemoryTaskStore) Delete(ctx context.Context, id int64, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID == id && t.UserID == ownerID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return store.ErrTaskNotFound
}

// DeleteByOwner removes every task owned by the given user. It mirrors the
// ON DELETE CASCADE behavior of the tasks table and is called by the user
// store when a user is deleted.
func (s *MemoryTaskStore) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.UserID != ownerID {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
}

// find returns the task matching both id and owner, or nil. Ownership
// mismatch and absence are indistinguishable to callers.
func (s *MemoryTaskStore) find(id int64, ownerID uuid.UUID) *domain.Task {
	for _, t := range s.tasks {
		if t.ID == id && t.UserID == ownerID {
			return t
		}
	}
	return nil
}

package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkarpov/todoevo/internal/domain"
	"github.com/mkarpov/todoevo/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// MemoryUserStore implements the store.UserStore interface with an
// in-memory map, hashing passwords with bcrypt exactly like the postgres
// implementation. Intended for tests.
type MemoryUserStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*domain.User
	bcryptCost int

	// tasks, when set, receives cascading deletes so removing a user also
	// removes their tasks.
	tasks *MemoryTaskStore
}

// NewMemoryUserStore creates an empty in-memory user store. An out-of-range
// bcrypt cost falls back to bcrypt.DefaultCost. The task store may be nil
// when cascade behavior is not needed.
func NewMemoryUserStore(bcryptCost int, tasks *MemoryTaskStore) *MemoryUserStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &MemoryUserStore{
		users:      make(map[uuid.UUID]*domain.User),
		bcryptCost: bcryptCost,
		tasks:      tasks,
	}
}

// Ensure MemoryUserStore implements store.UserStore interface
var _ store.UserStore = (*MemoryUserStore)(nil)

// Create implements store.UserStore.Create
func (s *MemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByEmail(user.Email) != nil {
		return store.ErrEmailExists
	}

	user.HashedPassword = string(hashed)
	user.Password = ""

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *MemoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findByEmail(email)
	if u == nil {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// Update implements store.UserStore.Update
func (s *MemoryUserStore) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	var hashed string
	if user.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			return err
		}
		hashed = string(h)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}

	if other := s.findByEmail(user.Email); other != nil && other.ID != user.ID {
		return store.ErrEmailExists
	}

	existing.Email = user.Email
	existing.Name = user.Name
	if hashed != "" {
		existing.HashedPassword = hashed
	}
	existing.UpdatedAt = time.Now().UTC()

	user.Password = ""
	user.HashedPassword = existing.HashedPassword
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

// Delete implements store.UserStore.Delete
func (s *MemoryUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.users[id]; !ok {
		s.mu.Unlock()
		return store.ErrUserNotFound
	}
	delete(s.users, id)
	s.mu.Unlock()

	if s.tasks != nil {
		s.tasks.DeleteByOwner(ctx, id)
	}
	return nil
}

// findByEmail must be called with the mutex held.
func (s *MemoryUserStore) findByEmail(email string) *domain.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

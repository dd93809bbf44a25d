// Package service contains the thin business-rule layer between transport
// and persistence. Services validate input and orchestrate store calls;
// ownership enforcement lives entirely in the stores.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/mkarpov/todoevo/internal/domain"
	"github.com/mkarpov/todoevo/internal/store"
)

// TaskService validates task fields and delegates to the task store. It
// performs no authorization logic of its own; the store's user scoping is
// the single place ownership is enforced.
type TaskService struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService. If logger is nil, a default
// logger will be used.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_service")),
	}
}

// Create validates the fields and stores a new task for the owner. A task
// may be created already completed.
func (s *TaskService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	title, description string,
	completed bool,
) (*domain.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrEmptyTaskTitle
	}

	task, err := domain.NewTask(ownerID, title, description)
	if err != nil {
		return nil, err
	}
	task.Completed = completed

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns a page of the owner's tasks and the owner's total task count.
func (s *TaskService) List(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.Task, int, error) {
	return s.tasks.List(ctx, ownerID, offset, limit)
}

// Get returns a single task scoped to the owner.
func (s *TaskService) Get(ctx context.Context, id int64, ownerID uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id, ownerID)
}

// Update applies a partial update to a task scoped to the owner. An empty
// patch is a no-op that still verifies the task exists.
func (s *TaskService) Update(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, domain.ErrEmptyTaskTitle
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if patch.IsZero() {
		return s.tasks.GetByID(ctx, id, ownerID)
	}
	return s.tasks.Update(ctx, id, ownerID, patch)
}

// ToggleCompletion flips a task's completed flag, scoped to the owner.
func (s *TaskService) ToggleCompletion(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
) (*domain.Task, error) {
	return s.tasks.ToggleCompletion(ctx, id, ownerID)
}

// Delete removes a task scoped to the owner.
func (s *TaskService) Delete(ctx context.Context, id int64, ownerID uuid.UUID) error {
	return s.tasks.Delete(ctx, id, ownerID)
}

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/mkarpov/todoevo/internal/domain"
)

// MaxPageSize is the hard upper bound on the number of tasks returned by a
// single List call. Caller-supplied limits above it are clamped, never
// rejected.
const MaxPageSize = 100

// TaskStore defines the interface for task data persistence.
//
// Every operation that takes both a task ID and an owner ID enforces the
// user-scoping contract: the result is observably identical whether the
// task does not exist or exists under a different owner. Implementations
// MUST return ErrTaskNotFound in both cases and never a distinct
// "forbidden" outcome.
type TaskStore interface {
	// Create saves a new task to the store, assigning its sequential ID.
	// The task's UserID must already be set to the owner.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// List returns the owner's tasks in insertion order along with the
	// total number of tasks the owner has. The limit is clamped to
	// MaxPageSize; a limit of zero yields an empty page with the correct
	// total. A negative offset is treated as zero.
	List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*domain.Task, int, error)

	// GetByID retrieves a task by ID, scoped to the owner.
	// Returns ErrTaskNotFound if the task does not exist or is not owned
	// by ownerID.
	GetByID(ctx context.Context, id int64, ownerID uuid.UUID) (*domain.Task, error)

	// Update applies the non-nil fields of patch to the task and refreshes
	// its update timestamp, scoped to the owner. Returns the updated task,
	// or ErrTaskNotFound under the same rule as GetByID.
	Update(ctx context.Context, id int64, ownerID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// ToggleCompletion flips the task's completed flag in place, scoped to
	// the owner. Returns the updated task, or ErrTaskNotFound under the
	// same rule as GetByID.
	ToggleCompletion(ctx context.Context, id int64, ownerID uuid.UUID) (*domain.Task, error)

	// Delete removes the task, scoped to the owner.
	// Returns ErrTaskNotFound under the same rule as GetByID.
	Delete(ctx context.Context, id int64, ownerID uuid.UUID) error
}

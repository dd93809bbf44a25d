package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task validation errors
var (
	ErrEmptyTaskTitle         = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong       = errors.New("task title must be at most 200 characters long")
	ErrTaskDescriptionTooLong = errors.New("task description must be at most 1000 characters long")
	ErrEmptyTaskOwner         = errors.New("task owner cannot be empty")
)

// Task field length bounds.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Task represents a single todo item. Every task is owned by exactly one
// user; all reads and writes go through operations scoped to that owner.
type Task struct {
	ID          int64     `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user. The ID is zero until
// the store assigns one. Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, title, description string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskOwner
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if len([]rune(t.Title)) > MaxTitleLength {
		return ErrTaskTitleTooLong
	}
	if len([]rune(t.Description)) > MaxDescriptionLength {
		return ErrTaskDescriptionTooLong
	}
	return nil
}

// TaskPatch describes a partial update to a task. Nil fields mean "leave
// unchanged"; the store applies only the fields that are set.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// IsZero reports whether the patch carries no changes.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Validate checks the fields that are present in the patch.
func (p TaskPatch) Validate() error {
	if p.Title != nil {
		if *p.Title == "" {
			return ErrEmptyTaskTitle
		}
		if len([]rune(*p.Title)) > MaxTitleLength {
			return ErrTaskTitleTooLong
		}
	}
	if p.Description != nil && len([]rune(*p.Description)) > MaxDescriptionLength {
		return ErrTaskDescriptionTooLong
	}
	return nil
}

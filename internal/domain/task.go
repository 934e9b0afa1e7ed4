package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Task
var (
	ErrEmptyTaskAccountID   = errors.New("task account ID cannot be empty")
	ErrEmptyTaskTitle       = errors.New("task title cannot be empty")
	ErrEmptyTaskDescription = errors.New("task description cannot be empty")
)

// Task is a unit of work owned by an account.
//
// Active is true from creation until the task is marked done. Deletion is
// logical: DeletedAt is stamped and the task disappears from every read.
type Task struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"account_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

// NewTask creates an active Task with a fresh ID.
func NewTask(accountID, title, description string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Title:       title,
		Description: description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.AccountID == "" {
		return ErrEmptyTaskAccountID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if t.Description == "" {
		return ErrEmptyTaskDescription
	}
	return nil
}

// IsDone reports whether the task has been marked done.
func (t *Task) IsDone() bool {
	return !t.Active
}

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Comment
var (
	ErrEmptyCommentAccountID = errors.New("comment account ID cannot be empty")
	ErrEmptyCommentTaskID    = errors.New("comment task ID cannot be empty")
	ErrEmptyCommentContent   = errors.New("comment content cannot be empty")
)

// Comment is a note attached to a task. Comments are deleted physically.
type Comment struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	TaskID    string    `json:"task_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewComment creates a Comment on taskID with a fresh ID.
func NewComment(accountID, taskID, content string) (*Comment, error) {
	now := time.Now().UTC()
	comment := &Comment{
		ID:        uuid.NewString(),
		AccountID: accountID,
		TaskID:    taskID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
func (c *Comment) Validate() error {
	if c.AccountID == "" {
		return ErrEmptyCommentAccountID
	}
	if c.TaskID == "" {
		return ErrEmptyCommentTaskID
	}
	if c.Content == "" {
		return ErrEmptyCommentContent
	}
	return nil
}

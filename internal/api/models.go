package api

import (
	"time"

	"github.com/phrazzld/tasker-api/internal/domain"
)

// TaskActionMarkAsDone is the PATCH action that completes a task.
const TaskActionMarkAsDone = "mark_as_done"

// CreateAccountRequest defines the payload for account registration.
type CreateAccountRequest struct {
	Username  string `json:"username"   validate:"required,max=64"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=128"`
	LastName  string `json:"last_name"  validate:"max=128"`
}

// AccessTokenRequest defines the payload for the login endpoint.
type AccessTokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AccountResponse is the public view of an account. It never carries the
// password hash.
type AccountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccessTokenResponse is returned by a successful login.
type AccessTokenResponse struct {
	AccountID string `json:"account_id"`
	Token     string `json:"token"`
	// ExpiresAt is the ISO 8601 timestamp when the token expires
	ExpiresAt string `json:"expires_at"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
}

// PatchTaskRequest is either a full update of title and description or an
// action such as {"action": "mark_as_done"}.
type PatchTaskRequest struct {
	Action      string `json:"action"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTaskRequest is the update form of PatchTaskRequest.
type UpdateTaskRequest struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
}

// TaskResponse is the API view of a task.
type TaskResponse struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"account_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CommentRequest defines the payload for creating or updating a comment.
type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// CommentResponse is the API view of a comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	TaskID    string    `json:"task_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaginatedResponse is one page of a listing.
type PaginatedResponse[T any] struct {
	Items            []T                     `json:"items"`
	PaginationParams domain.PaginationParams `json:"pagination_params"`
	TotalCount       int                     `json:"total_count"`
	TotalPages       int                     `json:"total_pages"`
}

func accountToResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Title:       t.Title,
		Description: t.Description,
		Active:      t.Active,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
}

func commentToResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		AccountID: c.AccountID,
		TaskID:    c.TaskID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// toPaginatedResponse converts every item of a service page with convert.
func toPaginatedResponse[D, R any](page domain.PaginationResult[D], convert func(D) R) PaginatedResponse[R] {
	items := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}
	return PaginatedResponse[R]{
		Items:            items,
		PaginationParams: page.PaginationParams,
		TotalCount:       page.TotalCount,
		TotalPages:       page.TotalPages,
	}
}

package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasker-api/internal/domain"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
var (
	// ErrNotFound matches every *NotFoundError.
	// API layer should map this to HTTP 404 Not Found.
	ErrNotFound = errors.New("resource not found")

	// ErrBadRequest matches every *BadRequestError.
	// API layer should map this to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrAccountExists indicates the username is already registered.
	// API layer should map this to HTTP 409 Conflict.
	ErrAccountExists = errors.New("account already exists")

	// ErrInvalidCredentials indicates a login with an unknown username or a
	// wrong password. The two cases are deliberately indistinguishable.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Resource names used in not-found messages.
const (
	ResourceAccount = "Account"
	ResourceTask    = "Task"
	ResourceComment = "Comment"
)

// NotFoundError reports a resource that is absent, deleted, or outside the
// caller's account.
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found.", e.Resource, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// BadRequestError reports malformed caller input. Message is safe to show
// to clients.
type BadRequestError struct {
	Message string
	Err     error
}

// Error implements the error interface for BadRequestError.
func (e *BadRequestError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrBadRequest) true.
func (e *BadRequestError) Is(target error) bool {
	return target == ErrBadRequest
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *BadRequestError) Unwrap() error {
	return e.Err
}

// NewBadRequestError creates a BadRequestError.
func NewBadRequestError(message string, err error) *BadRequestError {
	return &BadRequestError{Message: message, Err: err}
}

// ServiceError wraps unexpected errors from a service with context.
type ServiceError struct {
	// Service is the service that failed (e.g., "task", "comment")
	Service string
	// Operation is the operation that failed (e.g., "create_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// It returns known typed and sentinel errors directly without wrapping.
func NewServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}

	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return notFound
	}
	var badRequest *BadRequestError
	if errors.As(err, &badRequest) {
		return badRequest
	}
	if errors.Is(err, ErrAccountExists) || errors.Is(err, ErrInvalidCredentials) {
		return err
	}

	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// validationError converts a domain validation failure to a BadRequestError
// with a client-facing message.
func validationError(err error) error {
	message := "Invalid request"
	switch {
	case errors.Is(err, domain.ErrEmptyTaskTitle):
		message = "Title is required"
	case errors.Is(err, domain.ErrEmptyTaskDescription):
		message = "Description is required"
	case errors.Is(err, domain.ErrEmptyCommentContent):
		message = "Content is required"
	case errors.Is(err, domain.ErrEmptyUsername):
		message = "Username is required"
	}
	return NewBadRequestError(message, err)
}

// pageParams re-derives params from page and size so a caller-built offset
// is never trusted.
func pageParams(params domain.PaginationParams) (domain.PaginationParams, error) {
	p, err := domain.NewPaginationParams(params.Page, params.Size)
	if err != nil {
		return p, PaginationError(err, params.Page)
	}
	return p, nil
}

// PaginationError converts a NewPaginationParams failure for page into a
// BadRequestError carrying a client-facing message.
func PaginationError(err error, page int) error {
	switch {
	case errors.Is(err, domain.ErrPageOutOfRange):
		return NewBadRequestError("Page is too large", err)
	case page < 1:
		return NewBadRequestError("Page must be greater than 0", err)
	default:
		return NewBadRequestError("Size must be greater than 0", err)
	}
}

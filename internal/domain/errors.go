package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidPagination is returned when page or size is below 1.
	ErrInvalidPagination = errors.New("invalid pagination parameters")

	// ErrPageOutOfRange is returned when page and size describe an offset
	// that does not fit in an int.
	ErrPageOutOfRange = fmt.Errorf("%w: page is too large", ErrInvalidPagination)
)

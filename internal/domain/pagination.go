package domain

import (
	"fmt"
	"math"
	"time"
)

// Default pagination values used when a caller omits page or size.
const (
	DefaultPage = 1
	DefaultSize = 10
)

// PaginationParams describes one page of a listing. Offset is always derived
// from Page and Size; build values with NewPaginationParams.
type PaginationParams struct {
	Page   int `json:"page"`
	Size   int `json:"size"`
	Offset int `json:"offset"`
}

// NewPaginationParams returns params for page and size with the offset
// filled in. It returns ErrInvalidPagination if page or size is below 1,
// and ErrPageOutOfRange if the offset would overflow.
func NewPaginationParams(page, size int) (PaginationParams, error) {
	if page < 1 {
		return PaginationParams{}, fmt.Errorf("%w: page must be greater than 0", ErrInvalidPagination)
	}
	if size < 1 {
		return PaginationParams{}, fmt.Errorf("%w: size must be greater than 0", ErrInvalidPagination)
	}
	if page-1 > math.MaxInt/size {
		return PaginationParams{}, ErrPageOutOfRange
	}
	return PaginationParams{Page: page, Size: size, Offset: (page - 1) * size}, nil
}

// DefaultPaginationParams is page 1 of size 10.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Page: DefaultPage, Size: DefaultSize, Offset: 0}
}

// PageQuery is the store query produced for a page request.
type PageQuery struct {
	Offset int
	Limit  int
	// Filter narrows a boolean attribute; nil means no filtering.
	Filter *bool
}

// ComputeQuery converts a page request into an offset/limit query.
// A nil filter matches every resource.
func ComputeQuery(page, size int, filter *bool) (PageQuery, error) {
	params, err := NewPaginationParams(page, size)
	if err != nil {
		return PageQuery{}, err
	}
	return PageQuery{Offset: params.Offset, Limit: params.Size, Filter: filter}, nil
}

// PaginationResult is one page of items plus the size of the whole
// filtered set.
type PaginationResult[T any] struct {
	Items            []T              `json:"items"`
	PaginationParams PaginationParams `json:"pagination_params"`
	TotalCount       int              `json:"total_count"`
	TotalPages       int              `json:"total_pages"`
}

// NewPaginationResult builds a result and derives TotalPages. A nil items
// slice is replaced by an empty one so it encodes as [].
func NewPaginationResult[T any](items []T, params PaginationParams, totalCount int) PaginationResult[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if params.Size > 0 {
		totalPages = totalCount / params.Size
		if totalCount%params.Size != 0 {
			totalPages++
		}
	}
	return PaginationResult[T]{
		Items:            items,
		PaginationParams: params,
		TotalCount:       totalCount,
		TotalPages:       totalPages,
	}
}

// DeletionResult reports a successful delete.
type DeletionResult struct {
	ID        string    `json:"id"`
	Success   bool      `json:"success"`
	DeletedAt time.Time `json:"deleted_at"`
}

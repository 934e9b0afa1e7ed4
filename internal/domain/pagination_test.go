package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeQuery(t *testing.T) {
	active := true

	tests := []struct {
		name       string
		page, size int
		filter     *bool
		wantOffset int
	}{
		{name: "first page", page: 1, size: 10, wantOffset: 0},
		{name: "second page", page: 2, size: 10, wantOffset: 10},
		{name: "size one", page: 7, size: 1, wantOffset: 6},
		{name: "with filter", page: 3, size: 25, filter: &active, wantOffset: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ComputeQuery(tt.page, tt.size, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOffset, q.Offset)
			assert.Equal(t, (tt.page-1)*tt.size, q.Offset)
			assert.Equal(t, tt.size, q.Limit)
			assert.Equal(t, tt.filter, q.Filter)
		})
	}
}

func TestComputeQueryRejectsInvalidInput(t *testing.T) {
	for _, tc := range []struct{ page, size int }{{0, 10}, {1, 0}, {-1, 5}, {3, -2}} {
		_, err := ComputeQuery(tc.page, tc.size, nil)
		assert.ErrorIs(t, err, ErrInvalidPagination, "page=%d size=%d", tc.page, tc.size)
	}
}

func TestNewPaginationParamsOverflow(t *testing.T) {
	tests := []struct {
		name string
		page int
		size int
	}{
		{name: "offset_wraps_negative", page: math.MaxInt/4 + 2, size: 4},
		{name: "max_page", page: math.MaxInt, size: 2},
		{name: "max_size_third_page", page: 3, size: math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPaginationParams(tt.page, tt.size)
			assert.ErrorIs(t, err, ErrPageOutOfRange)
			assert.ErrorIs(t, err, ErrInvalidPagination)
		})
	}

	t.Run("largest_offset_fits", func(t *testing.T) {
		p, err := NewPaginationParams(math.MaxInt, 1)
		require.NoError(t, err)
		assert.Equal(t, math.MaxInt-1, p.Offset)
		assert.GreaterOrEqual(t, p.Offset, 0)
	})

	t.Run("single_page_of_max_size", func(t *testing.T) {
		p, err := NewPaginationParams(1, math.MaxInt)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Offset)
		assert.Equal(t, 1, NewPaginationResult([]int{1, 2, 3}, p, 3).TotalPages)
	})
}

func TestNewPaginationResult(t *testing.T) {
	params, err := NewPaginationParams(2, 3)
	require.NoError(t, err)

	result := NewPaginationResult([]string{"d", "e", "f"}, params, 8)
	assert.Equal(t, 3, result.PaginationParams.Offset)
	assert.Equal(t, 8, result.TotalCount)
	assert.Equal(t, 3, result.TotalPages)

	empty := NewPaginationResult[string](nil, params, 0)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}

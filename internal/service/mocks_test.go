package service

import (
	"context"

	"github.com/phrazzld/tasker-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockDocumentStore mocks store.DocumentStore for failure paths the
// in-memory store cannot produce.
type MockDocumentStore[T any] struct {
	mock.Mock
}

func (m *MockDocumentStore[T]) Insert(ctx context.Context, id string, doc *T) error {
	args := m.Called(ctx, id, doc)
	return args.Error(0)
}

func (m *MockDocumentStore[T]) FindOne(ctx context.Context, filter store.Filter) (*T, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockDocumentStore[T]) Find(
	ctx context.Context,
	filter store.Filter,
	opts store.FindOptions,
) ([]*T, int, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*T), args.Int(1), args.Error(2)
}

func (m *MockDocumentStore[T]) UpdateOne(ctx context.Context, filter store.Filter, set store.Update) (*T, error) {
	args := m.Called(ctx, filter, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockDocumentStore[T]) DeleteOne(ctx context.Context, filter store.Filter) error {
	args := m.Called(ctx, filter)
	return args.Error(0)
}

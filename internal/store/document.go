package store

import "context"

// Collection names.
const (
	CollectionAccounts = "accounts"
	CollectionTasks    = "tasks"
	CollectionComments = "comments"
)

// Filter selects documents by equality on top-level JSON fields. A nil
// value matches a field that is present and null.
type Filter map[string]any

// Update lists top-level JSON fields to overwrite.
type Update map[string]any

// FindOptions bounds a Find. A Limit of 0 means no limit.
type FindOptions struct {
	Offset int
	Limit  int
}

// DocumentStore persists documents of type T in a single collection.
// Every method that touches one document is atomic for that document;
// nothing spans documents.
type DocumentStore[T any] interface {
	// Insert stores doc under id.
	// Returns ErrDuplicate if the ID is already taken.
	Insert(ctx context.Context, id string, doc *T) error

	// FindOne returns the earliest inserted document matching filter.
	// Returns ErrNotFound if nothing matches.
	FindOne(ctx context.Context, filter Filter) (*T, error)

	// Find returns documents matching filter in insertion order, windowed
	// by opts, together with the number of matching documents overall.
	// Returns an empty slice, not an error, when nothing matches.
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]*T, int, error)

	// UpdateOne overwrites the fields in set on the first document matching
	// filter and returns the updated document.
	// Returns ErrNotFound if nothing matches.
	UpdateOne(ctx context.Context, filter Filter, set Update) (*T, error)

	// DeleteOne physically removes the first document matching filter.
	// Returns ErrNotFound if nothing matches.
	DeleteOne(ctx context.Context, filter Filter) error
}

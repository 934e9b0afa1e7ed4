package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/phrazzld/tasker-api/internal/store"
)

// entry keeps the raw JSON of a document, decoded once for filtering.
type entry struct {
	id     string
	raw    []byte
	fields map[string]any
}

// DocumentStore is a mutex-guarded, insertion-ordered collection of JSON
// documents. Documents are copied through JSON on the way in and out, so
// callers never share memory with the store.
type DocumentStore[T any] struct {
	collection string

	mu      sync.RWMutex
	entries []*entry
}

// Ensure DocumentStore implements store.DocumentStore.
var _ store.DocumentStore[struct{}] = (*DocumentStore[struct{}])(nil)

// NewDocumentStore creates an empty collection.
func NewDocumentStore[T any](collection string) *DocumentStore[T] {
	return &DocumentStore[T]{collection: collection}
}

// Insert implements store.DocumentStore.Insert.
func (s *DocumentStore[T]) Insert(ctx context.Context, id string, doc *T) error {
	e, err := s.encode(id, doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entries {
		if existing.id == id {
			return fmt.Errorf("%w: %s %s", store.ErrDuplicate, s.collection, id)
		}
	}
	s.entries = append(s.entries, e)
	return nil
}

// FindOne implements store.DocumentStore.FindOne.
func (s *DocumentStore[T]) FindOne(ctx context.Context, filter store.Filter) (*T, error) {
	want, err := normalize(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if matches(e.fields, want) {
			return s.decode(e.raw)
		}
	}
	return nil, store.ErrNotFound
}

// Find implements store.DocumentStore.Find.
func (s *DocumentStore[T]) Find(
	ctx context.Context,
	filter store.Filter,
	opts store.FindOptions,
) ([]*T, int, error) {
	want, err := normalize(filter)
	if err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []*T{}
	total := 0
	for _, e := range s.entries {
		if !matches(e.fields, want) {
			continue
		}
		total++
		if total <= opts.Offset {
			continue
		}
		if opts.Limit > 0 && len(items) >= opts.Limit {
			continue
		}
		doc, err := s.decode(e.raw)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, doc)
	}
	return items, total, nil
}

// UpdateOne implements store.DocumentStore.UpdateOne.
func (s *DocumentStore[T]) UpdateOne(
	ctx context.Context,
	filter store.Filter,
	set store.Update,
) (*T, error) {
	want, err := normalize(filter)
	if err != nil {
		return nil, err
	}
	patch, err := normalize(store.Filter(set))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if !matches(e.fields, want) {
			continue
		}

		merged := make(map[string]any, len(e.fields)+len(patch))
		for k, v := range e.fields {
			merged[k] = v
		}
		for k, v := range patch {
			merged[k] = v
		}

		raw, err := json.Marshal(merged)
		if err != nil {
			return nil, store.NewStoreError(s.collection, "update", "failed to encode document", err)
		}
		doc, err := s.decode(raw)
		if err != nil {
			return nil, err
		}

		// Re-encode through T so unknown fields in set are dropped.
		updated, err := s.encode(e.id, doc)
		if err != nil {
			return nil, err
		}
		*e = *updated
		return doc, nil
	}
	return nil, store.ErrNotFound
}

// DeleteOne implements store.DocumentStore.DeleteOne.
func (s *DocumentStore[T]) DeleteOne(ctx context.Context, filter store.Filter) error {
	want, err := normalize(filter)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if matches(e.fields, want) {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// Len returns the number of stored documents.
func (s *DocumentStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *DocumentStore[T]) encode(id string, doc *T) (*entry, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: document is not a JSON object: %v", store.ErrInvalidEntity, err)
	}
	return &entry{id: id, raw: raw, fields: fields}, nil
}

func (s *DocumentStore[T]) decode(raw []byte) (*T, error) {
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, store.NewStoreError(s.collection, "decode", "failed to decode document", err)
	}
	return &doc, nil
}

// normalize round-trips a filter through JSON so its values compare equal
// to decoded document fields (numbers as float64, times as strings).
func normalize(filter store.Filter) (map[string]any, error) {
	if len(filter) == 0 {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidFilter, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidFilter, err)
	}
	return out, nil
}

func matches(fields, want map[string]any) bool {
	for k, v := range want {
		got, ok := fields[k]
		if !ok || !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}

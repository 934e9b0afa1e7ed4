package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

const (
	insertDocumentQuery = `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $4)`

	findOneDocumentQuery = `
		SELECT data FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY seq
		LIMIT 1`

	countDocumentsQuery = `
		SELECT count(*) FROM documents
		WHERE collection = $1 AND data @> $2::jsonb`

	findDocumentsQuery = `
		SELECT data, count(*) OVER () FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY seq
		LIMIT $3 OFFSET $4`

	updateDocumentQuery = `
		UPDATE documents SET data = data || $3::jsonb, updated_at = $4
		WHERE seq = (
			SELECT seq FROM documents
			WHERE collection = $1 AND data @> $2::jsonb
			ORDER BY seq
			LIMIT 1
			FOR UPDATE
		)
		RETURNING data`

	deleteDocumentQuery = `
		DELETE FROM documents
		WHERE seq = (
			SELECT seq FROM documents
			WHERE collection = $1 AND data @> $2::jsonb
			ORDER BY seq
			LIMIT 1
			FOR UPDATE
		)`
)

// DocumentStore implements store.DocumentStore for one collection of the
// documents table.
type DocumentStore[T any] struct {
	db         store.DBTX
	collection string
	logger     *slog.Logger
}

// Ensure DocumentStore implements store.DocumentStore.
var _ store.DocumentStore[struct{}] = (*DocumentStore[struct{}])(nil)

// NewDocumentStore creates a store bound to collection. The caller owns db.
// If logger is nil, a default logger will be used.
func NewDocumentStore[T any](db store.DBTX, collection string, logger *slog.Logger) *DocumentStore[T] {
	if db == nil {
		panic("db cannot be nil")
	}
	if collection == "" {
		panic("collection cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DocumentStore[T]{
		db:         db,
		collection: collection,
		logger: logger.With(
			slog.String("component", "document_store"),
			slog.String("collection", collection),
		),
	}
}

// Insert implements store.DocumentStore.Insert.
func (s *DocumentStore[T]) Insert(ctx context.Context, id string, doc *T) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if doc == nil {
		return store.NewStoreError(s.collection, "insert", "nil document", store.ErrInvalidEntity)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return store.NewStoreError(s.collection, "insert", "failed to encode document", err)
	}

	_, err = s.db.ExecContext(ctx, insertDocumentQuery, s.collection, id, string(data), time.Now().UTC())
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("duplicate document", slog.String("id", id))
			return store.NewStoreError(s.collection, "insert", "document already exists", store.ErrDuplicate)
		}
		log.Error("failed to insert document", slog.String("id", id), slog.String("error", err.Error()))
		return store.NewStoreError(s.collection, "insert", "failed to insert document", MapError(err))
	}

	log.Debug("document inserted", slog.String("id", id))
	return nil
}

// FindOne implements store.DocumentStore.FindOne.
func (s *DocumentStore[T]) FindOne(ctx context.Context, filter store.Filter) (*T, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fjson, err := encodeFilter(filter)
	if err != nil {
		return nil, store.NewStoreError(s.collection, "find_one", "invalid filter", err)
	}

	var data []byte
	err = s.db.QueryRowContext(ctx, findOneDocumentQuery, s.collection, fjson).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Error("failed to find document", slog.String("error", err.Error()))
		return nil, store.NewStoreError(s.collection, "find_one", "query failed", MapError(err))
	}

	return s.decode(data)
}

// Find implements store.DocumentStore.Find. A zero Limit is passed as NULL,
// which PostgreSQL treats as no limit. The total comes from a window count
// over the same statement; only an empty page issues a separate count.
func (s *DocumentStore[T]) Find(
	ctx context.Context,
	filter store.Filter,
	opts store.FindOptions,
) ([]*T, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if opts.Offset < 0 || opts.Limit < 0 {
		return nil, 0, store.NewStoreError(s.collection, "find", "negative offset or limit", store.ErrInvalidFilter)
	}

	fjson, err := encodeFilter(filter)
	if err != nil {
		return nil, 0, store.NewStoreError(s.collection, "find", "invalid filter", err)
	}

	var limit any
	if opts.Limit > 0 {
		limit = opts.Limit
	}

	// Page and window count come from one statement and one snapshot.
	rows, err := s.db.QueryContext(ctx, findDocumentsQuery, s.collection, fjson, limit, opts.Offset)
	if err != nil {
		log.Error("failed to query documents", slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError(s.collection, "find", "query failed", MapError(err))
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	docs := make([]*T, 0)
	var total int
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data, &total); err != nil {
			return nil, 0, store.NewStoreError(s.collection, "find", "scan failed", err)
		}
		doc, err := s.decode(data)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, store.NewStoreError(s.collection, "find", "row iteration failed", err)
	}

	// An empty page carries no window count.
	if len(docs) == 0 {
		if err := s.db.QueryRowContext(ctx, countDocumentsQuery, s.collection, fjson).Scan(&total); err != nil {
			log.Error("failed to count documents", slog.String("error", err.Error()))
			return nil, 0, store.NewStoreError(s.collection, "find", "count failed", MapError(err))
		}
	}

	log.Debug("documents found",
		slog.Int("count", len(docs)),
		slog.Int("total", total),
		slog.Int("offset", opts.Offset),
		slog.Int("limit", opts.Limit))
	return docs, total, nil
}

// UpdateOne implements store.DocumentStore.UpdateOne. The set fields are
// merged into the stored body with the jsonb concatenation operator.
func (s *DocumentStore[T]) UpdateOne(ctx context.Context, filter store.Filter, set store.Update) (*T, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fjson, err := encodeFilter(filter)
	if err != nil {
		return nil, store.NewStoreError(s.collection, "update", "invalid filter", err)
	}
	patch, err := json.Marshal(map[string]any(set))
	if err != nil {
		return nil, store.NewStoreError(s.collection, "update", "failed to encode update", err)
	}
	if set == nil {
		patch = []byte("{}")
	}

	var data []byte
	err = s.db.QueryRowContext(ctx, updateDocumentQuery, s.collection, fjson, string(patch), time.Now().UTC()).
		Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Error("failed to update document", slog.String("error", err.Error()))
		return nil, store.NewStoreError(s.collection, "update", "update failed", MapError(err))
	}

	return s.decode(data)
}

// DeleteOne implements store.DocumentStore.DeleteOne.
func (s *DocumentStore[T]) DeleteOne(ctx context.Context, filter store.Filter) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fjson, err := encodeFilter(filter)
	if err != nil {
		return store.NewStoreError(s.collection, "delete", "invalid filter", err)
	}

	result, err := s.db.ExecContext(ctx, deleteDocumentQuery, s.collection, fjson)
	if err != nil {
		log.Error("failed to delete document", slog.String("error", err.Error()))
		return store.NewStoreError(s.collection, "delete", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, s.collection); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		return store.NewStoreError(s.collection, "delete", "delete failed", err)
	}

	log.Debug("document deleted")
	return nil
}

func (s *DocumentStore[T]) decode(data []byte) (*T, error) {
	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, store.NewStoreError(s.collection, "decode", "corrupt document", err)
	}
	return &doc, nil
}

// encodeFilter renders a filter as a JSON object for the containment operator.
// A nil filter matches every document.
func encodeFilter(filter store.Filter) (string, error) {
	if len(filter) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(filter))
	if err != nil {
		return "", fmt.Errorf("%w: %v", store.ErrInvalidFilter, err)
	}
	return string(b), nil
}

//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests are skipped when no database URL is set.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	"github.com/phrazzld/tasker-api/internal/redact"
)

// URLEnvVar names the variable holding the test database URL.
const URLEnvVar = "TASKER_TEST_DATABASE_URL"

// DatabaseURL returns the test database URL, or "" when none is set.
func DatabaseURL() string {
	if u := os.Getenv(URLEnvVar); u != "" {
		return u
	}
	return os.Getenv("DATABASE_URL")
}

// Open connects to the test database and applies all migrations. The
// connection is closed when the test finishes.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := DatabaseURL()
	if dbURL == "" {
		t.Skipf("%s not set, skipping database test", URLEnvVar)
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		t.Fatalf("open test database: %s", redact.Error(err))
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping test database: %s", redact.Error(err))
	}

	if err := postgres.Migrate(ctx, db, postgres.MigrateUp, nil); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so
// tests leave no rows behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin transaction: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			// ALLOW-PANIC
			panic(r)
		}
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// Package testdb provides utilities specifically for database testing.
// Each test gets its own migrated SQLite database file under the test's
// temporary directory, so tests are isolated by construction and can run
// in parallel.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mnemoapp/mnemo/internal/platform/sqlite"
)

// NewTestDB opens a fresh SQLite database in the test's temporary
// directory with all migrations applied. The database is closed when the
// test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Keep migration chatter out of the test output
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	path := filepath.Join(t.TempDir(), "mnemo_test.db")
	db, err := sqlite.Open(context.Background(), path, quiet)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	return db
}

// WithTx runs the provided function within a database transaction.
// The transaction is automatically rolled back after the function completes,
// ensuring the database is unchanged no matter what the function did.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	// Ensure rollback happens after the function completes or panics
	defer func() {
		if r := recover(); r != nil {
			// If there was a panic, try to roll back the transaction before re-panicking
			rollbackErr := tx.Rollback()
			if rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				t.Logf("Warning: failed to rollback transaction after panic: %v", rollbackErr)
			}
			panic(r)
		}

		// Normal rollback path
		err := tx.Rollback()
		// sql.ErrTxDone is expected if tx is already committed or rolled back
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

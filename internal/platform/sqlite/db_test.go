package sqlite_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mnemoapp/mnemo/internal/platform/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quietLogger returns a logger that discards all output to keep test
// output focused on failures.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tableNames returns the names of all tables in the database.
func tableNames(ctx context.Context, t *testing.T, db *sql.DB) map[string]bool {
	t.Helper()

	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	require.NoError(t, err, "Querying sqlite_master should succeed")
	defer func() {
		require.NoError(t, rows.Close(), "Closing rows should succeed")
	}()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name), "Scanning table name should succeed")
		names[name] = true
	}
	require.NoError(t, rows.Err(), "Iterating table names should succeed")
	return names
}

// TestOpen tests that Open creates the database file, applies migrations,
// and configures the connection.
func TestOpen(t *testing.T) {
	t.Parallel() // Enable parallel testing

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The parent directory does not exist yet; Open must create it.
	path := filepath.Join(t.TempDir(), "data", "mnemo.db")

	db, err := sqlite.Open(ctx, path, quietLogger())
	require.NoError(t, err, "Open should succeed")
	defer func() {
		require.NoError(t, db.Close(), "Closing the database should succeed")
	}()

	t.Run("Database file is created", func(t *testing.T) {
		_, err := os.Stat(path)
		assert.NoError(t, err, "Database file should exist on disk")
	})

	t.Run("Migrations create the schema", func(t *testing.T) {
		tables := tableNames(ctx, t, db)

		assert.True(t, tables["decks"], "decks table should exist")
		assert.True(t, tables["cards"], "cards table should exist")
		assert.True(t, tables["review_states"], "review_states table should exist")
		assert.True(t, tables["schema_migrations"], "migration tracking table should exist")
	})

	t.Run("Foreign key enforcement is on", func(t *testing.T) {
		var enabled int
		err := db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&enabled)
		require.NoError(t, err, "Reading the foreign_keys pragma should succeed")
		assert.Equal(t, 1, enabled, "Foreign keys should be enforced")
	})

	t.Run("Write ahead logging is on", func(t *testing.T) {
		var mode string
		err := db.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode)
		require.NoError(t, err, "Reading the journal_mode pragma should succeed")
		assert.Equal(t, "wal", mode, "Journal mode should be WAL")
	})
}

// TestOpenExistingDatabase tests that reopening a database is idempotent
// and preserves existing data.
func TestOpenExistingDatabase(t *testing.T) {
	t.Parallel() // Enable parallel testing

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	path := filepath.Join(t.TempDir(), "mnemo.db")

	db, err := sqlite.Open(ctx, path, quietLogger())
	require.NoError(t, err, "First open should succeed")

	_, err = db.ExecContext(ctx,
		`INSERT INTO decks (id, name, description, created_ts, updated_ts) VALUES (?, ?, '', 1, 1)`,
		uuid.New().String(), "persistent-deck")
	require.NoError(t, err, "Insert should succeed")
	require.NoError(t, db.Close(), "Closing the database should succeed")

	// Reopening must not fail on already-applied migrations.
	db, err = sqlite.Open(ctx, path, quietLogger())
	require.NoError(t, err, "Second open should succeed")
	defer func() {
		require.NoError(t, db.Close(), "Closing the database should succeed")
	}()

	var count int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decks WHERE name = ?`, "persistent-deck").Scan(&count)
	require.NoError(t, err, "Counting decks should succeed")
	assert.Equal(t, 1, count, "Data should survive a reopen")
}

// TestOpenEmptyPath tests that Open rejects an empty database path.
func TestOpenEmptyPath(t *testing.T) {
	t.Parallel() // Enable parallel testing

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := sqlite.Open(ctx, "", quietLogger())
	require.Error(t, err, "Open should fail for an empty path")
	assert.Nil(t, db, "No database handle should be returned")
	assert.Contains(t, err.Error(), "database path is empty", "Error should explain the problem")
}

// TestOpenNilLogger tests that Open tolerates a nil logger.
func TestOpenNilLogger(t *testing.T) {
	t.Parallel() // Enable parallel testing

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	path := filepath.Join(t.TempDir(), "mnemo.db")

	db, err := sqlite.Open(ctx, path, nil)
	require.NoError(t, err, "Open should succeed with a nil logger")
	require.NoError(t, db.Close(), "Closing the database should succeed")
}

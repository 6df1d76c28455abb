package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// driverName is the database/sql driver name registered by modernc.org/sqlite.
const driverName = "sqlite"

// migrationTableName is the name of the table used by goose to track
// applied migrations.
const migrationTableName = "schema_migrations"

// Open opens the SQLite database at path, creating the file and its parent
// directory if necessary, and applies any pending schema migrations from
// the embedded migration files. The returned handle is ready for use by
// the store implementations in this package.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "sqlite"))

	if path == "" {
		return nil, fmt.Errorf("database path is empty: check your configuration")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// busy_timeout lets a second connection wait out a writer instead of
	// failing, journal_mode(WAL) keeps readers from blocking the writer,
	// and foreign_keys(1) turns on the cascades the schema relies on
	// (SQLite leaves foreign key enforcement off unless asked).
	dsn := path + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer at a time. One connection keeps every
	// statement on it and makes in-process lock contention impossible.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w (check that %s is writable)", err, path)
	}

	log.Debug("database opened", slog.String("path", path))

	if err := migrate(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// migrateMu serializes migrations. The goose configuration below is
// package level state, so concurrent Open calls (tests open a database
// per test) must not interleave.
var migrateMu sync.Mutex

// migrate applies any pending migrations from the embedded filesystem.
func migrate(db *sql.DB, log *slog.Logger) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	startTime := time.Now()

	goose.SetLogger(&slogGooseLogger{log: log})
	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(migrationTableName)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Debug("migrations applied",
		slog.Int64("duration_ms", time.Since(startTime).Milliseconds()))
	return nil
}

// slogGooseLogger adapts the goose logger interface to use slog, keeping
// migration chatter out of the command's stdout.
type slogGooseLogger struct {
	log *slog.Logger
}

// Printf implements the goose.Logger Printf method by forwarding messages to slog
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

// Fatalf implements the goose.Logger Fatalf method by forwarding error messages to slog
// Note: Unlike the standard Fatalf behavior, this does NOT call os.Exit
// so the error can propagate back to the caller for consistent handling
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

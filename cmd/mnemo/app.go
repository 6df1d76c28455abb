package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mnemoapp/mnemo/internal/archive"
	"github.com/mnemoapp/mnemo/internal/config"
	"github.com/mnemoapp/mnemo/internal/domain/srs"
	"github.com/mnemoapp/mnemo/internal/platform/logger"
	"github.com/mnemoapp/mnemo/internal/platform/sqlite"
	"github.com/mnemoapp/mnemo/internal/service"
	"github.com/spf13/cobra"
)

// databaseFile is the SQLite file name inside the data directory.
const databaseFile = "mnemo.db"

// archivesDir is the subdirectory of the data directory holding exported
// deck archives and their backups.
const archivesDir = "archives"

// app bundles the initialized components a command handler needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	svc    service.StudyService
}

// newApp loads configuration, sets up logging, opens the database, and
// wires the study service with its persisted review state. Callers must
// Close the returned app.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Debug("configuration loaded",
		slog.String("data_dir", cfg.Storage.Dir),
		slog.String("log_level", cfg.Logging.Level),
		slog.Int("session_limit", cfg.Study.SessionLimit))

	db, err := sqlite.Open(ctx, filepath.Join(cfg.Storage.Dir, databaseFile), log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	archives, err := archive.NewManager(
		filepath.Join(cfg.Storage.Dir, archivesDir), cfg.Storage.BackupCount, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare archive directory: %w", err)
	}

	svc := service.NewStudyService(
		db,
		sqlite.NewSQLiteDeckStore(db, log),
		sqlite.NewSQLiteCardStore(db, log),
		sqlite.NewSQLiteReviewStateStore(db, log),
		srs.NewEngine(),
		archives,
		cfg.Study.SessionLimit,
		log,
	)

	if err := svc.Load(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load review state: %w", err)
	}

	return &app{cfg: cfg, logger: log, db: db, svc: svc}, nil
}

// Close flushes pending review state and releases the database. It runs on
// a fresh context so an interrupted command still gets its final flush.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.svc.Flush(ctx); err != nil {
		a.logger.Error("failed to flush review state on exit",
			slog.String("error", err.Error()))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database",
			slog.String("error", err.Error()))
	}
}

// runWithApp wraps a command handler with application setup and teardown.
func runWithApp(
	fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd.Context(), a, cmd, args)
	}
}

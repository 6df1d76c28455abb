package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mnemoapp/mnemo/internal/domain/srs"
	"github.com/mnemoapp/mnemo/internal/platform/logger"
	"github.com/mnemoapp/mnemo/internal/store"
)

// SQLiteReviewStateStore implements the store.ReviewStateStore interface
// using a SQLite database as the storage backend. Each row holds one
// card's scheduling state as a JSON document.
type SQLiteReviewStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteReviewStateStore creates a new SQLite implementation of the ReviewStateStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewSQLiteReviewStateStore(db store.DBTX, logger *slog.Logger) *SQLiteReviewStateStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteReviewStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_state_store")),
	}
}

// Ensure SQLiteReviewStateStore implements store.ReviewStateStore interface
var _ store.ReviewStateStore = (*SQLiteReviewStateStore)(nil)

// LoadAll implements store.ReviewStateStore.LoadAll
// It reads every persisted review state row into a snapshot suitable for
// srs.Engine.ImportState. Returns an empty snapshot if no rows exist.
func (s *SQLiteReviewStateStore) LoadAll(ctx context.Context) (srs.Snapshot, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("loading review states")

	query := `
		SELECT card_id, state
		FROM review_states
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query review states", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	snapshot := srs.Snapshot{}
	for rows.Next() {
		var cardID string
		var raw []byte

		if err := rows.Scan(&cardID, &raw); err != nil {
			log.Error("failed to scan review state row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		var state srs.RecordState
		if err := json.Unmarshal(raw, &state); err != nil {
			log.Error("failed to decode review state",
				slog.String("error", err.Error()),
				slog.String("card_id", cardID))
			return nil, fmt.Errorf("failed to decode review state for card %s: %w", cardID, err)
		}

		snapshot[cardID] = &state
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("loaded review states", slog.Int("count", len(snapshot)))
	return snapshot, nil
}

// SaveAll implements store.ReviewStateStore.SaveAll
// It replaces the persisted review state with the given snapshot. The
// caller is responsible for running this within a transaction; see the
// interface documentation.
// Returns store.ErrInvalidEntity if a snapshot entry references a card
// that does not exist (foreign key violation).
func (s *SQLiteReviewStateStore) SaveAll(ctx context.Context, snapshot srs.Snapshot) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM review_states`); err != nil {
		log.Error("failed to clear review states", slog.String("error", err.Error()))
		return MapError(err)
	}

	query := `
		INSERT INTO review_states (card_id, state)
		VALUES (?, ?)
	`

	for cardID, state := range snapshot {
		raw, err := json.Marshal(state)
		if err != nil {
			log.Error("failed to encode review state",
				slog.String("error", err.Error()),
				slog.String("card_id", cardID))
			return fmt.Errorf("failed to encode review state for card %s: %w", cardID, err)
		}

		if _, err := s.db.ExecContext(ctx, query, cardID, raw); err != nil {
			// Check for foreign key violation
			if IsForeignKeyViolation(err) {
				log.Warn("review state references unknown card",
					slog.String("error", err.Error()),
					slog.String("card_id", cardID))
				return fmt.Errorf("%w: card with ID %s not found",
					store.ErrInvalidEntity, cardID)
			}

			log.Error("failed to save review state",
				slog.String("error", err.Error()),
				slog.String("card_id", cardID))
			return MapError(err)
		}
	}

	log.Info("review states saved", slog.Int("count", len(snapshot)))
	return nil
}

// Delete implements store.ReviewStateStore.Delete
// It removes the review state rows for the given card IDs. IDs without a
// row are ignored.
func (s *SQLiteReviewStateStore) Delete(ctx context.Context, cardIDs []string) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cardIDs) == 0 {
		return nil
	}

	query := `DELETE FROM review_states WHERE card_id IN (` + placeholders(len(cardIDs)) + `)`
	args := make([]any, len(cardIDs))
	for i, id := range cardIDs {
		args[i] = id
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to delete review states",
			slog.String("error", err.Error()),
			slog.Int("count", len(cardIDs)))
		return MapError(err)
	}

	log.Debug("deleted review states", slog.Int("count", len(cardIDs)))
	return nil
}

// WithTx implements store.ReviewStateStore.WithTx
// It returns a new ReviewStateStore instance that uses the provided transaction.
func (s *SQLiteReviewStateStore) WithTx(tx *sql.Tx) store.ReviewStateStore {
	return &SQLiteReviewStateStore{
		db:     tx,
		logger: s.logger,
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mnemoapp/mnemo/internal/domain"
	"github.com/mnemoapp/mnemo/internal/platform/logger"
	"github.com/mnemoapp/mnemo/internal/store"
)

// SQLiteDeckStore implements the store.DeckStore interface
// using a SQLite database as the storage backend.
type SQLiteDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteDeckStore creates a new SQLite implementation of the DeckStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewSQLiteDeckStore(db store.DBTX, logger *slog.Logger) *SQLiteDeckStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure SQLiteDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*SQLiteDeckStore)(nil)

// Create implements store.DeckStore.Create
// It saves a new deck to the database, handling domain validation.
// Returns validation errors from the domain Deck if data is invalid.
// Returns store.ErrDeckNameExists if a deck with the same name already exists.
func (s *SQLiteDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate deck data
	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during create",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	query := `
		INSERT INTO decks (id, name, description, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		deck.ID,
		deck.Name,
		deck.Description,
		timeToTs(deck.CreatedAt),
		timeToTs(deck.UpdatedAt),
	)

	if err != nil {
		// The only UNIQUE index on decks besides the primary key is its name
		if IsUniqueViolation(err) {
			log.Warn("deck name already exists",
				slog.String("deck_id", deck.ID.String()),
				slog.String("name", deck.Name))
			return MapUniqueViolation(err, "deck", store.ErrDeckNameExists)
		}

		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return MapError(err)
	}

	log.Info("deck created successfully",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", deck.Name))
	return nil
}

// GetByID implements store.DeckStore.GetByID
// It retrieves a deck by its unique ID.
// Returns store.ErrDeckNotFound if the deck does not exist.
func (s *SQLiteDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving deck by ID", slog.String("deck_id", id.String()))

	query := `
		SELECT id, name, description, created_ts, updated_ts
		FROM decks
		WHERE id = ?
	`

	return s.getDeck(ctx, log, query, id)
}

// GetByName implements store.DeckStore.GetByName
// It retrieves a deck by its exact name.
// Returns store.ErrDeckNotFound if the deck does not exist.
func (s *SQLiteDeckStore) GetByName(ctx context.Context, name string) (*domain.Deck, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving deck by name", slog.String("name", name))

	query := `
		SELECT id, name, description, created_ts, updated_ts
		FROM decks
		WHERE name = ?
	`

	return s.getDeck(ctx, log, query, name)
}

// getDeck runs a single-deck query and maps its result to a domain deck.
func (s *SQLiteDeckStore) getDeck(
	ctx context.Context,
	log *slog.Logger,
	query string,
	arg any,
) (*domain.Deck, error) {
	var deck domain.Deck
	var createdTs, updatedTs int64

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&deck.ID,
		&deck.Name,
		&deck.Description,
		&createdTs,
		&updatedTs,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found")
			return nil, store.ErrDeckNotFound
		}
		log.Error("failed to get deck", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	deck.CreatedAt = tsToTime(createdTs)
	deck.UpdatedAt = tsToTime(updatedTs)

	log.Debug("deck retrieved successfully",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", deck.Name))
	return &deck, nil
}

// List implements store.DeckStore.List
// It retrieves all decks ordered by name.
// Returns an empty slice if no decks exist.
func (s *SQLiteDeckStore) List(ctx context.Context) ([]*domain.Deck, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("listing decks")

	query := `
		SELECT id, name, description, created_ts, updated_ts
		FROM decks
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query decks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var decks []*domain.Deck
	for rows.Next() {
		var deck domain.Deck
		var createdTs, updatedTs int64

		err := rows.Scan(
			&deck.ID,
			&deck.Name,
			&deck.Description,
			&createdTs,
			&updatedTs,
		)
		if err != nil {
			log.Error("failed to scan deck row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		deck.CreatedAt = tsToTime(createdTs)
		deck.UpdatedAt = tsToTime(updatedTs)
		decks = append(decks, &deck)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	// Return empty slice instead of nil if no decks found
	if decks == nil {
		decks = []*domain.Deck{}
	}

	log.Debug("listed decks", slog.Int("count", len(decks)))
	return decks, nil
}

// Update implements store.DeckStore.Update
// It modifies an existing deck's name and description.
// Returns store.ErrDeckNotFound if the deck does not exist.
// Returns store.ErrDeckNameExists if the new name collides with another deck.
func (s *SQLiteDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate deck data
	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during update",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	query := `
		UPDATE decks
		SET name = ?, description = ?, updated_ts = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		deck.Name,
		deck.Description,
		timeToTs(deck.UpdatedAt),
		deck.ID,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("deck name already exists",
				slog.String("deck_id", deck.ID.String()),
				slog.String("name", deck.Name))
			return MapUniqueViolation(err, "deck", store.ErrDeckNameExists)
		}

		log.Error("failed to update deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return MapError(err)
	}

	// Check if a row was actually updated
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	// If no rows were affected, the deck didn't exist
	if rowsAffected == 0 {
		log.Debug("deck not found for update",
			slog.String("deck_id", deck.ID.String()))
		return store.ErrDeckNotFound
	}

	log.Info("deck updated successfully",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", deck.Name))
	return nil
}

// Delete implements store.DeckStore.Delete
// It removes a deck from the database by its ID. The deck's cards and
// their review state rows go with it through ON DELETE CASCADE.
// Returns store.ErrDeckNotFound if the deck does not exist.
func (s *SQLiteDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM decks
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return MapError(err)
	}

	// Check if a row was actually deleted
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return err
	}

	// If no rows were affected, the deck didn't exist
	if rowsAffected == 0 {
		log.Debug("deck not found for delete", slog.String("deck_id", id.String()))
		return store.ErrDeckNotFound
	}

	log.Info("deck deleted successfully", slog.String("deck_id", id.String()))
	return nil
}

// WithTx implements store.DeckStore.WithTx
// It returns a new DeckStore instance that uses the provided transaction.
func (s *SQLiteDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &SQLiteDeckStore{
		db:     tx,
		logger: s.logger,
	}
}

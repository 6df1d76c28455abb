package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/mnemoapp/mnemo/internal/domain"
	"github.com/mnemoapp/mnemo/internal/platform/logger"
	"github.com/mnemoapp/mnemo/internal/store"
)

// cardColumns is the column list shared by every card query, in the order
// scanCard expects.
const cardColumns = `id, deck_id, front, back, category, tags,
		times_studied, correct_answers, incorrect_answers, difficulty_rating,
		last_studied_ts, created_ts, updated_ts`

// SQLiteCardStore implements the store.CardStore interface
// using a SQLite database as the storage backend.
type SQLiteCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteCardStore creates a new SQLite implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewSQLiteCardStore(db store.DBTX, logger *slog.Logger) *SQLiteCardStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure SQLiteCardStore implements store.CardStore interface
var _ store.CardStore = (*SQLiteCardStore)(nil)

// Create implements store.CardStore.Create
// It saves a new card to the database, handling domain validation.
// Returns validation errors from the domain Card if data is invalid.
// Returns store.ErrInvalidEntity if the deck ID doesn't exist (foreign key violation).
func (s *SQLiteCardStore) Create(ctx context.Context, card *domain.Card) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate card data
	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	if err := s.insertCard(ctx, log, card); err != nil {
		return err
	}

	log.Info("card created successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", card.DeckID.String()))
	return nil
}

// CreateMultiple implements store.CardStore.CreateMultiple
// It saves multiple cards to the database.
// All cards are validated before the first insert so an invalid card
// cannot leave earlier ones behind. The caller is responsible for running
// this within a transaction; see the interface documentation.
func (s *SQLiteCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		log.Debug("no cards to create")
		return nil
	}

	// Validate all cards before inserting any
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return err
		}
	}

	for _, card := range cards {
		if err := s.insertCard(ctx, log, card); err != nil {
			return err
		}
	}

	log.Info("cards created successfully", slog.Int("count", len(cards)))
	return nil
}

// insertCard inserts a single already-validated card row.
func (s *SQLiteCardStore) insertCard(ctx context.Context, log *slog.Logger, card *domain.Card) error {
	tags, err := encodeTags(card.Tags)
	if err != nil {
		log.Error("failed to encode card tags",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.DeckID,
		card.Front,
		card.Back,
		card.Category,
		tags,
		card.Stats.TimesStudied,
		card.Stats.CorrectAnswers,
		card.Stats.IncorrectAnswers,
		card.Stats.DifficultyRating,
		timeToTs(card.Stats.LastStudied),
		timeToTs(card.CreatedAt),
		timeToTs(card.UpdatedAt),
	)

	if err != nil {
		// Check for foreign key violation
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during card creation",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()),
				slog.String("deck_id", card.DeckID.String()))
			return fmt.Errorf("%w: deck with ID %s not found",
				store.ErrInvalidEntity, card.DeckID)
		}

		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("deck_id", card.DeckID.String()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.CardStore.GetByID
// It retrieves a card by its unique ID.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *SQLiteCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving card by ID", slog.String("card_id", id.String()))

	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE id = ?
	`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}

	log.Debug("card retrieved successfully", slog.String("card_id", id.String()))
	return card, nil
}

// ListByDeck implements store.CardStore.ListByDeck
// It retrieves all cards in a deck ordered by creation time.
// Returns an empty slice if the deck has no cards.
func (s *SQLiteCardStore) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("listing cards by deck", slog.String("deck_id", deckID.String()))

	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE deck_id = ?
		ORDER BY created_ts, rowid
	`

	return s.queryCards(ctx, log, query, deckID)
}

// ListIDsByDeck implements store.CardStore.ListIDsByDeck
// It retrieves just the IDs of the cards in a deck, ordered by creation time.
func (s *SQLiteCardStore) ListIDsByDeck(ctx context.Context, deckID uuid.UUID) ([]uuid.UUID, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("listing card IDs by deck", slog.String("deck_id", deckID.String()))

	query := `
		SELECT id
		FROM cards
		WHERE deck_id = ?
		ORDER BY created_ts, rowid
	`

	rows, err := s.db.QueryContext(ctx, query, deckID)
	if err != nil {
		log.Error("failed to query card IDs",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, MapError(err)
	}
	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan card ID", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	// Return empty slice instead of nil if the deck has no cards
	if ids == nil {
		ids = []uuid.UUID{}
	}

	log.Debug("listed card IDs",
		slog.String("deck_id", deckID.String()),
		slog.Int("count", len(ids)))
	return ids, nil
}

// Search implements store.CardStore.Search
// It retrieves the cards in a deck whose front, back, category, or tags
// contain the query, matched case-insensitively.
func (s *SQLiteCardStore) Search(ctx context.Context, deckID uuid.UUID, query string) ([]*domain.Card, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("searching cards",
		slog.String("deck_id", deckID.String()),
		slog.String("query", query))

	// LIKE is case-insensitive for ASCII in SQLite. The pattern is escaped
	// so % and _ in the user's query match literally.
	pattern := "%" + escapeLike(query) + "%"

	stmt := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE deck_id = ?
		  AND (front LIKE ? ESCAPE '\'
		   OR back LIKE ? ESCAPE '\'
		   OR category LIKE ? ESCAPE '\'
		   OR tags LIKE ? ESCAPE '\')
		ORDER BY created_ts, rowid
	`

	return s.queryCards(ctx, log, stmt, deckID, pattern, pattern, pattern, pattern)
}

// queryCards runs a multi-card query and maps its rows to domain cards.
func (s *SQLiteCardStore) queryCards(
	ctx context.Context,
	log *slog.Logger,
	query string,
	args ...any,
) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cards", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	// Return empty slice instead of nil if no cards matched
	if cards == nil {
		cards = []*domain.Card{}
	}

	log.Debug("queried cards", slog.Int("count", len(cards)))
	return cards, nil
}

// Update implements store.CardStore.Update
// It modifies an existing card's content, category, tags, and study counters.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *SQLiteCardStore) Update(ctx context.Context, card *domain.Card) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate card data
	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	tags, err := encodeTags(card.Tags)
	if err != nil {
		log.Error("failed to encode card tags",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		UPDATE cards
		SET front = ?, back = ?, category = ?, tags = ?,
			times_studied = ?, correct_answers = ?, incorrect_answers = ?,
			difficulty_rating = ?, last_studied_ts = ?, updated_ts = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		card.Front,
		card.Back,
		card.Category,
		tags,
		card.Stats.TimesStudied,
		card.Stats.CorrectAnswers,
		card.Stats.IncorrectAnswers,
		card.Stats.DifficultyRating,
		timeToTs(card.Stats.LastStudied),
		timeToTs(card.UpdatedAt),
		card.ID,
	)

	if err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	// Check if a row was actually updated
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	// If no rows were affected, the card didn't exist
	if rowsAffected == 0 {
		log.Debug("card not found for update",
			slog.String("card_id", card.ID.String()))
		return store.ErrCardNotFound
	}

	log.Info("card updated successfully", slog.String("card_id", card.ID.String()))
	return nil
}

// Delete implements store.CardStore.Delete
// It removes a card from the database by its ID. The card's review state
// row goes with it through ON DELETE CASCADE; callers are responsible for
// dropping the card from the in-memory review engine.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *SQLiteCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM cards
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}

	// Check if a row was actually deleted
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return err
	}

	// If no rows were affected, the card didn't exist
	if rowsAffected == 0 {
		log.Debug("card not found for delete", slog.String("card_id", id.String()))
		return store.ErrCardNotFound
	}

	log.Info("card deleted successfully", slog.String("card_id", id.String()))
	return nil
}

// WithTx implements store.CardStore.WithTx
// It returns a new CardStore instance that uses the provided transaction.
func (s *SQLiteCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &SQLiteCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts sql.Row and sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCard maps one row in cardColumns order to a domain card.
func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var rawTags string
	var lastStudiedTs, createdTs, updatedTs int64

	err := row.Scan(
		&card.ID,
		&card.DeckID,
		&card.Front,
		&card.Back,
		&card.Category,
		&rawTags,
		&card.Stats.TimesStudied,
		&card.Stats.CorrectAnswers,
		&card.Stats.IncorrectAnswers,
		&card.Stats.DifficultyRating,
		&lastStudiedTs,
		&createdTs,
		&updatedTs,
	)
	if err != nil {
		return nil, err
	}

	tags, err := decodeTags(rawTags)
	if err != nil {
		return nil, err
	}

	card.Tags = tags
	card.Stats.LastStudied = tsToTime(lastStudiedTs)
	card.CreatedAt = tsToTime(createdTs)
	card.UpdatedAt = tsToTime(updatedTs)
	return &card, nil
}

// escapeLike escapes the LIKE wildcards in a user-supplied search query.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

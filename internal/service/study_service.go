package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mnemoapp/mnemo/internal/archive"
	"github.com/mnemoapp/mnemo/internal/domain"
	"github.com/mnemoapp/mnemo/internal/domain/srs"
	"github.com/mnemoapp/mnemo/internal/platform/logger"
	"github.com/mnemoapp/mnemo/internal/store"
)

// Verify interface compliance at compile time
var _ StudyService = (*studyServiceImpl)(nil)

// studyServiceImpl implements the StudyService interface.
type studyServiceImpl struct {
	db           *sql.DB
	decks        store.DeckStore
	cards        store.CardStore
	states       store.ReviewStateStore
	engine       *srs.Engine
	archives     *archive.Manager
	sessionLimit int
	logger       *slog.Logger

	// dirty tracks whether the engine holds scheduling state that has not
	// been written to the database yet.
	dirty atomic.Bool
}

// NewStudyService creates a new StudyService implementation.
// A sessionLimit below one means unlimited session size.
// It panics if any store, the engine, the archive manager, or the database
// handle is nil; a nil logger falls back to slog.Default().
func NewStudyService(
	db *sql.DB,
	decks store.DeckStore,
	cards store.CardStore,
	states store.ReviewStateStore,
	engine *srs.Engine,
	archives *archive.Manager,
	sessionLimit int,
	logger *slog.Logger,
) StudyService {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}
	if decks == nil {
		panic("decks cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if states == nil {
		panic("states cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if archives == nil {
		panic("archives cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &studyServiceImpl{
		db:           db,
		decks:        decks,
		cards:        cards,
		states:       states,
		engine:       engine,
		archives:     archives,
		sessionLimit: sessionLimit,
		logger:       logger.With(slog.String("component", "study_service")),
	}
}

// Load implements StudyService.Load.
func (s *studyServiceImpl) Load(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	snapshot, err := s.states.LoadAll(ctx)
	if err != nil {
		log.Error("failed to read persisted review state",
			slog.String("error", err.Error()))
		return NewStudyServiceError("load_state", "failed to read persisted review state", err)
	}

	if err := s.engine.ImportState(snapshot); err != nil {
		log.Error("persisted review state is invalid",
			slog.String("error", err.Error()))
		return NewStudyServiceError("load_state", "persisted review state is invalid", err)
	}

	log.Debug("review state loaded", slog.Int("card_count", len(snapshot)))
	return nil
}

// Flush implements StudyService.Flush.
func (s *studyServiceImpl) Flush(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !s.dirty.Load() {
		return nil
	}

	// Clear the flag before exporting: a review landing mid-flush re-marks
	// the state dirty and is picked up by the next flush.
	s.dirty.Store(false)

	snapshot := s.engine.ExportState()
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.states.WithTx(tx).SaveAll(ctx, snapshot)
	})
	if err != nil {
		s.dirty.Store(true)
		log.Error("failed to flush review state",
			slog.String("error", err.Error()))
		return NewStudyServiceError("flush_state", "failed to write review state", err)
	}

	log.Debug("review state flushed", slog.Int("card_count", len(snapshot)))
	return nil
}

// CreateDeck implements StudyService.CreateDeck.
func (s *studyServiceImpl) CreateDeck(
	ctx context.Context,
	name, description string,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := domain.NewDeck(name, description)
	if err != nil {
		log.Warn("invalid deck",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("create_deck", "invalid deck", err)
	}

	if err := s.decks.Create(ctx, deck); err != nil {
		if errors.Is(err, store.ErrDeckNameExists) {
			log.Warn("deck name already exists", slog.String("name", name))
			return nil, ErrDeckNameExists
		}
		log.Error("failed to save deck",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("create_deck", "failed to save deck", err)
	}

	log.Info("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", deck.Name))
	return deck, nil
}

// GetDeck implements StudyService.GetDeck.
func (s *studyServiceImpl) GetDeck(ctx context.Context, name string) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	return s.getDeckByName(ctx, log, name)
}

// ListDecks implements StudyService.ListDecks.
func (s *studyServiceImpl) ListDecks(ctx context.Context) ([]*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	decks, err := s.decks.List(ctx)
	if err != nil {
		log.Error("failed to list decks", slog.String("error", err.Error()))
		return nil, NewStudyServiceError("list_decks", "failed to list decks", err)
	}
	return decks, nil
}

// DeleteDeck implements StudyService.DeleteDeck.
func (s *studyServiceImpl) DeleteDeck(ctx context.Context, name string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := s.getDeckByName(ctx, log, name)
	if err != nil {
		return err
	}

	// The deck row cascades to cards and review state rows; the card IDs
	// are collected first so the engine records can be dropped too.
	var cardIDs []uuid.UUID
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		cardIDs, err = s.cards.WithTx(tx).ListIDsByDeck(ctx, deck.ID)
		if err != nil {
			return err
		}
		return s.decks.WithTx(tx).Delete(ctx, deck.ID)
	})
	if err != nil {
		log.Error("failed to delete deck",
			slog.String("deck_id", deck.ID.String()),
			slog.String("error", err.Error()))
		return NewStudyServiceError("delete_deck", "failed to delete deck", mapStoreError(err))
	}

	if len(cardIDs) > 0 {
		ids := make([]string, len(cardIDs))
		for i, id := range cardIDs {
			ids[i] = id.String()
		}
		s.engine.Forget(ids...)
	}

	log.Info("deck deleted",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", deck.Name),
		slog.Int("card_count", len(cardIDs)))
	return nil
}

// AddCard implements StudyService.AddCard.
func (s *studyServiceImpl) AddCard(
	ctx context.Context,
	deckName, front, back, category string,
	tags []string,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := s.getDeckByName(ctx, log, deckName)
	if err != nil {
		return nil, err
	}

	card, err := domain.NewCard(deck.ID, front, back)
	if err != nil {
		log.Warn("invalid card",
			slog.String("deck_id", deck.ID.String()),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("add_card", "invalid card", err)
	}

	if category != "" {
		if err := card.SetCategory(category); err != nil {
			return nil, NewStudyServiceError("add_card", "invalid category", err)
		}
	}
	for _, tag := range tags {
		if err := card.AddTag(tag); err != nil {
			return nil, NewStudyServiceError("add_card", fmt.Sprintf("invalid tag %q", tag), err)
		}
	}

	if err := s.cards.Create(ctx, card); err != nil {
		log.Error("failed to save card",
			slog.String("deck_id", deck.ID.String()),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("add_card", "failed to save card", err)
	}

	log.Info("card added",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deck.ID.String()))
	return card, nil
}

// ListCards implements StudyService.ListCards.
func (s *studyServiceImpl) ListCards(
	ctx context.Context,
	deckName string,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := s.getDeckByName(ctx, log, deckName)
	if err != nil {
		return nil, err
	}

	cards, err := s.cards.ListByDeck(ctx, deck.ID)
	if err != nil {
		log.Error("failed to list cards",
			slog.String("deck_id", deck.ID.String()),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("list_cards", "failed to list cards", err)
	}
	return cards, nil
}

// SearchCards implements StudyService.SearchCards.
func (s *studyServiceImpl) SearchCards(
	ctx context.Context,
	deckName, query string,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := s.getDeckByName(ctx, log, deckName)
	if err != nil {
		return nil, err
	}

	cards, err := s.cards.Search(ctx, deck.ID, query)
	if err != nil {
		log.Error("failed to search cards",
			slog.String("deck_id", deck.ID.String()),
			slog.String("query", query),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("search_cards", "failed to search cards", err)
	}
	return cards, nil
}

// DeleteCard implements StudyService.DeleteCard.
func (s *studyServiceImpl) DeleteCard(ctx context.Context, cardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.cards.Delete(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			log.Warn("card not found for deletion", slog.String("card_id", cardID.String()))
			return ErrCardNotFound
		}
		log.Error("failed to delete card",
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return NewStudyServiceError("delete_card", "failed to delete card", err)
	}

	// The review state row is gone with the card; drop the engine record
	// as well.
	s.engine.Forget(cardID.String())

	log.Info("card deleted", slog.String("card_id", cardID.String()))
	return nil
}

// DueCards implements StudyService.DueCards.
func (s *studyServiceImpl) DueCards(
	ctx context.Context,
	deckName string,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, cards, err := s.deckCards(ctx, log, deckName)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(cards))
	for i, card := range cards {
		ids[i] = card.ID.String()
	}

	dueSet := make(map[string]bool)
	for _, id := range s.engine.DueCards(ids) {
		dueSet[id] = true
	}
	if len(dueSet) == 0 {
		log.Debug("no cards due", slog.String("deck_id", deck.ID.String()))
		return nil, ErrNoCardsDue
	}

	due := make([]*domain.Card, 0, len(dueSet))
	for _, card := range cards {
		if dueSet[card.ID.String()] {
			due = append(due, card)
		}
	}

	if s.sessionLimit > 0 && len(due) > s.sessionLimit {
		log.Debug("session limit applied",
			slog.String("deck_id", deck.ID.String()),
			slog.Int("due", len(due)),
			slog.Int("limit", s.sessionLimit))
		due = due[:s.sessionLimit]
	}

	return due, nil
}

// NextCard implements StudyService.NextCard.
func (s *studyServiceImpl) NextCard(ctx context.Context, deckName string) (*domain.Card, error) {
	due, err := s.DueCards(ctx, deckName)
	if err != nil {
		return nil, err
	}
	return due[0], nil
}

// SubmitReview implements StudyService.SubmitReview.
func (s *studyServiceImpl) SubmitReview(
	ctx context.Context,
	cardID uuid.UUID,
	outcome domain.ReviewOutcome,
	responseSeconds float64,
) (*srs.RecordState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !outcome.Valid() {
		log.Warn("invalid review outcome",
			slog.String("card_id", cardID.String()),
			slog.Int("outcome", int(outcome)))
		return nil, ErrInvalidOutcome
	}

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			log.Warn("card not found for review", slog.String("card_id", cardID.String()))
			return nil, ErrCardNotFound
		}
		log.Error("failed to retrieve card for review",
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("submit_review", "failed to retrieve card", err)
	}

	if err := s.engine.Review(cardID.String(), outcome, responseSeconds); err != nil {
		return nil, NewStudyServiceError("submit_review", "failed to compute schedule", err)
	}
	s.dirty.Store(true)

	card.RecordAnswer(outcome.Successful())

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.cards.WithTx(tx).Update(ctx, card); err != nil {
			return err
		}
		return s.states.WithTx(tx).SaveAll(ctx, s.engine.ExportState())
	})
	if err != nil {
		// The engine has already advanced; the state stays dirty and the
		// next flush retries the write.
		log.Error("failed to persist review",
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("submit_review", "failed to persist review", err)
	}
	s.dirty.Store(false)

	state, ok := s.engine.CardState(cardID.String())
	if !ok {
		return nil, NewStudyServiceError("submit_review", "review state vanished",
			fmt.Errorf("no record for card %s", cardID))
	}

	log.Info("review recorded",
		slog.String("card_id", cardID.String()),
		slog.String("outcome", outcome.String()),
		slog.Float64("ease_factor", state.EaseFactor),
		slog.Int("interval_days", state.Interval))
	return state, nil
}

// DeckProgress implements StudyService.DeckProgress.
func (s *studyServiceImpl) DeckProgress(
	ctx context.Context,
	deckName string,
) (*DeckProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, cards, err := s.deckCards(ctx, log, deckName)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(cards))
	for i, card := range cards {
		ids[i] = card.ID.String()
	}

	return &DeckProgress{
		Deck:      deck,
		CardStats: domain.ComputeDeckStats(cards),
		Review:    s.engine.Stats(ids),
	}, nil
}

// ExportDeck implements StudyService.ExportDeck.
func (s *studyServiceImpl) ExportDeck(
	ctx context.Context,
	deckName, jsonPath string,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, cards, err := s.deckCards(ctx, log, deckName)
	if err != nil {
		return "", err
	}

	a := archive.New(deck, cards, s.engine.ExportState())

	if jsonPath != "" {
		if err := s.archives.ExportJSON(ctx, a, jsonPath); err != nil {
			return "", NewStudyServiceError("export_deck", "failed to write JSON export", err)
		}
		return jsonPath, nil
	}

	path, err := s.archives.Save(ctx, a, "")
	if err != nil {
		return "", NewStudyServiceError("export_deck", "failed to save archive", err)
	}
	return path, nil
}

// ImportDeck implements StudyService.ImportDeck.
func (s *studyServiceImpl) ImportDeck(ctx context.Context, path string) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	a, err := s.archives.Load(ctx, path)
	if err != nil {
		return nil, NewStudyServiceError("import_deck", "failed to load archive", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.decks.WithTx(tx).Create(ctx, a.Deck); err != nil {
			return mapStoreError(err)
		}
		if len(a.Cards) == 0 {
			return nil
		}
		return s.cards.WithTx(tx).CreateMultiple(ctx, a.Cards)
	})
	if err != nil {
		if errors.Is(err, ErrDeckNameExists) {
			log.Warn("archived deck already exists",
				slog.String("name", a.Deck.Name),
				slog.String("path", path))
			return nil, ErrDeckNameExists
		}
		log.Error("failed to store archived deck",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("import_deck", "failed to store archived deck", err)
	}

	if len(a.Review) > 0 {
		if err := s.engine.ImportState(a.Review); err != nil {
			// The cards are in; they just start with a fresh schedule.
			log.Warn("archived review states rejected",
				slog.String("path", path),
				slog.String("error", err.Error()))
		} else {
			s.dirty.Store(true)
		}
	}
	if err := s.Flush(ctx); err != nil {
		// The imported schedule stays in the engine and is retried by the
		// autosave worker or the exit flush.
		log.Error("failed to persist imported review state",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}

	log.Info("deck imported",
		slog.String("deck_id", a.Deck.ID.String()),
		slog.String("name", a.Deck.Name),
		slog.String("path", path),
		slog.Int("card_count", len(a.Cards)))
	return a.Deck, nil
}

// ListArchives implements StudyService.ListArchives.
func (s *studyServiceImpl) ListArchives(ctx context.Context) ([]archive.Info, error) {
	infos, err := s.archives.List(ctx)
	if err != nil {
		return nil, NewStudyServiceError("list_archives", "failed to list archives", err)
	}
	return infos, nil
}

// getDeckByName resolves a deck name, mapping the store's not-found error
// to the service sentinel.
func (s *studyServiceImpl) getDeckByName(
	ctx context.Context,
	log *slog.Logger,
	name string,
) (*domain.Deck, error) {
	deck, err := s.decks.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			log.Debug("deck not found", slog.String("name", name))
			return nil, ErrDeckNotFound
		}
		log.Error("failed to retrieve deck",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("get_deck", "failed to retrieve deck", err)
	}
	return deck, nil
}

// deckCards resolves a deck name and loads its cards in deck order.
func (s *studyServiceImpl) deckCards(
	ctx context.Context,
	log *slog.Logger,
	name string,
) (*domain.Deck, []*domain.Card, error) {
	deck, err := s.getDeckByName(ctx, log, name)
	if err != nil {
		return nil, nil, err
	}

	cards, err := s.cards.ListByDeck(ctx, deck.ID)
	if err != nil {
		log.Error("failed to list cards",
			slog.String("deck_id", deck.ID.String()),
			slog.String("error", err.Error()))
		return nil, nil, NewStudyServiceError("list_cards", "failed to list cards", err)
	}
	return deck, cards, nil
}

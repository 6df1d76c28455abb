package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mnemoapp/mnemo/internal/archive"
	"github.com/mnemoapp/mnemo/internal/domain"
	"github.com/mnemoapp/mnemo/internal/domain/srs"
)

// DeckProgress bundles a deck's study statistics from both halves of the
// application: card counters from the store and scheduling state from the
// review engine.
type DeckProgress struct {
	Deck      *domain.Deck
	CardStats domain.DeckStats
	Review    srs.Summary
}

// StudyService provides the application's use cases: managing decks and
// cards, running reviews against the scheduling engine, and moving decks
// in and out of portable archives.
type StudyService interface {
	// Load reads the persisted review state into the engine. It must be
	// called once before study operations; a corrupt state row is reported
	// with the offending card so the caller can decide whether to continue
	// with unscheduled cards.
	Load(ctx context.Context) error

	// Flush writes the engine's state back to the database if anything
	// changed since the last flush. It is cheap to call when nothing is
	// dirty.
	Flush(ctx context.Context) error

	// StartAutosaveWorker periodically flushes dirty review state until ctx
	// is cancelled. Run it in its own goroutine for long interactive
	// sessions.
	StartAutosaveWorker(ctx context.Context, interval time.Duration)

	// CreateDeck creates a new empty deck.
	// Returns ErrDeckNameExists if the name is taken.
	CreateDeck(ctx context.Context, name, description string) (*domain.Deck, error)

	// GetDeck retrieves a deck by its exact name.
	// Returns ErrDeckNotFound if no deck has that name.
	GetDeck(ctx context.Context, name string) (*domain.Deck, error)

	// ListDecks retrieves all decks ordered by name.
	ListDecks(ctx context.Context) ([]*domain.Deck, error)

	// DeleteDeck removes a deck, its cards, and their review state, both
	// persisted and in the engine.
	// Returns ErrDeckNotFound if no deck has that name.
	DeleteDeck(ctx context.Context, name string) error

	// AddCard creates a card in the named deck. category may be empty for
	// the default, and tags are normalized the way domain.Card does.
	AddCard(
		ctx context.Context,
		deckName, front, back, category string,
		tags []string,
	) (*domain.Card, error)

	// ListCards retrieves the cards of the named deck in creation order.
	ListCards(ctx context.Context, deckName string) ([]*domain.Card, error)

	// SearchCards retrieves the cards of the named deck whose front, back,
	// category, or tags contain the query.
	SearchCards(ctx context.Context, deckName, query string) ([]*domain.Card, error)

	// DeleteCard removes a card, its persisted review state, and its engine
	// record. Returns ErrCardNotFound if the card does not exist.
	DeleteCard(ctx context.Context, cardID uuid.UUID) error

	// DueCards returns the cards of the named deck that are due for review,
	// in deck order, capped at the configured session limit.
	// Returns ErrNoCardsDue if nothing is due.
	DueCards(ctx context.Context, deckName string) ([]*domain.Card, error)

	// NextCard returns the first due card of the named deck.
	// Returns ErrNoCardsDue if nothing is due.
	NextCard(ctx context.Context, deckName string) (*domain.Card, error)

	// SubmitReview records a review answer for a card.
	//
	// The card's study counters and the engine's scheduling state are
	// updated together, and both are persisted in a single transaction.
	// responseSeconds is how long the answer took and feeds the card's
	// response-time statistics.
	//
	// Returns the card's updated scheduling state, ErrCardNotFound if the
	// card does not exist, or ErrInvalidOutcome for an unrecognized
	// outcome.
	SubmitReview(
		ctx context.Context,
		cardID uuid.UUID,
		outcome domain.ReviewOutcome,
		responseSeconds float64,
	) (*srs.RecordState, error)

	// DeckProgress computes the named deck's combined statistics.
	// Returns ErrDeckNotFound if no deck has that name.
	DeckProgress(ctx context.Context, deckName string) (*DeckProgress, error)

	// ExportDeck writes the named deck, its cards, and their review states
	// to disk and returns the written path. With an empty jsonPath the deck
	// is saved as a compressed archive in the managed directory; otherwise
	// a plain JSON file is written to jsonPath.
	ExportDeck(ctx context.Context, deckName, jsonPath string) (string, error)

	// ImportDeck loads a deck archive (compressed or plain JSON) and
	// creates its deck, cards, and review states.
	// Returns ErrDeckNameExists if the archived deck's name is taken.
	ImportDeck(ctx context.Context, path string) (*domain.Deck, error)

	// ListArchives lists the compressed archives in the managed directory,
	// newest first.
	ListArchives(ctx context.Context) ([]archive.Info, error)
}

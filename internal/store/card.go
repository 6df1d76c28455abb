package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mnemoapp/mnemo/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a single card to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, card *domain.Card) error

	// CreateMultiple saves multiple cards to the store.
	// IMPORTANT: This method MUST be run within a transaction for atomicity.
	// Use the WithTx method with store.RunInTransaction to ensure proper
	// transaction handling; calling it outside a transaction may result in
	// partial data insertion if failures occur.
	//
	// All cards must be valid according to domain validation rules.
	// Returns validation errors if any card data is invalid.
	//
	// Usage example:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       return cardStore.WithTx(tx).CreateMultiple(ctx, cards)
	//   })
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByDeck retrieves all cards in a deck ordered by creation time.
	ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error)

	// ListIDsByDeck retrieves just the IDs of the cards in a deck, for
	// callers that key into the review engine and do not need card bodies.
	ListIDsByDeck(ctx context.Context, deckID uuid.UUID) ([]uuid.UUID, error)

	// Search retrieves the cards in a deck whose front, back, category, or
	// tags contain the query, matched case-insensitively.
	Search(ctx context.Context, deckID uuid.UUID, query string) ([]*domain.Card, error)

	// Update modifies an existing card's content, category, tags, and study
	// counters. Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	//
	// The card's review state row is removed through an ON DELETE CASCADE
	// constraint; callers are still responsible for dropping the card from
	// the in-memory review engine.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CardStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) CardStore
}

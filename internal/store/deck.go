package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mnemoapp/mnemo/internal/domain"
)

// DeckStore defines the interface for deck data persistence.
type DeckStore interface {
	// Create saves a new deck to the store.
	// It handles domain validation internally.
	// Returns ErrDeckNameExists if a deck with the same name already exists.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// GetByName retrieves a deck by its exact name. Deck names are unique,
	// so this is how CLI commands resolve the deck a user refers to.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByName(ctx context.Context, name string) (*domain.Deck, error)

	// List retrieves all decks ordered by name.
	List(ctx context.Context) ([]*domain.Deck, error)

	// Update modifies an existing deck's name and description.
	// Returns ErrDeckNotFound if the deck does not exist.
	// Returns ErrDeckNameExists if the new name collides with another deck.
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes a deck from the store by its ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	//
	// This method relies on ON DELETE CASCADE constraints to remove the
	// deck's cards and their review state rows in the same statement.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new DeckStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) DeckStore
}

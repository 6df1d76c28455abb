// Package testutils provides shared helpers for constructing and
// inserting test fixtures. Helpers that touch the database accept a
// store.DBTX so they work with both connections and transactions.
package testutils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mnemoapp/mnemo/internal/domain"
	"github.com/mnemoapp/mnemo/internal/platform/sqlite"
	"github.com/mnemoapp/mnemo/internal/store"
	"github.com/stretchr/testify/require"
)

// CreateTestDeck creates a deck with default test values and a unique name.
func CreateTestDeck(t *testing.T) *domain.Deck {
	t.Helper()

	deck, err := domain.NewDeck("Test Deck "+uuid.New().String()[:8], "A deck for testing")
	require.NoError(t, err, "Failed to create test deck")

	return deck
}

// MustInsertDeck inserts a deck with default test values into the database.
//
// This helper:
// - Creates a deck with a unique name
// - Inserts the deck using the provided connection or transaction
// - Returns the inserted deck object with all fields populated
// - Fails the test with a descriptive error if insertion fails
func MustInsertDeck(ctx context.Context, t *testing.T, db store.DBTX) *domain.Deck {
	t.Helper()

	deck := CreateTestDeck(t)

	deckStore := sqlite.NewSQLiteDeckStore(db, nil)
	err := deckStore.Create(ctx, deck)
	require.NoError(t, err, "Failed to insert test deck")

	return deck
}

// CreateTestCard creates a card with default test values in the given deck.
func CreateTestCard(t *testing.T, deckID uuid.UUID) *domain.Card {
	t.Helper()

	suffix := uuid.New().String()[:8]
	card, err := domain.NewCard(deckID, "Test front "+suffix, "Test back "+suffix)
	require.NoError(t, err, "Failed to create test card")

	return card
}

// MustInsertCard inserts a card with default test values into the database.
//
// This helper:
// - Creates a card with default test values in the provided deck
// - Inserts the card using the provided connection or transaction
// - Returns the inserted card object with all fields populated
// - Fails the test with a descriptive error if insertion fails
func MustInsertCard(ctx context.Context, t *testing.T, db store.DBTX, deckID uuid.UUID) *domain.Card {
	t.Helper()

	card := CreateTestCard(t, deckID)

	cardStore := sqlite.NewSQLiteCardStore(db, nil)
	err := cardStore.Create(ctx, card)
	require.NoError(t, err, "Failed to insert test card")

	return card
}

// CountRows counts the rows in a table matching certain criteria.
func CountRows(
	ctx context.Context,
	t *testing.T,
	db store.DBTX,
	table string,
	whereClause string,
	args ...interface{},
) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	var count int
	err := db.QueryRowContext(ctx, query, args...).Scan(&count)
	require.NoError(t, err, "Failed to count rows in "+table)

	return count
}

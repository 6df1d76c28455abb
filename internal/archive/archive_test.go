package archive_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mnemoapp/mnemo/internal/archive"
	"github.com/mnemoapp/mnemo/internal/domain"
	"github.com/mnemoapp/mnemo/internal/domain/srs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDeck creates a deck with two cards for archive tests.
func newTestDeck(t *testing.T, name string) (*domain.Deck, []*domain.Card) {
	t.Helper()

	deck, err := domain.NewDeck(name, "A deck for testing")
	require.NoError(t, err, "Creating deck should succeed")

	cards := make([]*domain.Card, 0, 2)
	for _, front := range []string{"What is a goroutine?", "What is a channel?"} {
		card, err := domain.NewCard(deck.ID, front, "See the language spec")
		require.NoError(t, err, "Creating card should succeed")
		cards = append(cards, card)
	}
	return deck, cards
}

// reviewCards runs each card through a fresh engine once and returns the
// engine's snapshot.
func reviewCards(t *testing.T, cards ...*domain.Card) srs.Snapshot {
	t.Helper()

	engine := srs.NewEngine()
	for _, card := range cards {
		require.NoError(t, engine.Review(card.ID.String(), domain.ReviewOutcomeGood, 2.5),
			"Review should succeed")
	}
	return engine.ExportState()
}

// TestNew tests assembling an archive from a deck, its cards, and an
// engine snapshot.
func TestNew(t *testing.T) {
	t.Parallel() // Enable parallel testing

	t.Run("Carries only the archived cards' review states", func(t *testing.T) {
		deck, cards := newTestDeck(t, "Spanish Vocabulary")
		otherDeck, otherCards := newTestDeck(t, "Algorithms")

		// The snapshot spans both decks; only this deck's entries belong
		// in the archive.
		snapshot := reviewCards(t, append(cards, otherCards...)...)

		a := archive.New(deck, cards, snapshot)

		assert.Equal(t, archive.CurrentFormatVersion, a.FormatVersion,
			"New archives should carry the current format version")
		assert.False(t, a.ExportedAt.IsZero(), "Export time should be set")
		assert.Len(t, a.Review, len(cards), "Only archived cards' states should be carried")
		for _, card := range otherCards {
			assert.NotContains(t, a.Review, card.ID.String(),
				"States for %s cards should be excluded", otherDeck.Name)
		}
		assert.NoError(t, a.Validate(), "A freshly assembled archive should be valid")
	})

	t.Run("No review states", func(t *testing.T) {
		deck, cards := newTestDeck(t, "Music Theory")

		a := archive.New(deck, cards, nil)

		assert.Nil(t, a.Review, "No snapshot means no review states")
		assert.NoError(t, a.Validate(), "An archive without review states should be valid")
	})
}

// TestArchiveValidate tests the archive consistency checks.
func TestArchiveValidate(t *testing.T) {
	t.Parallel() // Enable parallel testing

	t.Run("Missing deck", func(t *testing.T) {
		a := &archive.Archive{FormatVersion: archive.CurrentFormatVersion}

		err := a.Validate()
		assert.ErrorIs(t, err, archive.ErrInvalidArchive)
		assert.Contains(t, err.Error(), "deck is missing")
	})

	t.Run("Invalid card", func(t *testing.T) {
		deck, cards := newTestDeck(t, "Spanish Vocabulary")
		cards[0].Front = ""

		err := archive.New(deck, cards, nil).Validate()
		assert.ErrorIs(t, err, archive.ErrInvalidArchive)
	})

	t.Run("Card from another deck", func(t *testing.T) {
		deck, cards := newTestDeck(t, "Spanish Vocabulary")
		cards[1].DeckID = uuid.New()

		err := archive.New(deck, cards, nil).Validate()
		assert.ErrorIs(t, err, archive.ErrInvalidArchive)
		assert.Contains(t, err.Error(), "belongs to deck")
	})

	t.Run("Duplicate card", func(t *testing.T) {
		deck, cards := newTestDeck(t, "Spanish Vocabulary")
		cards[1] = cards[0]

		err := archive.New(deck, cards, nil).Validate()
		assert.ErrorIs(t, err, archive.ErrInvalidArchive)
		assert.Contains(t, err.Error(), "duplicate card")
	})

	t.Run("Review state for unknown card", func(t *testing.T) {
		deck, cards := newTestDeck(t, "Spanish Vocabulary")

		a := archive.New(deck, cards, nil)
		a.Review = srs.Snapshot{
			uuid.New().String(): &srs.RecordState{EaseFactor: 2.5, Interval: 1},
		}

		err := a.Validate()
		assert.ErrorIs(t, err, archive.ErrInvalidArchive)
		assert.Contains(t, err.Error(), "unknown card")
	})
}

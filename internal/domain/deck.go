package domain

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Content limits applied to decks.
const (
	// MaxDeckNameLen is the maximum rune length of a deck name.
	MaxDeckNameLen = 200

	// MaxDeckDescriptionLen is the maximum rune length of a deck description.
	MaxDeckDescriptionLen = 1000
)

// Deck-specific validation errors
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty or nil.
	ErrDeckIDEmpty = errors.New("deck ID cannot be empty")

	// ErrDeckNameEmpty is returned when a deck name is empty.
	ErrDeckNameEmpty = errors.New("deck name cannot be empty")

	// ErrDeckNameTooLong is returned when a deck name exceeds MaxDeckNameLen.
	ErrDeckNameTooLong = errors.New("deck name exceeds maximum length")

	// ErrDeckDescriptionTooLong is returned when a deck description exceeds
	// MaxDeckDescriptionLen.
	ErrDeckDescriptionTooLong = errors.New("deck description exceeds maximum length")
)

// Deck is a named collection of flashcards.
type Deck struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDeck creates a new Deck with the given name and description, both
// cleaned of control characters and surrounding whitespace. Returns an
// error if validation fails.
func NewDeck(name, description string) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		ID:          uuid.New(),
		Name:        cleanText(name),
		Description: cleanText(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
// Returns an error if any field fails validation.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}

	if d.Name == "" {
		return ErrDeckNameEmpty
	}

	if len([]rune(d.Name)) > MaxDeckNameLen {
		return ErrDeckNameTooLong
	}

	if len([]rune(d.Description)) > MaxDeckDescriptionLen {
		return ErrDeckDescriptionTooLong
	}

	return nil
}

// Rename replaces the deck's name and updates the UpdatedAt timestamp.
// The deck is left unchanged if the new name is invalid.
func (d *Deck) Rename(name string) error {
	orig := d.Name
	d.Name = cleanText(name)

	if err := d.Validate(); err != nil {
		d.Name = orig
		return err
	}

	d.UpdatedAt = time.Now().UTC()
	return nil
}

// DeckStats summarizes study progress across the cards of a deck.
type DeckStats struct {
	TotalCards         int      `json:"total_cards"`
	StudiedCards       int      `json:"studied_cards"`
	AverageAccuracy    float64  `json:"average_accuracy"`
	TotalStudySessions int      `json:"total_study_sessions"`
	Categories         []string `json:"categories"`
	Tags               []string `json:"tags"`
}

// ComputeDeckStats aggregates per-card study counters into deck-level
// statistics. Average accuracy covers only cards that have been studied at
// least once, rounded to two decimal places. Categories and tags are the
// sorted unique values across all cards.
func ComputeDeckStats(cards []*Card) DeckStats {
	stats := DeckStats{
		TotalCards: len(cards),
		Categories: []string{},
		Tags:       []string{},
	}

	if len(cards) == 0 {
		return stats
	}

	categories := make(map[string]struct{})
	tags := make(map[string]struct{})
	var accuracySum float64

	for _, card := range cards {
		stats.TotalStudySessions += card.Stats.TimesStudied
		if card.Stats.TimesStudied > 0 {
			stats.StudiedCards++
			accuracySum += card.Stats.Accuracy()
		}
		categories[card.Category] = struct{}{}
		for _, tag := range card.Tags {
			tags[tag] = struct{}{}
		}
	}

	if stats.StudiedCards > 0 {
		avg := accuracySum / float64(stats.StudiedCards)
		stats.AverageAccuracy = math.Round(avg*100) / 100
	}

	for category := range categories {
		stats.Categories = append(stats.Categories, category)
	}
	for tag := range tags {
		stats.Tags = append(stats.Tags, tag)
	}
	sort.Strings(stats.Categories)
	sort.Strings(stats.Tags)

	return stats
}

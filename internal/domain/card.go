package domain

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Content limits applied to cards.
const (
	// MaxCardTextLen is the maximum rune length of a card's front or back text.
	MaxCardTextLen = 10000

	// MaxCategoryLen is the maximum rune length of a card's category.
	MaxCategoryLen = 100

	// MaxTagLen is the maximum rune length of a single tag.
	MaxTagLen = 50

	// MaxTagsPerCard is the maximum number of tags a card may carry.
	MaxTagsPerCard = 20

	// DefaultCategory is assigned to cards created without an explicit category.
	DefaultCategory = "General"

	// DefaultDifficulty is the starting difficulty rating for a new card,
	// halfway between easy (0.0) and hard (1.0).
	DefaultDifficulty = 0.5
)

// difficultyStep is how far a single answer moves the difficulty rating.
const difficultyStep = 0.1

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front text is empty.
	ErrCardFrontEmpty = errors.New("card front text cannot be empty")

	// ErrCardBackEmpty is returned when a card's back text is empty.
	ErrCardBackEmpty = errors.New("card back text cannot be empty")

	// ErrCardTextTooLong is returned when front or back text exceeds MaxCardTextLen.
	ErrCardTextTooLong = errors.New("card text exceeds maximum length")

	// ErrCardCategoryEmpty is returned when a card's category is empty.
	ErrCardCategoryEmpty = errors.New("card category cannot be empty")

	// ErrCardCategoryTooLong is returned when a card's category exceeds MaxCategoryLen.
	ErrCardCategoryTooLong = errors.New("card category exceeds maximum length")

	// ErrTagEmpty is returned when a tag is empty after normalization.
	ErrTagEmpty = errors.New("tag cannot be empty")

	// ErrTagNotNormalized is returned when a stored tag does not match its
	// normalized form.
	ErrTagNotNormalized = errors.New("tag is not normalized")

	// ErrTooManyTags is returned when a card would exceed MaxTagsPerCard.
	ErrTooManyTags = errors.New("card exceeds the tag limit")
)

// tagStrip removes every character that is not a word character,
// whitespace, or a hyphen.
var tagStrip = regexp.MustCompile(`[^\w\s-]`)

// Card is a single flashcard belonging to a deck. Scheduling state lives
// in the review engine keyed by the card ID; the card itself only tracks
// simple study counters.
type Card struct {
	ID        uuid.UUID `json:"id"`
	DeckID    uuid.UUID `json:"deck_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags,omitempty"`
	Stats     CardStats `json:"stats"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CardStats tracks simple study counters for a card. The difficulty
// rating ranges from 0.0 (easy) to 1.0 (hard) and drifts by a fixed step
// with every answer.
type CardStats struct {
	TimesStudied     int       `json:"times_studied"`
	CorrectAnswers   int       `json:"correct_answers"`
	IncorrectAnswers int       `json:"incorrect_answers"`
	DifficultyRating float64   `json:"difficulty_rating"`
	LastStudied      time.Time `json:"last_studied"`
}

// NewCardStats returns study counters for a card that has never been studied.
func NewCardStats() CardStats {
	return CardStats{DifficultyRating: DefaultDifficulty}
}

// RecordAnswer updates the counters after a study answer. Correct answers
// lower the difficulty rating, incorrect answers raise it, clamped to [0, 1].
func (s *CardStats) RecordAnswer(correct bool) {
	s.TimesStudied++
	s.LastStudied = time.Now().UTC()

	if correct {
		s.CorrectAnswers++
		s.DifficultyRating = math.Max(0.0, s.DifficultyRating-difficultyStep)
	} else {
		s.IncorrectAnswers++
		s.DifficultyRating = math.Min(1.0, s.DifficultyRating+difficultyStep)
	}
}

// Accuracy returns the percentage of correct answers, or 0.0 for a card
// that has never been studied.
func (s CardStats) Accuracy() float64 {
	if s.TimesStudied == 0 {
		return 0.0
	}
	return float64(s.CorrectAnswers) / float64(s.TimesStudied) * 100
}

// NewCard creates a new Card in the given deck with the default category.
// Front and back text are cleaned of control characters and surrounding
// whitespace. Returns an error if validation fails.
func NewCard(deckID uuid.UUID, front, back string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:        uuid.New(),
		DeckID:    deckID,
		Front:     cleanText(front),
		Back:      cleanText(back),
		Category:  DefaultCategory,
		Stats:     NewCardStats(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Back == "" {
		return ErrCardBackEmpty
	}

	if len([]rune(c.Front)) > MaxCardTextLen || len([]rune(c.Back)) > MaxCardTextLen {
		return ErrCardTextTooLong
	}

	if c.Category == "" {
		return ErrCardCategoryEmpty
	}

	if len([]rune(c.Category)) > MaxCategoryLen {
		return ErrCardCategoryTooLong
	}

	if len(c.Tags) > MaxTagsPerCard {
		return ErrTooManyTags
	}

	for _, tag := range c.Tags {
		norm, err := NormalizeTag(tag)
		if err != nil || norm != tag {
			return ErrTagNotNormalized
		}
	}

	return nil
}

// UpdateContent replaces the card's front and back text and updates the
// UpdatedAt timestamp. The card is left unchanged if the new content is
// invalid.
func (c *Card) UpdateContent(front, back string) error {
	origFront, origBack := c.Front, c.Back
	c.Front = cleanText(front)
	c.Back = cleanText(back)

	if err := c.Validate(); err != nil {
		c.Front, c.Back = origFront, origBack
		return err
	}

	c.UpdatedAt = time.Now().UTC()
	return nil
}

// SetCategory replaces the card's category. The card is left unchanged if
// the new category is invalid.
func (c *Card) SetCategory(category string) error {
	orig := c.Category
	c.Category = cleanText(category)

	if err := c.Validate(); err != nil {
		c.Category = orig
		return err
	}

	c.UpdatedAt = time.Now().UTC()
	return nil
}

// AddTag normalizes the tag and adds it to the card. Adding a tag the card
// already has is a no-op. Returns an error if the tag is invalid or the
// card is at the tag limit.
func (c *Card) AddTag(tag string) error {
	norm, err := NormalizeTag(tag)
	if err != nil {
		return err
	}

	for _, existing := range c.Tags {
		if existing == norm {
			return nil
		}
	}

	if len(c.Tags) >= MaxTagsPerCard {
		return ErrTooManyTags
	}

	c.Tags = append(c.Tags, norm)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveTag removes the tag from the card, reporting whether it was present.
func (c *Card) RemoveTag(tag string) bool {
	norm, err := NormalizeTag(tag)
	if err != nil {
		return false
	}

	for i, existing := range c.Tags {
		if existing == norm {
			c.Tags = append(c.Tags[:i], c.Tags[i+1:]...)
			c.UpdatedAt = time.Now().UTC()
			return true
		}
	}

	return false
}

// RecordAnswer records a study answer against the card's counters.
func (c *Card) RecordAnswer(correct bool) {
	c.Stats.RecordAnswer(correct)
	c.UpdatedAt = c.Stats.LastStudied
}

// NormalizeTag lowercases the tag, strips characters other than word
// characters, whitespace, and hyphens, and truncates it to MaxTagLen runes.
// Returns ErrTagEmpty if nothing remains.
func NormalizeTag(tag string) (string, error) {
	tag = tagStrip.ReplaceAllString(tag, "")

	if runes := []rune(tag); len(runes) > MaxTagLen {
		tag = string(runes[:MaxTagLen])
	}

	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return "", ErrTagEmpty
	}

	return tag, nil
}

// NormalizeTags normalizes a list of raw tags, dropping invalid entries and
// duplicates while preserving order, and caps the result at MaxTagsPerCard.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, raw := range tags {
		norm, err := NormalizeTag(raw)
		if err != nil {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
		if len(out) == MaxTagsPerCard {
			break
		}
	}

	return out
}

// cleanText removes control characters that have no place in card content
// and trims surrounding whitespace. Tabs and newlines survive.
func cleanText(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s))
}

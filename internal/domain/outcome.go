package domain

import (
	"fmt"
	"strings"
)

// ReviewOutcome grades a single flashcard review, ordered from total
// failure to effortless recall.
type ReviewOutcome int

// Outcome codes are persisted in review history and snapshots and must
// not be renumbered.
const (
	ReviewOutcomeAgain ReviewOutcome = iota // complete failure, repeat soon
	ReviewOutcomeHard                       // recalled with serious difficulty
	ReviewOutcomeGood                       // recalled correctly
	ReviewOutcomeEasy                       // recalled effortlessly
)

// ParseReviewOutcome converts a user-facing outcome name ("again", "hard",
// "good", "easy") into a ReviewOutcome. Matching is case-insensitive.
func ParseReviewOutcome(s string) (ReviewOutcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "again":
		return ReviewOutcomeAgain, nil
	case "hard":
		return ReviewOutcomeHard, nil
	case "good":
		return ReviewOutcomeGood, nil
	case "easy":
		return ReviewOutcomeEasy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidReviewOutcome, s)
	}
}

// Valid reports whether the outcome is one of the four defined values.
func (o ReviewOutcome) Valid() bool {
	switch o {
	case ReviewOutcomeAgain, ReviewOutcomeHard, ReviewOutcomeGood, ReviewOutcomeEasy:
		return true
	default:
		return false
	}
}

// Successful reports whether the outcome counts as a successful recall.
func (o ReviewOutcome) Successful() bool {
	return o == ReviewOutcomeGood || o == ReviewOutcomeEasy
}

// String returns the lowercase outcome name.
func (o ReviewOutcome) String() string {
	switch o {
	case ReviewOutcomeAgain:
		return "again"
	case ReviewOutcomeHard:
		return "hard"
	case ReviewOutcomeGood:
		return "good"
	case ReviewOutcomeEasy:
		return "easy"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

package srs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mnemoapp/mnemo/internal/domain"
)

// responseWindowSize caps how many recent response times are retained per
// card. Older measurements are evicted first.
const responseWindowSize = 50

// Review is a single entry in a card's review history. History entries are
// append-only; insertion order is chronological order.
type Review struct {
	At      time.Time
	Outcome domain.ReviewOutcome
	Seconds float64
}

// MarshalJSON encodes the review as a [timestamp, outcome-code, seconds]
// triple. The positional shape and the integer outcome codes are the
// persisted wire format and must stay stable across versions.
func (r Review) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{
		r.At.UTC().Format(time.RFC3339Nano),
		int(r.Outcome),
		r.Seconds,
	})
}

// UnmarshalJSON decodes a [timestamp, outcome-code, seconds] triple.
// Timestamps must carry a timezone offset; naive timestamps are rejected.
func (r *Review) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("review entry is not an array: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("review entry must have 3 elements, got %d", len(raw))
	}

	var ts string
	if err := json.Unmarshal(raw[0], &ts); err != nil {
		return fmt.Errorf("review timestamp is not a string: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return fmt.Errorf("review timestamp %q is not a valid RFC 3339 time: %w", ts, err)
	}

	var code int
	if err := json.Unmarshal(raw[1], &code); err != nil {
		return fmt.Errorf("review outcome is not an integer: %w", err)
	}
	outcome := domain.ReviewOutcome(code)
	if !outcome.Valid() {
		return fmt.Errorf("%w: code %d", ErrInvalidOutcome, code)
	}

	var seconds float64
	if err := json.Unmarshal(raw[2], &seconds); err != nil {
		return fmt.Errorf("review response time is not a number: %w", err)
	}

	r.At = at.UTC()
	r.Outcome = outcome
	r.Seconds = seconds
	return nil
}

// responseWindow is a fixed-capacity ring of the most recent response
// times. Appends are O(1); once full, each append evicts the oldest value.
type responseWindow struct {
	buf   [responseWindowSize]float64
	start int
	count int
}

func (w *responseWindow) push(v float64) {
	if w.count < responseWindowSize {
		w.buf[(w.start+w.count)%responseWindowSize] = v
		w.count++
		return
	}
	w.buf[w.start] = v
	w.start = (w.start + 1) % responseWindowSize
}

// values returns the retained response times oldest-first as a fresh slice.
func (w *responseWindow) values() []float64 {
	out := make([]float64, w.count)
	for i := 0; i < w.count; i++ {
		out[i] = w.buf[(w.start+i)%responseWindowSize]
	}
	return out
}

func (w *responseWindow) mean() float64 {
	if w.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < w.count; i++ {
		sum += w.buf[(w.start+i)%responseWindowSize]
	}
	return sum / float64(w.count)
}

// Record tracks the scheduling state of a single card. A zero LastReview
// or NextReview time means the card has never been reviewed or scheduled.
type Record struct {
	EaseFactor     float64
	Interval       int // days until the next review once graduated
	Repetition     int // consecutive successful graduated reviews
	LastReview     time.Time
	NextReview     time.Time
	TotalReviews   int
	TotalTimeSpent float64 // seconds
	LearningStep   int     // position on the learning ladder while not graduated
	Graduated      bool

	responseTimes responseWindow
	history       []Review
}

func newRecord(initialEase float64) *Record {
	return &Record{
		EaseFactor: initialEase,
		Interval:   1,
	}
}

// addReview records the bookkeeping side of a review: history, response
// time window, counters.
func (r *Record) addReview(at time.Time, outcome domain.ReviewOutcome, seconds float64) {
	r.history = append(r.history, Review{At: at, Outcome: outcome, Seconds: seconds})
	r.responseTimes.push(seconds)
	r.TotalReviews++
	r.TotalTimeSpent += seconds
}

package srs

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// RecordState is the serializable form of a single card's scheduling
// state. Nil timestamps mean "never": a nil NextReview marks a card that
// has never been scheduled and is due immediately.
type RecordState struct {
	EaseFactor     float64    `json:"ease_factor"`
	Interval       int        `json:"interval"`
	Repetition     int        `json:"repetition"`
	LastReview     *time.Time `json:"last_review"`
	NextReview     *time.Time `json:"next_review"`
	TotalReviews   int        `json:"total_reviews"`
	TotalTimeSpent float64    `json:"total_time_spent"`
	LearningStep   int        `json:"learning_step"`
	Graduated      bool       `json:"graduated"`
	ResponseTimes  []float64  `json:"response_times"`
	History        []Review   `json:"review_history"`
}

// AverageResponseTime returns the mean of the retained response times,
// or 0 with no measurements.
func (s *RecordState) AverageResponseTime() float64 {
	if len(s.ResponseTimes) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.ResponseTimes {
		sum += v
	}
	return sum / float64(len(s.ResponseTimes))
}

// SuccessRate returns the fraction of history entries with a successful
// outcome, or 0 with no history.
func (s *RecordState) SuccessRate() float64 {
	if len(s.History) == 0 {
		return 0
	}
	successful := 0
	for _, review := range s.History {
		if review.Outcome.Successful() {
			successful++
		}
	}
	return float64(successful) / float64(len(s.History))
}

// Accuracy returns the success rate as a percentage.
func (s *RecordState) Accuracy() float64 {
	return s.SuccessRate() * 100
}

// Snapshot is the engine's full serializable state: one RecordState per
// card id. It is the only boundary between the engine and persistence.
type Snapshot map[string]*RecordState

// UnmarshalJSON decodes a snapshot, attributing any malformed entry to its
// card id via a SnapshotError.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("snapshot is not a JSON object: %w", err)
	}

	out := make(Snapshot, len(raw))
	for id, msg := range raw {
		var state RecordState
		if err := json.Unmarshal(msg, &state); err != nil {
			return &SnapshotError{CardID: id, Message: "cannot decode review state", Err: err}
		}
		out[id] = &state
	}

	*s = out
	return nil
}

// ExportState returns a deep copy of the engine's full state, suitable for
// serialization by a persistence layer. Mutating the returned snapshot
// does not affect the engine.
func (e *Engine) ExportState() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := make(Snapshot, len(e.records))
	for id, rec := range e.records {
		snapshot[id] = rec.state()
	}
	return snapshot
}

// ImportState loads previously exported state into the engine. Each card
// id in the snapshot replaces any existing record for that id; records the
// snapshot does not mention are left untouched.
//
// The whole snapshot is validated before any record is touched: on the
// first malformed entry (invalid outcome code, negative counter, zero
// history timestamp) a SnapshotError naming the card and field is returned
// and the engine keeps its previous state. A few historical anomalies are
// repaired rather than rejected: out-of-bounds ease factors are clamped,
// a zero ease or interval takes its default, an overlong response-time
// list keeps only the newest entries.
func (e *Engine) ImportState(snapshot Snapshot) error {
	imported := make(map[string]*Record, len(snapshot))
	for id, state := range snapshot {
		rec, err := e.recordFromState(id, state)
		if err != nil {
			return err
		}
		imported[id] = rec
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for id, rec := range imported {
		e.records[id] = rec
	}
	return nil
}

// CardState returns a copy of one card's scheduling state, or false if the
// card has never been reviewed or imported.
func (e *Engine) CardState(cardID string) (*RecordState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rec, ok := e.records[cardID]
	if !ok {
		return nil, false
	}
	return rec.state(), true
}

// state converts a record to its serializable form with freshly allocated
// slices.
func (r *Record) state() *RecordState {
	state := &RecordState{
		EaseFactor:     r.EaseFactor,
		Interval:       r.Interval,
		Repetition:     r.Repetition,
		TotalReviews:   r.TotalReviews,
		TotalTimeSpent: r.TotalTimeSpent,
		LearningStep:   r.LearningStep,
		Graduated:      r.Graduated,
		ResponseTimes:  r.responseTimes.values(),
		History:        append([]Review(nil), r.history...),
	}
	if !r.LastReview.IsZero() {
		t := r.LastReview
		state.LastReview = &t
	}
	if !r.NextReview.IsZero() {
		t := r.NextReview
		state.NextReview = &t
	}
	return state
}

// recordFromState validates one snapshot entry and converts it into a
// fresh record. The input state is never modified.
func (e *Engine) recordFromState(cardID string, state *RecordState) (*Record, error) {
	if state == nil {
		return nil, newSnapshotError(cardID, "", "review state is missing")
	}

	ease := state.EaseFactor
	switch {
	case math.IsNaN(ease) || math.IsInf(ease, 0):
		return nil, newSnapshotError(cardID, "ease_factor", "must be a finite number")
	case ease == 0:
		// Absent in older snapshots; use the initial default.
		ease = e.params.InitialEaseFactor
	default:
		ease = e.params.clampEase(ease)
	}

	interval := state.Interval
	if interval < 0 {
		return nil, newSnapshotError(cardID, "interval", "must not be negative")
	}
	if interval == 0 {
		interval = 1
	}

	if state.Repetition < 0 {
		return nil, newSnapshotError(cardID, "repetition", "must not be negative")
	}
	if state.TotalReviews < 0 {
		return nil, newSnapshotError(cardID, "total_reviews", "must not be negative")
	}
	if state.TotalTimeSpent < 0 || math.IsNaN(state.TotalTimeSpent) || math.IsInf(state.TotalTimeSpent, 0) {
		return nil, newSnapshotError(cardID, "total_time_spent", "must be a finite non-negative number")
	}

	step := state.LearningStep
	if step < 0 {
		return nil, newSnapshotError(cardID, "learning_step", "must not be negative")
	}
	if limit := len(e.params.LearningStepMinutes); step > limit {
		step = limit
	}

	rec := &Record{
		EaseFactor:     ease,
		Interval:       interval,
		Repetition:     state.Repetition,
		TotalReviews:   state.TotalReviews,
		TotalTimeSpent: state.TotalTimeSpent,
		LearningStep:   step,
		Graduated:      state.Graduated,
	}
	if state.LastReview != nil {
		rec.LastReview = state.LastReview.UTC()
	}
	if state.NextReview != nil {
		rec.NextReview = state.NextReview.UTC()
	}

	times := state.ResponseTimes
	if len(times) > responseWindowSize {
		// Only the newest measurements survive.
		times = times[len(times)-responseWindowSize:]
	}
	for _, v := range times {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, newSnapshotError(cardID, "response_times", "entries must be finite non-negative numbers")
		}
		rec.responseTimes.push(v)
	}

	if len(state.History) > 0 {
		rec.history = make([]Review, 0, len(state.History))
		for _, review := range state.History {
			if review.At.IsZero() {
				return nil, newSnapshotError(cardID, "review_history", "entry timestamp is missing")
			}
			if !review.Outcome.Valid() {
				return nil, newSnapshotError(cardID, "review_history",
					fmt.Sprintf("entry has invalid outcome code %d", int(review.Outcome)))
			}
			if review.Seconds < 0 || math.IsNaN(review.Seconds) || math.IsInf(review.Seconds, 0) {
				return nil, newSnapshotError(cardID, "review_history",
					"entry response time must be a finite non-negative number")
			}
			review.At = review.At.UTC()
			rec.history = append(rec.history, review)
		}
	}

	return rec, nil
}

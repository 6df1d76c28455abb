// Package srs implements the spaced repetition scheduling engine: a
// modified SM-2 algorithm with an explicit short-term learning phase
// preceding long-term graduated review.
//
// The engine owns one Record per card identifier and answers three
// questions: what happened (Review), what is due (DueCards), and how the
// learner is doing (Stats). It performs no I/O and never logs; persistence
// is the caller's concern, through ExportState and ImportState.
package srs

import (
	"math"
	"sync"
	"time"

	"github.com/mnemoapp/mnemo/internal/domain"
)

// Engine schedules flashcard reviews. All state lives in an in-memory
// table of per-card records guarded by a single coarse lock: Review,
// ImportState and Forget take the write lock, the read-only queries share
// a read lock. Per-call work is O(1) to O(n) in the number of requested
// ids, so finer-grained locking buys nothing.
type Engine struct {
	mu      sync.RWMutex
	params  Params
	records map[string]*Record

	// now is the clock used for scheduling decisions.
	now func() time.Time
}

// NewEngine creates an engine with the default scheduling parameters.
func NewEngine() *Engine {
	e, err := NewEngineWithParams(NewDefaultParams())
	if err != nil {
		// Default parameters always validate.
		panic(err)
	}
	return e
}

// NewEngineWithParams creates an engine with a custom scheduling policy.
// Returns an error if the parameters fail validation.
func NewEngineWithParams(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		params:  params,
		records: make(map[string]*Record),
		now:     time.Now,
	}, nil
}

// Params returns the engine's scheduling parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Review records the outcome of a single card review and reschedules the
// card. The record is created on first review; unknown card ids are never
// an error. A negative response time is treated as unmeasured (0).
//
// Algorithm behavior:
//   - While a card is in the learning phase, "again" resets it to the
//     first learning step, "hard" repeats the current step, and "good" or
//     "easy" advance one step. Climbing past the last step graduates the
//     card with a starting interval of GraduatingIntervalDays (or
//     EasyIntervalDays when the final answer was "easy").
//   - Once graduated, "again" demotes the card back to the first learning
//     step, resets its repetition count and interval, and applies the
//     demotion ease penalty. Any other outcome first adjusts the ease
//     factor, then recomputes the interval: the first two successful
//     repetitions use fixed 1- and 6-day intervals, after which the
//     interval grows multiplicatively by the ease factor ("good"), the
//     ease factor times the easy bonus ("easy"), or the hard factor with
//     a 1-day floor ("hard").
//   - The next review time is always recomputed last: learning cards wait
//     for their current step's minutes, graduated cards for their interval
//     in days.
//
// The ease factor stays clamped to [MinEaseFactor, MaxEaseFactor] at every
// update. Note that even a "good" review decays the ease factor slightly;
// that damping is intentional, not a bug.
//
// Returns ErrInvalidOutcome if outcome is outside the enumeration; the
// four defined outcomes always succeed.
func (e *Engine) Review(cardID string, outcome domain.ReviewOutcome, responseSeconds float64) error {
	if !outcome.Valid() {
		return ErrInvalidOutcome
	}
	if responseSeconds < 0 {
		responseSeconds = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().UTC()
	rec := e.record(cardID)

	rec.addReview(now, outcome, responseSeconds)
	rec.LastReview = now

	if !rec.Graduated {
		e.reviewLearning(rec, outcome)
	} else {
		e.reviewGraduated(rec, outcome)
	}

	e.scheduleNext(rec, now)
	return nil
}

// DueCards filters the given card ids down to those due for review now.
// A card is due if it has never been scheduled or its next review time has
// arrived. Unknown ids are always due. The result preserves input order.
func (e *Engine) DueCards(cardIDs []string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.now().UTC()
	due := make([]string, 0, len(cardIDs))
	for _, id := range cardIDs {
		rec, ok := e.records[id]
		if !ok || rec.NextReview.IsZero() || !rec.NextReview.After(now) {
			due = append(due, id)
		}
	}
	return due
}

// Forget discards the records for the given card ids, if present. The
// engine never deletes records on its own; callers invoke Forget when a
// card is removed from the library.
func (e *Engine) Forget(cardIDs ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range cardIDs {
		delete(e.records, id)
	}
}

// record returns the card's record, creating it on first access.
// Callers must hold the write lock.
func (e *Engine) record(cardID string) *Record {
	rec, ok := e.records[cardID]
	if !ok {
		rec = newRecord(e.params.InitialEaseFactor)
		e.records[cardID] = rec
	}
	return rec
}

// reviewLearning advances a card through the learning ladder.
func (e *Engine) reviewLearning(rec *Record, outcome domain.ReviewOutcome) {
	switch outcome {
	case domain.ReviewOutcomeAgain:
		// Back to the first step.
		rec.LearningStep = 0

	case domain.ReviewOutcomeGood, domain.ReviewOutcomeEasy:
		rec.LearningStep++
		if rec.LearningStep >= len(e.params.LearningStepMinutes) {
			rec.Graduated = true
			rec.Repetition = 1
			if outcome == domain.ReviewOutcomeEasy {
				rec.Interval = e.params.EasyIntervalDays
			} else {
				rec.Interval = e.params.GraduatingIntervalDays
			}
		}

	case domain.ReviewOutcomeHard:
		// Repeat the current step.
	}
}

// reviewGraduated applies the ease and interval updates for a card in
// long-term review.
func (e *Engine) reviewGraduated(rec *Record, outcome domain.ReviewOutcome) {
	if outcome == domain.ReviewOutcomeAgain {
		// A lapse after graduation resets trust entirely: back to the
		// learning ladder with a penalized ease factor.
		rec.Graduated = false
		rec.LearningStep = 0
		rec.Repetition = 0
		rec.Interval = 1
		rec.EaseFactor = e.params.clampEase(rec.EaseFactor + e.params.EaseAdjustment[outcome])
		return
	}

	// Ease factor moves first so the new value feeds the interval growth.
	rec.EaseFactor = e.params.clampEase(rec.EaseFactor + e.params.EaseAdjustment[outcome])

	switch {
	case rec.Repetition == 0:
		rec.Interval = 1
	case rec.Repetition == 1:
		// Classic SM-2 second interval.
		rec.Interval = 6
	default:
		switch outcome {
		case domain.ReviewOutcomeHard:
			interval := int(math.Round(float64(rec.Interval) * e.params.HardIntervalFactor))
			if interval < 1 {
				interval = 1
			}
			rec.Interval = interval
		case domain.ReviewOutcomeEasy:
			rec.Interval = int(math.Round(float64(rec.Interval) * rec.EaseFactor * e.params.EasyIntervalFactor))
		default: // good
			rec.Interval = int(math.Round(float64(rec.Interval) * rec.EaseFactor))
		}
	}

	rec.Repetition++
}

// scheduleNext recomputes the card's next review time. Learning cards wait
// for their current step; graduated cards wait for their interval.
func (e *Engine) scheduleNext(rec *Record, now time.Time) {
	if !rec.Graduated {
		if rec.LearningStep < len(e.params.LearningStepMinutes) {
			minutes := e.params.LearningStepMinutes[rec.LearningStep]
			rec.NextReview = now.Add(time.Duration(minutes) * time.Minute)
		} else {
			// Out-of-range step should not occur; fall back to a day.
			rec.NextReview = now.AddDate(0, 0, 1)
		}
		return
	}
	rec.NextReview = now.AddDate(0, 0, rec.Interval)
}

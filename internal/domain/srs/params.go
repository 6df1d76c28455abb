package srs

import (
	"fmt"

	"github.com/mnemoapp/mnemo/internal/domain"
)

// Default scheduling policy. The learning ladder is 1 minute, 10 minutes,
// then 1 day; a card graduates after climbing every step.
const (
	DefaultGraduatingIntervalDays = 1
	DefaultEasyIntervalDays       = 4
	DefaultHardIntervalFactor     = 1.2
	DefaultEasyIntervalFactor     = 1.3
	DefaultMinEaseFactor          = 1.3
	DefaultMaxEaseFactor          = 5.0
	DefaultInitialEaseFactor      = 2.5
)

// Params defines all tunable parameters for the scheduling algorithm.
type Params struct {
	// LearningStepMinutes is the ordered ladder of wait times, in minutes,
	// a card climbs before graduating to interval-based review.
	LearningStepMinutes []int

	// First intervals assigned when a card graduates, in days.
	GraduatingIntervalDays int
	EasyIntervalDays       int

	// Multiplicative adjustments applied to the ease-derived interval.
	HardIntervalFactor float64
	EasyIntervalFactor float64

	// Ease factor bounds and the value assigned to brand-new cards.
	MinEaseFactor     float64
	MaxEaseFactor     float64
	InitialEaseFactor float64

	// EaseAdjustment maps each outcome to the signed change applied to a
	// graduated card's ease factor. The Again entry is the demotion penalty.
	EaseAdjustment map[domain.ReviewOutcome]float64
}

// NewDefaultParams returns the standard scheduling policy.
func NewDefaultParams() Params {
	return Params{
		LearningStepMinutes: []int{1, 10, 1440},

		GraduatingIntervalDays: DefaultGraduatingIntervalDays,
		EasyIntervalDays:       DefaultEasyIntervalDays,

		HardIntervalFactor: DefaultHardIntervalFactor,
		EasyIntervalFactor: DefaultEasyIntervalFactor,

		MinEaseFactor:     DefaultMinEaseFactor,
		MaxEaseFactor:     DefaultMaxEaseFactor,
		InitialEaseFactor: DefaultInitialEaseFactor,

		EaseAdjustment: map[domain.ReviewOutcome]float64{
			domain.ReviewOutcomeAgain: -0.20, // demotion penalty
			domain.ReviewOutcomeHard:  -0.15,
			domain.ReviewOutcomeGood:  -0.02, // mild decay even on success
			domain.ReviewOutcomeEasy:  0.10,
		},
	}
}

// Validate checks that the parameters describe a usable policy.
func (p Params) Validate() error {
	if len(p.LearningStepMinutes) == 0 {
		return fmt.Errorf("%w: at least one learning step is required", ErrInvalidParams)
	}
	for i, m := range p.LearningStepMinutes {
		if m <= 0 {
			return fmt.Errorf("%w: learning step %d must be positive, got %d", ErrInvalidParams, i, m)
		}
	}
	if p.GraduatingIntervalDays < 1 {
		return fmt.Errorf("%w: graduating interval must be at least 1 day", ErrInvalidParams)
	}
	if p.EasyIntervalDays < 1 {
		return fmt.Errorf("%w: easy interval must be at least 1 day", ErrInvalidParams)
	}
	if p.HardIntervalFactor <= 0 {
		return fmt.Errorf("%w: hard interval factor must be positive", ErrInvalidParams)
	}
	if p.EasyIntervalFactor <= 0 {
		return fmt.Errorf("%w: easy interval factor must be positive", ErrInvalidParams)
	}
	if p.MinEaseFactor <= 1.0 {
		return fmt.Errorf("%w: minimum ease factor must be greater than 1.0", ErrInvalidParams)
	}
	if p.MaxEaseFactor < p.MinEaseFactor {
		return fmt.Errorf("%w: maximum ease factor must not be below the minimum", ErrInvalidParams)
	}
	if p.InitialEaseFactor < p.MinEaseFactor || p.InitialEaseFactor > p.MaxEaseFactor {
		return fmt.Errorf("%w: initial ease factor must lie within [%.2f, %.2f]",
			ErrInvalidParams, p.MinEaseFactor, p.MaxEaseFactor)
	}
	for _, outcome := range []domain.ReviewOutcome{
		domain.ReviewOutcomeAgain,
		domain.ReviewOutcomeHard,
		domain.ReviewOutcomeGood,
		domain.ReviewOutcomeEasy,
	} {
		if _, ok := p.EaseAdjustment[outcome]; !ok {
			return fmt.Errorf("%w: missing ease adjustment for outcome %q", ErrInvalidParams, outcome)
		}
	}
	return nil
}

// clampEase bounds an ease factor to the configured limits.
func (p Params) clampEase(ef float64) float64 {
	if ef < p.MinEaseFactor {
		return p.MinEaseFactor
	}
	if ef > p.MaxEaseFactor {
		return p.MaxEaseFactor
	}
	return ef
}

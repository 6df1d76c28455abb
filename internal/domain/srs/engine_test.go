package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemoapp/mnemo/internal/domain"
)

// fakeClock lets tests control the engine's notion of now.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine()
	engine.now = clock.Now
	return engine, clock
}

func mustState(t *testing.T, engine *Engine, cardID string) *RecordState {
	t.Helper()
	state, ok := engine.CardState(cardID)
	require.True(t, ok, "expected a record for card %q", cardID)
	return state
}

func TestNewEngineDefaults(t *testing.T) {
	t.Parallel()
	engine := NewEngine()

	require.NotNil(t, engine)
	assert.Equal(t, []int{1, 10, 1440}, engine.Params().LearningStepMinutes)
	assert.Equal(t, 2.5, engine.Params().InitialEaseFactor)

	_, ok := engine.CardState("unseen")
	assert.False(t, ok, "a fresh engine should hold no records")
}

func TestNewEngineWithParamsRejectsInvalid(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	params.LearningStepMinutes = nil

	_, err := NewEngineWithParams(params)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestReviewInvalidOutcome(t *testing.T) {
	t.Parallel()
	engine, _ := newTestEngine(t)

	err := engine.Review("c1", domain.ReviewOutcome(7), 1.0)
	require.ErrorIs(t, err, ErrInvalidOutcome)

	_, ok := engine.CardState("c1")
	assert.False(t, ok, "a rejected review must not create a record")
}

func TestReviewCreatesRecordLazily(t *testing.T) {
	t.Parallel()
	engine, clock := newTestEngine(t)

	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 5.0))

	state := mustState(t, engine, "c1")
	assert.Equal(t, 2.5, state.EaseFactor, "learning reviews leave the ease factor untouched")
	assert.False(t, state.Graduated)
	assert.Equal(t, 1, state.LearningStep)
	assert.Equal(t, 1, state.TotalReviews)
	assert.Equal(t, 5.0, state.TotalTimeSpent)
	require.NotNil(t, state.LastReview)
	assert.Equal(t, clock.now, state.LastReview.UTC())
	require.NotNil(t, state.NextReview)
	assert.Equal(t, clock.now.Add(10*time.Minute), state.NextReview.UTC(),
		"after the first step the card waits on the second step's minutes")
}

// Three consecutive good reviews climb every learning step and graduate
// the card with the standard 1-day starting interval.
func TestLearningPhaseGraduation(t *testing.T) {
	t.Parallel()
	engine, clock := newTestEngine(t)

	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 5.0))
	state := mustState(t, engine, "c1")
	assert.Equal(t, 1, state.LearningStep)
	assert.False(t, state.Graduated)

	clock.advance(10 * time.Minute)
	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 5.0))
	state = mustState(t, engine, "c1")
	assert.Equal(t, 2, state.LearningStep)
	assert.False(t, state.Graduated)

	clock.advance(24 * time.Hour)
	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 5.0))
	state = mustState(t, engine, "c1")
	assert.True(t, state.Graduated)
	assert.Equal(t, 1, state.Repetition)
	assert.Equal(t, 1, state.Interval)
	require.NotNil(t, state.NextReview)
	assert.Equal(t, clock.now.AddDate(0, 0, 1), state.NextReview.UTC())
}

// Continuing past graduation: the second successful repetition uses the
// fixed 6-day interval and good decays the ease factor by 0.02.
func TestFirstGraduatedReview(t *testing.T) {
	t.Parallel()
	engine, clock := newTestEngine(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 5.0))
		clock.advance(time.Hour)
	}

	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 5.0))

	state := mustState(t, engine, "c1")
	assert.True(t, state.Graduated)
	assert.Equal(t, 6, state.Interval)
	assert.Equal(t, 2, state.Repetition)
	assert.InDelta(t, 2.48, state.EaseFactor, 1e-9,
		"good intentionally decays the ease factor by 0.02")
	require.NotNil(t, state.NextReview)
	assert.Equal(t, clock.now.AddDate(0, 0, 6), state.NextReview.UTC())
}

// A lapse after graduation demotes the card all the way back to the first
// learning step with a 0.2 ease penalty.
func TestGraduatedAgainDemotes(t *testing.T) {
	t.Parallel()
	engine, clock := newTestEngine(t)

	for i := 0; i < 4; i++ {
		require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 5.0))
		clock.advance(time.Hour)
	}

	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeAgain, 3.0))

	state := mustState(t, engine, "c1")
	assert.False(t, state.Graduated)
	assert.Equal(t, 0, state.LearningStep)
	assert.Equal(t, 0, state.Repetition)
	assert.Equal(t, 1, state.Interval)
	assert.InDelta(t, 2.28, state.EaseFactor, 1e-9)
	require.NotNil(t, state.NextReview)
	assert.Equal(t, clock.now.Add(1*time.Minute), state.NextReview.UTC(),
		"a demoted card waits on the first learning step")
}

func TestLearningAgainResetsStep(t *testing.T) {
	t.Parallel()
	engine, _ := newTestEngine(t)

	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 2.0))
	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 2.0))
	require.Equal(t, 2, mustState(t, engine, "c1").LearningStep)

	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeAgain, 2.0))
	assert.Equal(t, 0, mustState(t, engine, "c1").LearningStep)
}

func TestLearningHardRepeatsStep(t *testing.T) {
	t.Parallel()
	engine, clock := newTestEngine(t)

	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 2.0))
	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeHard, 2.0))

	state := mustState(t, engine, "c1")
	assert.Equal(t, 1, state.LearningStep, "hard must not advance the ladder")
	assert.False(t, state.Graduated)
	require.NotNil(t, state.NextReview)
	assert.Equal(t, clock.now.Add(10*time.Minute), state.NextReview.UTC(),
		"the card repeats the current step's wait")
}

func TestEasyGraduationUsesEasyInterval(t *testing.T) {
	t.Parallel()
	engine, _ := newTestEngine(t)

	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 2.0))
	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 2.0))
	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeEasy, 2.0))

	state := mustState(t, engine, "c1")
	assert.True(t, state.Graduated)
	assert.Equal(t, 4, state.Interval)
	assert.Equal(t, 1, state.Repetition)
}

// Established graduated cards grow their interval multiplicatively, with
// the ease factor adjusted before it feeds the growth.
func TestGraduatedIntervalGrowth(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name             string
		outcome          domain.ReviewOutcome
		expectedInterval int
		expectedEase     float64
	}{
		{
			name:    "hard uses the hard factor without the ease factor",
			outcome: domain.ReviewOutcomeHard,
			// round(10 * 1.2)
			expectedInterval: 12,
			expectedEase:     2.35,
		},
		{
			name:    "good multiplies by the adjusted ease factor",
			outcome: domain.ReviewOutcomeGood,
			// round(10 * 2.48)
			expectedInterval: 25,
			expectedEase:     2.48,
		},
		{
			name:    "easy multiplies by the adjusted ease factor and easy bonus",
			outcome: domain.ReviewOutcomeEasy,
			// round(10 * 2.6 * 1.3)
			expectedInterval: 34,
			expectedEase:     2.6,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			engine, _ := newTestEngine(t)

			interval := 10
			require.NoError(t, engine.ImportState(Snapshot{
				"c1": {
					EaseFactor: 2.5,
					Interval:   interval,
					Repetition: 3,
					Graduated:  true,
				},
			}))

			require.NoError(t, engine.Review("c1", tc.outcome, 4.0))

			state := mustState(t, engine, "c1")
			assert.Equal(t, tc.expectedInterval, state.Interval)
			assert.InDelta(t, tc.expectedEase, state.EaseFactor, 1e-9)
			assert.Equal(t, 4, state.Repetition)
		})
	}
}

func TestHardIntervalFloor(t *testing.T) {
	t.Parallel()
	engine, _ := newTestEngine(t)

	require.NoError(t, engine.ImportState(Snapshot{
		"c1": {
			EaseFactor: 1.3,
			Interval:   1,
			Repetition: 5,
			Graduated:  true,
		},
	}))

	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeHard, 4.0))

	state := mustState(t, engine, "c1")
	assert.Equal(t, 1, state.Interval, "hard never drops the interval below one day")
	assert.True(t, state.Graduated)
}

// Early graduated repetitions use fixed intervals regardless of outcome.
func TestEarlyGraduatedRepetitionIntervals(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name             string
		repetition       int
		expectedInterval int
	}{
		{name: "repetition zero gets one day", repetition: 0, expectedInterval: 1},
		{name: "repetition one gets six days", repetition: 1, expectedInterval: 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			engine, _ := newTestEngine(t)

			require.NoError(t, engine.ImportState(Snapshot{
				"c1": {
					EaseFactor: 2.5,
					Interval:   40,
					Repetition: tc.repetition,
					Graduated:  true,
				},
			}))

			require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 4.0))

			state := mustState(t, engine, "c1")
			assert.Equal(t, tc.expectedInterval, state.Interval)
			assert.Equal(t, tc.repetition+1, state.Repetition)
		})
	}
}

func TestNegativeResponseTimeTreatedAsUnmeasured(t *testing.T) {
	t.Parallel()
	engine, _ := newTestEngine(t)

	require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, -5.0))

	state := mustState(t, engine, "c1")
	assert.Equal(t, 0.0, state.TotalTimeSpent)
	require.Len(t, state.ResponseTimes, 1)
	assert.Equal(t, 0.0, state.ResponseTimes[0])
}

// The ease factor must hold its bounds and the graduated interval its
// 1-day floor across arbitrary review sequences.
func TestInvariantsAcrossReviewSequences(t *testing.T) {
	t.Parallel()
	engine, clock := newTestEngine(t)

	sequence := []domain.ReviewOutcome{
		domain.ReviewOutcomeGood,
		domain.ReviewOutcomeGood,
		domain.ReviewOutcomeEasy,
		domain.ReviewOutcomeAgain,
		domain.ReviewOutcomeHard,
		domain.ReviewOutcomeGood,
		domain.ReviewOutcomeEasy,
		domain.ReviewOutcomeEasy,
		domain.ReviewOutcomeAgain,
	}

	for round := 0; round < 40; round++ {
		outcome := sequence[round%len(sequence)]
		require.NoError(t, engine.Review("c1", outcome, 1.5))
		clock.advance(30 * time.Minute)

		state := mustState(t, engine, "c1")
		require.GreaterOrEqual(t, state.EaseFactor, 1.3, "round %d", round)
		require.LessOrEqual(t, state.EaseFactor, 5.0, "round %d", round)
		if state.Graduated {
			require.GreaterOrEqual(t, state.Interval, 1, "round %d", round)
			require.LessOrEqual(t, state.LearningStep, len(engine.Params().LearningStepMinutes))
		} else {
			require.Less(t, state.LearningStep, len(engine.Params().LearningStepMinutes))
		}
		require.NotNil(t, state.NextReview, "scheduling must never leave a reviewed card unscheduled")
	}
}

func TestEaseFactorCapsAtMaximum(t *testing.T) {
	t.Parallel()
	engine, clock := newTestEngine(t)

	// Graduate, then push the ease factor up as hard as possible.
	for i := 0; i < 3; i++ {
		require.NoError(t, engine.Review("c1", domain.ReviewOutcomeEasy, 1.0))
		clock.advance(time.Hour)
	}
	for i := 0; i < 40; i++ {
		require.NoError(t, engine.Review("c1", domain.ReviewOutcomeEasy, 1.0))
		clock.advance(time.Hour)
	}

	state := mustState(t, engine, "c1")
	assert.InDelta(t, 5.0, state.EaseFactor, 1e-9)
}

func TestEaseFactorFloorsAtMinimum(t *testing.T) {
	t.Parallel()
	engine, clock := newTestEngine(t)

	// Alternate graduation and lapse to apply repeated demotion penalties.
	for cycle := 0; cycle < 12; cycle++ {
		for i := 0; i < 3; i++ {
			require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 1.0))
			clock.advance(time.Hour)
		}
		require.NoError(t, engine.Review("c1", domain.ReviewOutcomeAgain, 1.0))
		clock.advance(time.Hour)
	}

	state := mustState(t, engine, "c1")
	assert.InDelta(t, 1.3, state.EaseFactor, 1e-9)
}

// Good reviews keep eroding the ease factor down to the floor. Documented
// damping behavior, not a bug.
func TestGoodDecayReachesFloor(t *testing.T) {
	t.Parallel()
	engine, clock := newTestEngine(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 1.0))
		clock.advance(time.Hour)
	}

	ease := mustState(t, engine, "c1").EaseFactor
	require.Equal(t, 2.5, ease)

	for i := 0; i < 100; i++ {
		require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, 1.0))
		clock.advance(time.Hour)

		next := mustState(t, engine, "c1").EaseFactor
		require.LessOrEqual(t, next, ease, "good must never raise the ease factor")
		require.GreaterOrEqual(t, next, 1.3)
		ease = next
	}

	assert.InDelta(t, 1.3, ease, 1e-9, "0.02 decay per good review reaches the floor within 60 reviews")
}

func TestResponseTimeWindowKeepsNewest(t *testing.T) {
	t.Parallel()
	engine, clock := newTestEngine(t)

	for i := 0; i < 60; i++ {
		require.NoError(t, engine.Review("c1", domain.ReviewOutcomeGood, float64(i)))
		clock.advance(time.Minute)
	}

	state := mustState(t, engine, "c1")
	require.Len(t, state.ResponseTimes, 50, "the window never exceeds its cap")
	assert.Equal(t, 10.0, state.ResponseTimes[0], "oldest measurements are evicted first")
	assert.Equal(t, 59.0, state.ResponseTimes[49])

	assert.Len(t, state.History, 60, "history is unbounded")
	assert.Equal(t, 60, state.TotalReviews)
}

func TestDueCards(t *testing.T) {
	t.Parallel()
	engine, clock := newTestEngine(t)

	// "a" was just reviewed and waits on its first learning step.
	require.NoError(t, engine.Review("a", domain.ReviewOutcomeAgain, 1.0))

	due := engine.DueCards([]string{"a", "b"})
	assert.Equal(t, []string{"b"}, due, "unseen cards are always due, scheduled cards are not")

	// Exactly at the scheduled time the card becomes due again.
	clock.advance(1 * time.Minute)
	due = engine.DueCards([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, due)
}

func TestDueCardsDoesNotCreateRecords(t *testing.T) {
	t.Parallel()
	engine, _ := newTestEngine(t)

	_ = engine.DueCards([]string{"x", "y"})
	_ = engine.Stats([]string{"x", "y"})

	assert.Empty(t, engine.ExportState(), "read-only queries must not materialize records")
}

func TestForget(t *testing.T) {
	t.Parallel()
	engine, _ := newTestEngine(t)

	require.NoError(t, engine.Review("a", domain.ReviewOutcomeGood, 1.0))
	require.NoError(t, engine.Review("b", domain.ReviewOutcomeGood, 1.0))

	engine.Forget("a", "never-seen")

	_, ok := engine.CardState("a")
	assert.False(t, ok)
	_, ok = engine.CardState("b")
	assert.True(t, ok)

	due := engine.DueCards([]string{"a"})
	assert.Equal(t, []string{"a"}, due, "a forgotten card reverts to new")
}

package srs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemoapp/mnemo/internal/domain"
)

func TestResponseWindowPush(t *testing.T) {
	t.Parallel()

	var w responseWindow
	assert.Empty(t, w.values())
	assert.Equal(t, 0.0, w.mean())

	w.push(2.0)
	w.push(4.0)
	assert.Equal(t, []float64{2.0, 4.0}, w.values())
	assert.InDelta(t, 3.0, w.mean(), 1e-9)
}

func TestResponseWindowEvictsOldest(t *testing.T) {
	t.Parallel()

	var w responseWindow
	for i := 0; i < responseWindowSize+7; i++ {
		w.push(float64(i))
	}

	values := w.values()
	require.Len(t, values, responseWindowSize)
	assert.Equal(t, 7.0, values[0])
	assert.Equal(t, float64(responseWindowSize+6), values[responseWindowSize-1])
}

func TestReviewMarshalJSON(t *testing.T) {
	t.Parallel()

	review := Review{
		At:      time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC),
		Outcome: domain.ReviewOutcomeEasy,
		Seconds: 4.25,
	}

	data, err := json.Marshal(review)
	require.NoError(t, err)
	assert.JSONEq(t, `["2024-03-10T12:30:00Z", 3, 4.25]`, string(data))
}

func TestReviewMarshalJSONNormalizesToUTC(t *testing.T) {
	t.Parallel()

	zone := time.FixedZone("CEST", 2*60*60)
	review := Review{
		At:      time.Date(2024, 3, 10, 14, 30, 0, 0, zone),
		Outcome: domain.ReviewOutcomeGood,
		Seconds: 1,
	}

	data, err := json.Marshal(review)
	require.NoError(t, err)
	assert.JSONEq(t, `["2024-03-10T12:30:00Z", 2, 1]`, string(data))
}

func TestReviewUnmarshalJSON(t *testing.T) {
	t.Parallel()

	var review Review
	require.NoError(t, json.Unmarshal([]byte(`["2024-03-10T12:30:00+02:00", 1, 6.5]`), &review))

	assert.True(t, review.At.Equal(time.Date(2024, 3, 10, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, review.At.Location())
	assert.Equal(t, domain.ReviewOutcomeHard, review.Outcome)
	assert.Equal(t, 6.5, review.Seconds)
}

func TestReviewUnmarshalJSONErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		data string
	}{
		{name: "not an array", data: `{"at": "2024-03-10T12:30:00Z"}`},
		{name: "too few elements", data: `["2024-03-10T12:30:00Z", 1]`},
		{name: "too many elements", data: `["2024-03-10T12:30:00Z", 1, 2.0, 3.0]`},
		{name: "timestamp not a string", data: `[1710072600, 1, 2.0]`},
		{name: "naive timestamp", data: `["2024-03-10T12:30:00", 1, 2.0]`},
		{name: "unparseable timestamp", data: `["last tuesday", 1, 2.0]`},
		{name: "outcome not an integer", data: `["2024-03-10T12:30:00Z", "good", 2.0]`},
		{name: "outcome out of range", data: `["2024-03-10T12:30:00Z", 4, 2.0]`},
		{name: "negative outcome code", data: `["2024-03-10T12:30:00Z", -1, 2.0]`},
		{name: "response time not a number", data: `["2024-03-10T12:30:00Z", 1, "fast"]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var review Review
			err := json.Unmarshal([]byte(tc.data), &review)
			assert.Error(t, err)
		})
	}
}

func TestNewRecordDefaults(t *testing.T) {
	t.Parallel()

	rec := newRecord(2.5)
	assert.Equal(t, 2.5, rec.EaseFactor)
	assert.Equal(t, 1, rec.Interval)
	assert.Equal(t, 0, rec.Repetition)
	assert.Equal(t, 0, rec.LearningStep)
	assert.False(t, rec.Graduated)
	assert.True(t, rec.LastReview.IsZero())
	assert.True(t, rec.NextReview.IsZero())
}

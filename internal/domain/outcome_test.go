package domain

import (
	"errors"
	"testing"
)

func TestParseReviewOutcome(t *testing.T) {
	t.Parallel() // Enable parallel execution
	testCases := []struct {
		name    string
		input   string
		want    ReviewOutcome
		wantErr bool
	}{
		{name: "again", input: "again", want: ReviewOutcomeAgain},
		{name: "hard", input: "hard", want: ReviewOutcomeHard},
		{name: "good", input: "good", want: ReviewOutcomeGood},
		{name: "easy", input: "easy", want: ReviewOutcomeEasy},
		{name: "mixed case", input: "GoOd", want: ReviewOutcomeGood},
		{name: "surrounding whitespace", input: "  easy  ", want: ReviewOutcomeEasy},
		{name: "unknown name", input: "perfect", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseReviewOutcome(tc.input)

			if tc.wantErr {
				if !errors.Is(err, ErrInvalidReviewOutcome) {
					t.Errorf("Expected error %v, got %v", ErrInvalidReviewOutcome, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			if got != tc.want {
				t.Errorf("Expected outcome %v, got %v", tc.want, got)
			}
		})
	}
}

func TestReviewOutcomeValid(t *testing.T) {
	t.Parallel() // Enable parallel execution

	for _, outcome := range []ReviewOutcome{
		ReviewOutcomeAgain, ReviewOutcomeHard, ReviewOutcomeGood, ReviewOutcomeEasy,
	} {
		if !outcome.Valid() {
			t.Errorf("Expected %v to be valid", outcome)
		}
	}

	if ReviewOutcome(-1).Valid() {
		t.Error("Expected -1 to be invalid")
	}

	if ReviewOutcome(4).Valid() {
		t.Error("Expected 4 to be invalid")
	}
}

func TestReviewOutcomeSuccessful(t *testing.T) {
	t.Parallel() // Enable parallel execution

	if ReviewOutcomeAgain.Successful() || ReviewOutcomeHard.Successful() {
		t.Error("Expected again and hard to be unsuccessful")
	}

	if !ReviewOutcomeGood.Successful() || !ReviewOutcomeEasy.Successful() {
		t.Error("Expected good and easy to be successful")
	}
}

func TestReviewOutcomeString(t *testing.T) {
	t.Parallel() // Enable parallel execution
	want := map[ReviewOutcome]string{
		ReviewOutcomeAgain: "again",
		ReviewOutcomeHard:  "hard",
		ReviewOutcomeGood:  "good",
		ReviewOutcomeEasy:  "easy",
	}

	for outcome, name := range want {
		if outcome.String() != name {
			t.Errorf("Expected %q, got %q", name, outcome.String())
		}
	}

	if got := ReviewOutcome(7).String(); got != "unknown(7)" {
		t.Errorf("Expected %q, got %q", "unknown(7)", got)
	}
}

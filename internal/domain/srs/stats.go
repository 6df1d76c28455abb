package srs

// Summary aggregates study statistics for a set of cards.
//
// A card falls into exactly one of three buckets: never scheduled ("new"),
// still on the learning ladder ("learning"), or graduated with its review
// time arrived ("due"). Graduated cards scheduled in the future belong to
// no bucket.
type Summary struct {
	TotalCards      int     `json:"total_cards"`
	NewCards        int     `json:"new_cards"`
	LearningCards   int     `json:"learning_cards"`
	DueCards        int     `json:"due_cards"`
	TotalReviews    int     `json:"total_reviews"`
	AverageEase     float64 `json:"average_ease"`
	AverageInterval float64 `json:"average_interval"`
	SuccessRate     float64 `json:"success_rate"`
	TotalStudyTime  float64 `json:"total_study_time"`
}

// Stats aggregates statistics over the given card ids without mutating any
// state. Unknown ids count as new cards. Average ease and interval cover
// graduated cards only; with no graduated cards the ease reports the
// initial default and the interval 0. The success rate is the fraction of
// successful entries across all review history. An empty id set yields the
// zero Summary.
func (e *Engine) Stats(cardIDs []string) Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(cardIDs) == 0 {
		return Summary{}
	}

	now := e.now().UTC()
	summary := Summary{TotalCards: len(cardIDs)}

	var (
		totalEase      float64
		totalInterval  float64
		graduated      int
		successful     int
		historyEntries int
	)

	for _, id := range cardIDs {
		rec, ok := e.records[id]
		if !ok {
			// Never seen: an unscheduled card in its initial state.
			summary.NewCards++
			continue
		}

		switch {
		case rec.NextReview.IsZero():
			summary.NewCards++
		case !rec.Graduated:
			summary.LearningCards++
		case !rec.NextReview.After(now):
			summary.DueCards++
		}

		summary.TotalReviews += rec.TotalReviews
		summary.TotalStudyTime += rec.TotalTimeSpent

		if rec.Graduated {
			totalEase += rec.EaseFactor
			totalInterval += float64(rec.Interval)
			graduated++
		}

		for _, review := range rec.history {
			historyEntries++
			if review.Outcome.Successful() {
				successful++
			}
		}
	}

	if graduated > 0 {
		summary.AverageEase = totalEase / float64(graduated)
		summary.AverageInterval = totalInterval / float64(graduated)
	} else {
		summary.AverageEase = e.params.InitialEaseFactor
	}
	if historyEntries > 0 {
		summary.SuccessRate = float64(successful) / float64(historyEntries)
	}

	return summary
}

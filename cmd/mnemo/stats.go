package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <deck>",
		Short: "Show study statistics for a deck",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			progress, err := a.svc.DeckProgress(ctx, args[0])
			if err != nil {
				return err
			}

			deck := progress.Deck
			cards := progress.CardStats
			review := progress.Review

			cmd.Println(deck.Name)
			if deck.Description != "" {
				cmd.Println(deck.Description)
			}
			cmd.Println()

			cmd.Printf("Cards:      %d total, %d studied\n", cards.TotalCards, cards.StudiedCards)
			cmd.Printf("Answers:    %d given, %.1f%% average accuracy\n",
				cards.TotalStudySessions, cards.AverageAccuracy)
			cmd.Printf("Schedule:   %d new, %d learning, %d due now\n",
				review.NewCards, review.LearningCards, review.DueCards)
			cmd.Printf("Reviews:    %d total, %.0f%% successful, %s spent\n",
				review.TotalReviews, review.SuccessRate*100, formatStudyTime(review.TotalStudyTime))
			cmd.Printf("Intervals:  %.1f days average, ease %.2f\n",
				review.AverageInterval, review.AverageEase)

			if len(cards.Categories) > 0 {
				cmd.Printf("Categories: %s\n", strings.Join(cards.Categories, ", "))
			}
			if len(cards.Tags) > 0 {
				cmd.Printf("Tags:       %s\n", strings.Join(cards.Tags, ", "))
			}
			return nil
		}),
	}
}

// formatStudyTime renders accumulated response seconds compactly.
func formatStudyTime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

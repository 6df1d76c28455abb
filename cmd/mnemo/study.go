package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mnemoapp/mnemo/internal/domain"
	"github.com/mnemoapp/mnemo/internal/domain/srs"
	"github.com/mnemoapp/mnemo/internal/service"
	"github.com/spf13/cobra"
)

func newStudyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "study <deck>",
		Short: "Review the due cards of a deck",
		Long: `Study runs an interactive review session over the cards that are due.
Each card shows its front first; press Enter to reveal the answer, then
grade your recall with again, hard, good, or easy. The grade drives when
the card comes back.`,
		Args: cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			return runStudySession(ctx, a, cmd, args[0])
		}),
	}
}

// sessionTally tracks what happened during one study session.
type sessionTally struct {
	reviewed int
	correct  int
	skipped  int
}

func runStudySession(ctx context.Context, a *app, cmd *cobra.Command, deckName string) error {
	due, err := a.svc.DueCards(ctx, deckName)
	if errors.Is(err, service.ErrNoCardsDue) {
		cmd.Println("Nothing to review. Come back later!")
		return nil
	}
	if err != nil {
		return err
	}

	// Autosave keeps a long session from losing progress on a crash.
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go a.svc.StartAutosaveWorker(workerCtx, a.cfg.Storage.AutosaveInterval)

	reader := bufio.NewReader(cmd.InOrStdin())
	var tally sessionTally

	cmd.Printf("Studying %q: %s due. Enter reveals the answer, q quits.\n\n",
		deckName, plural(len(due), "card"))

	for i, card := range due {
		if ctx.Err() != nil {
			break
		}

		cmd.Printf("[%d/%d] %s\n", i+1, len(due), card.Front)
		start := time.Now()

		cmd.Print("(reveal) ")
		line, err := readLine(reader)
		if err != nil {
			return err
		}
		if isQuit(line) {
			break
		}

		cmd.Printf("     -> %s\n", card.Back)

		outcome, quit, err := readOutcome(cmd, reader)
		if err != nil {
			return err
		}
		if quit {
			break
		}
		if outcome == nil {
			tally.skipped++
			cmd.Println()
			continue
		}

		seconds := time.Since(start).Seconds()
		state, err := a.svc.SubmitReview(ctx, card.ID, *outcome, seconds)
		if err != nil {
			return err
		}

		tally.reviewed++
		if outcome.Successful() {
			tally.correct++
		}
		cmd.Printf("     next review %s\n\n", describeNextReview(state))
	}

	printSummary(cmd, tally)
	return nil
}

// readOutcome prompts until it gets a valid grade, a skip, or a quit.
// A nil outcome with quit false means the card was skipped.
func readOutcome(cmd *cobra.Command, reader *bufio.Reader) (*domain.ReviewOutcome, bool, error) {
	for {
		cmd.Print("grade [a]gain [h]ard [g]ood [e]asy, [s]kip, [q]uit: ")

		line, err := readLine(reader)
		if err != nil {
			return nil, false, err
		}

		switch strings.ToLower(line) {
		case "q", "quit":
			return nil, true, nil
		case "s", "skip":
			return nil, false, nil
		case "a":
			line = "again"
		case "h":
			line = "hard"
		case "g":
			line = "good"
		case "e":
			line = "easy"
		}

		outcome, err := domain.ParseReviewOutcome(line)
		if err != nil {
			cmd.Println("Please answer a, h, g, e, s, or q.")
			continue
		}
		return &outcome, false, nil
	}
}

func isQuit(line string) bool {
	line = strings.ToLower(line)
	return line == "q" || line == "quit"
}

// describeNextReview renders a card's next review time as a rough
// human-readable delay.
func describeNextReview(state *srs.RecordState) string {
	if state.NextReview == nil {
		return "now"
	}

	d := time.Until(*state.NextReview)
	switch {
	case d < time.Minute:
		return "in under a minute"
	case d < time.Hour:
		return "in " + plural(int(d.Round(time.Minute).Minutes()), "minute")
	case d < 48*time.Hour:
		return "in " + plural(int(d.Round(time.Hour).Hours()), "hour")
	default:
		return "in " + plural(int(d.Round(24*time.Hour).Hours()/24), "day")
	}
}

func printSummary(cmd *cobra.Command, tally sessionTally) {
	if tally.reviewed == 0 && tally.skipped == 0 {
		cmd.Println("Session ended before any reviews.")
		return
	}

	summary := fmt.Sprintf("Session complete: %d reviewed, %d correct", tally.reviewed, tally.correct)
	if tally.skipped > 0 {
		summary += fmt.Sprintf(", %d skipped", tally.skipped)
	}
	cmd.Println(summary)

	if tally.reviewed > 0 {
		cmd.Printf("Accuracy: %.0f%%\n", float64(tally.correct)/float64(tally.reviewed)*100)
	}
}

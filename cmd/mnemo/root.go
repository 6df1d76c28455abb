package main

import (
	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mnemo",
		Short: "Spaced-repetition flashcards in your terminal",
		Long: `mnemo manages flashcard decks and schedules reviews with a spaced
repetition algorithm: cards you know well come back rarely, cards you
struggle with come back soon.

All data lives in a single directory (~/.mnemo by default, settable via
MNEMO_STORAGE_DIR or a config.yaml in that directory). Decks can be
exported to portable archives and imported on another machine.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newDeckCmd(),
		newAddCmd(),
		newCardsCmd(),
		newRemoveCmd(),
		newStudyCmd(),
		newStatsCmd(),
		newExportCmd(),
		newImportCmd(),
	)

	return root
}

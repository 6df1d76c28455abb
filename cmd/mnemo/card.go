package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mnemoapp/mnemo/internal/domain"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var (
		category string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "add <deck> <front> <back>",
		Short: "Add a card to a deck",
		Args:  cobra.ExactArgs(3),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			card, err := a.svc.AddCard(ctx, args[0], args[1], args[2], category, tags)
			if err != nil {
				return err
			}
			cmd.Printf("Added card %s to %q\n", card.ID, args[0])
			return nil
		}),
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "card category")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "card tag (repeatable)")
	return cmd
}

func newCardsCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "cards <deck>",
		Short: "List the cards of a deck",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			var (
				cards []*domain.Card
				err   error
			)
			if search != "" {
				cards, err = a.svc.SearchCards(ctx, args[0], search)
			} else {
				cards, err = a.svc.ListCards(ctx, args[0])
			}
			if err != nil {
				return err
			}

			if len(cards) == 0 {
				cmd.Println("No cards found.")
				return nil
			}
			for _, card := range cards {
				printCard(cmd, card)
			}
			cmd.Printf("%s\n", plural(len(cards), "card"))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only show cards containing this text")
	return cmd
}

func printCard(cmd *cobra.Command, card *domain.Card) {
	cmd.Printf("%s\n  Q: %s\n  A: %s\n", card.ID, card.Front, card.Back)
	if card.Category != domain.DefaultCategory {
		cmd.Printf("  Category: %s\n", card.Category)
	}
	if len(card.Tags) > 0 {
		cmd.Printf("  Tags: %s\n", strings.Join(card.Tags, ", "))
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <card-id>",
		Short: "Remove a card",
		Long: `Remove deletes a single card along with its review history. Card ids
are shown by "mnemo cards".`,
		Args: cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid card id %q: %w", args[0], err)
			}
			if err := a.svc.DeleteCard(ctx, id); err != nil {
				return err
			}
			cmd.Println("Card removed.")
			return nil
		}),
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newDeckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}
	cmd.AddCommand(newDeckCreateCmd(), newDeckListCmd(), newDeckDeleteCmd())
	return cmd
}

func newDeckCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new deck",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			deck, err := a.svc.CreateDeck(ctx, args[0], description)
			if err != nil {
				return err
			}
			cmd.Printf("Created deck %q\n", deck.Name)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "deck description")
	return cmd
}

func newDeckListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all decks",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			decks, err := a.svc.ListDecks(ctx)
			if err != nil {
				return err
			}
			if len(decks) == 0 {
				cmd.Println("No decks yet. Create one with: mnemo deck create <name>")
				return nil
			}

			for _, deck := range decks {
				cards, err := a.svc.ListCards(ctx, deck.Name)
				if err != nil {
					return err
				}
				line := fmt.Sprintf("%s (%s)", deck.Name, plural(len(cards), "card"))
				if deck.Description != "" {
					line += " - " + deck.Description
				}
				cmd.Println(line)
			}
			return nil
		}),
	}
}

func newDeckDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a deck and all of its cards",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			name := args[0]

			cards, err := a.svc.ListCards(ctx, name)
			if err != nil {
				return err
			}

			if !yes {
				question := fmt.Sprintf("Delete deck %q and its %s?", name, plural(len(cards), "card"))
				ok, err := confirm(cmd, question)
				if err != nil {
					return err
				}
				if !ok {
					cmd.Println("Aborted.")
					return nil
				}
			}

			if err := a.svc.DeleteDeck(ctx, name); err != nil {
				return err
			}
			cmd.Printf("Deleted deck %q\n", name)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

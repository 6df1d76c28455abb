package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var jsonPath string

	cmd := &cobra.Command{
		Use:   "export <deck>",
		Short: "Export a deck to a portable archive",
		Long: `Export writes a deck, its cards, and their review schedule to a single
file. By default the deck is saved as a compressed archive in the managed
archive directory, with a timestamped backup of any previous export. With
--json a plain JSON file is written to the given path instead.`,
		Args: cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			path, err := a.svc.ExportDeck(ctx, args[0], jsonPath)
			if err != nil {
				return err
			}
			cmd.Printf("Exported %q to %s\n", args[0], path)
			return nil
		}),
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "write plain JSON to this path instead of a managed archive")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [path]",
		Short: "Import a deck archive",
		Long: `Import reads a deck archive (compressed or plain JSON) and creates its
deck, cards, and review schedule. The argument is a file path or the name
of an archive in the managed directory; without an argument the managed
archives are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listArchives(ctx, a, cmd)
			}

			path, err := resolveArchivePath(ctx, a, args[0])
			if err != nil {
				return err
			}

			deck, err := a.svc.ImportDeck(ctx, path)
			if err != nil {
				return err
			}

			cards, err := a.svc.ListCards(ctx, deck.Name)
			if err != nil {
				return err
			}
			cmd.Printf("Imported deck %q with %s\n", deck.Name, plural(len(cards), "card"))
			return nil
		}),
	}
}

// resolveArchivePath accepts either a filesystem path or the bare name of
// an archive in the managed directory.
func resolveArchivePath(ctx context.Context, a *app, raw string) (string, error) {
	if _, err := os.Stat(raw); err == nil {
		return raw, nil
	}

	infos, err := a.svc.ListArchives(ctx)
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if info.Name == raw {
			return info.Path, nil
		}
	}

	// Let the import report the missing file.
	return raw, nil
}

func listArchives(ctx context.Context, a *app, cmd *cobra.Command) error {
	infos, err := a.svc.ListArchives(ctx)
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		cmd.Println("No archives yet. Create one with: mnemo export <deck>")
		return nil
	}

	cmd.Println("Available archives:")
	for _, info := range infos {
		cmd.Printf("  %-30s %10s  %s\n",
			info.Name, formatSize(info.Size), info.Modified.Local().Format("2006-01-02 15:04"))
	}
	cmd.Println()
	cmd.Println("Import one with: mnemo import <name>")
	return nil
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

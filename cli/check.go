package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newCheckCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Show vector store statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()
			return runCheck(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
}

func runCheck(ctx context.Context, a *app, out io.Writer) error {
	stats, err := a.rag.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read collection stats: %w", err)
	}
	fmt.Fprintf(out, "Collection: %s\n", stats.CollectionName)
	fmt.Fprintf(out, "Total chunks: %d\n", stats.TotalChunks)
	if stats.TotalChunks == 0 {
		fmt.Fprintln(out, "Warning: the collection is empty, run `portfolio-rag seed` first.")
	}
	return nil
}

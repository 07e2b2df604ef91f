package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type seedFlags struct {
	test     bool
	reset    bool
	dataFile string
	yes      bool
	watch    bool
}

func newSeedCommand(flags *rootFlags) *cobra.Command {
	sf := &seedFlags{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Index the case corpus into the vector store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()
			return runSeed(ctx, a, sf, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&sf.test, "test", false, "index the fallback (test) corpus instead of the main one")
	cmd.Flags().BoolVar(&sf.reset, "reset", false, "clear the collection before indexing")
	cmd.Flags().StringVar(&sf.dataFile, "data-file", "", "corpus file or directory to index")
	cmd.Flags().BoolVarP(&sf.yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVar(&sf.watch, "watch", false, "keep running and re-index when the corpus file changes")
	return cmd
}

func runSeed(ctx context.Context, a *app, sf *seedFlags, in io.Reader, out io.Writer) error {
	path := a.cfg.Ingest.DataFilePath()
	switch {
	case sf.dataFile != "":
		path = sf.dataFile
	case sf.test:
		path = a.cfg.Ingest.FallbackFilePath()
	}

	before, err := a.index.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to read collection stats: %w", err)
	}
	fmt.Fprintf(out, "Collection %q: %d chunks\n", a.index.Name(), before)

	if sf.reset {
		if before > 0 && !sf.yes && !confirm(in, out, fmt.Sprintf("Delete all %d chunks from %q?", before, a.index.Name())) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		if err := a.index.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset collection: %w", err)
		}
		fmt.Fprintln(out, "Collection cleared.")
	} else if before > 0 && !sf.yes {
		if !confirm(in, out, fmt.Sprintf("Collection already has %d chunks. Add more?", before)) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	fmt.Fprintf(out, "Indexing %s\n", path)
	report, err := a.indexer.IngestFile(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Indexed %d documents into %d chunks (%d skipped)\n", report.Documents, report.Chunks, report.Skipped)

	after, err := a.index.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to read collection stats: %w", err)
	}
	fmt.Fprintf(out, "Collection %q: %d chunks\n", a.index.Name(), after)

	if !sf.watch {
		return nil
	}
	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", path)
	if err := a.indexer.WatchCorpus(ctx, path); err != nil {
		a.logger.Error("corpus watcher stopped", zap.Error(err))
		return err
	}
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

var (
	ingestRebuild bool
	ingestWatch   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build or refresh the vector index from the docs directory",
	Long: `Load every markdown file under the docs directory, split it into
overlapping chunks, embed each chunk and store it in the vector index.

Chunks already present in the index are skipped, so re-running ingest only
embeds new content. Use --rebuild to clear the index first. With --watch the
command stays running and rebuilds the index whenever a markdown file
changes.`,
	Example: `  chatdocs ingest
  chatdocs ingest --rebuild
  chatdocs ingest --docs ./loopdocs/docs --watch`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestRebuild, "rebuild", false, "clear the index before ingesting")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "rebuild the index when documentation changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	settings, err := effectiveSettings()
	if err != nil {
		return err
	}
	svc, err := backend.Ingest(settings)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := ingestOnce(ctx, cmd, svc, ingestRebuild); err != nil {
		return err
	}
	if !ingestWatch {
		return nil
	}
	return watchAndIngest(ctx, cmd, settings, svc)
}

func ingestOnce(ctx context.Context, cmd *cobra.Command, svc driving.IngestService, rebuild bool) error {
	progress, finish := newProgress(cmd.ErrOrStderr(), "embedding")
	stats, err := svc.Ingest(ctx, driving.IngestOptions{Rebuild: rebuild, Progress: progress})
	finish()
	if err != nil {
		return err
	}
	printIngestStats(cmd.OutOrStdout(), stats)
	return nil
}

// watchAndIngest rebuilds the index after each batch of changes until the
// context is cancelled. A failed rebuild is reported and watching continues.
func watchAndIngest(ctx context.Context, cmd *cobra.Command, settings *domain.AppSettings, svc driving.IngestService) error {
	watcher, err := backend.Watcher(settings)
	if err != nil {
		return err
	}
	changes, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	s := newStyles()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, s.Muted.Render(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", settings.Docs.Path)))

	for paths := range changes {
		logger.Info("changed: %v", paths)
		fmt.Fprintf(out, "%d file(s) changed, rebuilding index\n", len(paths))
		if err := ingestOnce(ctx, cmd, svc, true); err != nil {
			printError(cmd.ErrOrStderr(), err)
		}
	}
	return nil
}

func printIngestStats(w io.Writer, stats *domain.IngestStats) {
	s := newStyles()
	fmt.Fprintln(w, s.Success.Render("Ingestion complete"))
	fmt.Fprintf(w, "  Documents: %d\n", stats.Documents)
	fmt.Fprintf(w, "  Chunks:    %d\n", stats.Chunks)
	fmt.Fprintf(w, "  Added:     %d\n", stats.Added)
	fmt.Fprintf(w, "  Skipped:   %d\n", stats.Skipped)
	if stats.Rebuilt {
		fmt.Fprintln(w, "  Index was rebuilt")
	}
	fmt.Fprintf(w, "  Took:      %s\n", stats.Duration.Round(time.Millisecond))
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
)

// inspectPreviewLen is the number of characters shown per sampled chunk.
const inspectPreviewLen = 250

var (
	inspectLimit int
	inspectJSON  bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show vector index statistics and sample chunks",
	Long: `Print the index location, record count, distinct sources and the
embedding model it was built with, followed by a sample of stored chunks.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "n", driving.DefaultPeekLimit, "number of sample chunks to show")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print statistics as JSON")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	settings, err := effectiveSettings()
	if err != nil {
		return err
	}
	svc, err := backend.Index(settings)
	if err != nil {
		return err
	}

	stats, err := svc.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if inspectJSON {
		return writeJSON(cmd.OutOrStdout(), stats)
	}

	chunks, err := svc.Peek(cmd.Context(), inspectLimit)
	if err != nil {
		return err
	}
	printInspect(cmd.OutOrStdout(), stats, chunks)
	return nil
}

func printInspect(w io.Writer, stats *domain.IndexStats, chunks []domain.Chunk) {
	s := newStyles()
	fmt.Fprintln(w, s.Title.Render("Vector index"))
	fmt.Fprintf(w, "  Location:   %s\n", stats.Location)
	fmt.Fprintf(w, "  Records:    %d\n", stats.Count)
	fmt.Fprintf(w, "  Sources:    %d\n", stats.Sources)
	fmt.Fprintf(w, "  Model:      %s (%d dims)\n", stats.EmbeddingModel, stats.Dimensions)
	if !stats.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "  Updated:    %s\n", stats.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}

	if len(chunks) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Heading.Render("Sample chunks:"))
	for i := range chunks {
		fmt.Fprintf(w, "  [%s] %s\n", s.Source.Render(chunks[i].Source()), chunks[i].Preview(inspectPreviewLen))
	}
}

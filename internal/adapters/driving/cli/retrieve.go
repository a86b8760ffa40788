package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
)

// retrievePreviewLen is the number of characters shown per retrieved chunk.
const retrievePreviewLen = 300

var (
	retrieveK    int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <query>",
	Short: "Show the chunks most similar to a query",
	Long: `Embed the query and print the top-k chunks from the vector index with
their similarity scores. No language model is called, which makes this
useful for checking what context "ask" would receive.`,
	Example: `  chatdocs retrieve "pump pairing"
  chatdocs retrieve --k 10 --json "carb ratio"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVar(&retrieveK, "k", 0, "number of chunks to retrieve (default retrieval.k)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}

	settings, err := effectiveSettings()
	if err != nil {
		return err
	}
	svc, err := backend.Retriever(settings)
	if err != nil {
		return err
	}

	result, err := svc.Retrieve(cmd.Context(), query, retrieveK)
	if err != nil {
		return err
	}

	if retrieveJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	printRetrieval(cmd.OutOrStdout(), result)
	return nil
}

func printRetrieval(w io.Writer, result *domain.RetrievalResult) {
	s := newStyles()
	if result.Len() == 0 {
		fmt.Fprintln(w, s.Muted.Render("No matching chunks"))
		return
	}
	for i, hit := range result.Chunks {
		fmt.Fprintf(w, "%d. %s %s\n", i+1,
			s.Source.Render(fmt.Sprintf("%s#%d", hit.Chunk.Source(), hit.Chunk.Position)),
			s.Score.Render(fmt.Sprintf("(score %.4f)", hit.Score)))
		fmt.Fprintf(w, "   %s\n\n", hit.Chunk.Preview(retrievePreviewLen))
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
)

var (
	askK         int
	askJSON      bool
	askNoHistory bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the documentation",
	Long: `Retrieve the chunks most relevant to the question, then ask the
language model to answer using only that context. The answer is printed
followed by the source files it was grounded on.

Each exchange is appended to the session history unless --no-history is
given. Use "chatdocs history" to review it.`,
	Example: `  chatdocs ask "How do I set up a new pump?"
  chatdocs ask --k 5 "What does the closed loop algorithm do?"
  chatdocs ask --json "What is a bolus?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askK, "k", 0, "number of chunks to retrieve (default retrieval.k)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer as JSON")
	askCmd.Flags().BoolVar(&askNoHistory, "no-history", false, "do not record this exchange")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	settings, err := effectiveSettings()
	if err != nil {
		return err
	}
	svc, err := backend.Ask(settings)
	if err != nil {
		return err
	}

	var recorder driving.TranscriptRecorder
	if !askNoHistory {
		log, err := backend.Transcript()
		if err != nil {
			return err
		}
		recorder = log
	}

	answer, err := svc.Ask(cmd.Context(), query, askK, recorder)
	if err != nil {
		return err
	}

	if askJSON {
		return writeJSON(cmd.OutOrStdout(), answer)
	}
	printAnswer(cmd.OutOrStdout(), answer)
	return nil
}

func printAnswer(w io.Writer, answer *domain.Answer) {
	s := newStyles()
	fmt.Fprintln(w, strings.TrimSpace(answer.Text))
	fmt.Fprintln(w)
	if len(answer.Sources) == 0 {
		fmt.Fprintln(w, s.Muted.Render("No sources"))
		return
	}
	fmt.Fprintln(w, s.Heading.Render("Sources:"))
	for _, src := range answer.Sources {
		fmt.Fprintf(w, "  - %s\n", s.Source.Render(src))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previous questions and answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := requireBackend()
		if err != nil {
			return err
		}
		log, err := b.Transcript()
		if err != nil {
			return err
		}
		turns, err := log.Turns(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		s := newStyles()
		if len(turns) == 0 {
			fmt.Fprintln(out, s.Muted.Render("No history yet"))
			return nil
		}
		if historyLimit > 0 && len(turns) > historyLimit {
			turns = turns[len(turns)-historyLimit:]
		}
		for _, turn := range turns {
			fmt.Fprintf(out, "%s %s\n", s.Muted.Render(turn.AskedAt.Local().Format("2006-01-02 15:04")),
				s.Heading.Render("Q: "+turn.Question))
			fmt.Fprintf(out, "A: %s\n", turn.Answer)
			for _, src := range turn.Sources {
				fmt.Fprintf(out, "   - %s\n", s.Source.Render(src))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of recent turns to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models offered by the configured LLM provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, err := effectiveSettings()
		if err != nil {
			return err
		}
		svc, err := backend.Models(settings)
		if err != nil {
			return err
		}
		models, err := svc.ListModels(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		s := newStyles()
		fmt.Fprintln(out, s.Title.Render(fmt.Sprintf("Models (%s)", settings.LLM.Provider)))
		for _, m := range models {
			marker := "  "
			if m == settings.LLM.Model {
				marker = "* "
			}
			fmt.Fprintf(out, "%s%s\n", marker, m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/iatro-health/iatro/internal/console"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the symptoms a new session would ask about first",
	Long: `Rank symptoms from the prior beliefs alone, with a plain-language
explanation and the number of diseases each symptom has a positive
likelihood ratio for. Nothing is recorded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")
		ctx := cmd.Context()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		engine, err := loadEngine(ctx, st)
		if err != nil {
			return err
		}
		console.Preview(ctx, cmd.OutOrStdout(), engine, newExplainer(ctx, st), n)
		return nil
	},
}

func init() {
	previewCmd.Flags().IntP("count", "n", 10, "Number of symptoms to show")
}

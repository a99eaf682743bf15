package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <symptom>",
	Short: "Explain a symptom in plain language",
	Long: `Print the plain-language explanation shown next to a symptom during a
session. Built-in explanations are used first; otherwise the configured
LLM provider is asked and its answer cached.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		symptom := strings.Join(args, " ")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		e := newExplainer(ctx, st).Explain(ctx, symptom)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, e.Text)
		if e.Model != "" {
			fmt.Fprintf(out, "(source: %s, model: %s)\n", e.Source, e.Model)
		} else {
			fmt.Fprintf(out, "(source: %s)\n", e.Source)
		}
		return nil
	},
}

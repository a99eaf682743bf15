package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iatro-health/iatro/internal/knowledge"
	"github.com/iatro-health/iatro/internal/store"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect and manage the knowledge base",
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List diseases with their evidence-backed symptoms",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		b := engine.Base()

		diseases := make([]knowledge.Disease, len(b.Diseases))
		copy(diseases, b.Diseases)
		sort.SliceStable(diseases, func(i, j int) bool { return diseases[i].Name < diseases[j].Name })

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-36s  %s\n", "Disease", "Evidence-backed symptoms (pos LR)")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, d := range diseases {
			syms := b.Evidence.BackedSymptoms(d.ID)
			list := "(none)"
			if len(syms) > 0 {
				list = strings.Join(syms, ", ")
			}
			fmt.Fprintf(out, "%-36s  %s\n", truncate(d.Name, 36), list)
		}
		return nil
	},
}

var kbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base size and per-disease evidence depth",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		b := engine.Base()
		s := b.Stats()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Diseases:        %d\n", s.Diseases)
		fmt.Fprintf(out, "Symptoms:        %d\n", s.Symptoms)
		fmt.Fprintf(out, "Evidence pairs:  %d\n", s.EvidencePairs)
		fmt.Fprintf(out, "Positive LRs:    %d\n", s.PositiveLRs)
		if len(b.Excluded) > 0 {
			names := make([]string, len(b.Excluded))
			for i, d := range b.Excluded {
				names[i] = d.Name
			}
			fmt.Fprintf(out, "No prior:        %d (%s)\n", len(names), strings.Join(names, ", "))
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "Symptoms by cluster:")
		for _, cs := range engine.ClusterSizes() {
			fmt.Fprintf(out, "  %-12s %d\n", cs.Cluster, cs.Symptoms)
		}
		fmt.Fprintln(out)

		fmt.Fprintf(out, "%-36s  %6s  %8s  %8s  %8s  %8s\n",
			"Disease", "Prior", "Severity", "Backed", "Required", "Scarcity")
		fmt.Fprintln(out, strings.Repeat("─", 86))
		for _, d := range b.Diseases {
			fmt.Fprintf(out, "%-36s  %6.3f  %8.2f  %8d  %8d  %8.3f\n",
				truncate(d.Name, 36), b.Priors[d.ID], d.Severity(),
				b.Evidence.BackedCount(d.ID), engine.RequiredHits(d.ID), engine.Scarcity(d.ID))
		}
		return nil
	},
}

var kbImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import diseases, priors and evidence from a YAML document",
	Long: `Import a knowledge base document into the database. Diseases are
matched by name; priors and evidence of an imported disease replace what
was stored before.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		doc, err := knowledge.ParseDocument(data)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := st.KnowledgeRepo().Import(cmd.Context(), doc)
		if err != nil {
			return err
		}
		printImport(cmd, res)
		return nil
	},
}

var kbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled sample knowledge base into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := st.KnowledgeRepo().Seed(cmd.Context())
		if err != nil {
			return err
		}
		printImport(cmd, res)
		return nil
	},
}

func printImport(cmd *cobra.Command, res store.ImportResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d diseases (%d refreshed), %d new symptoms, %d evidence rows, %d priors.\n",
		res.Diseases, res.Refreshed, res.Symptoms, res.Evidence, res.Priors)
}

func init() {
	kbCmd.AddCommand(kbListCmd)
	kbCmd.AddCommand(kbStatsCmd)
	kbCmd.AddCommand(kbImportCmd)
	kbCmd.AddCommand(kbSeedCmd)
}

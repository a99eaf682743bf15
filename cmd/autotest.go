package cmd

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iatro-health/iatro/internal/autotest"
)

var autotestCmd = &cobra.Command{
	Use:   "autotest",
	Short: "Simulate sessions for every disease and report convergence",
	Long: `For each disease with enough evidence-backed symptoms, simulate a child
who has it. The target scenario answers a live session by confirming the
first offered symptom that favors the disease; the replay scenarios
(optimal, suboptimal, adversarial, random) confirm a fixed symptom path.`,
	RunE: runAutotest,
}

func init() {
	f := autotestCmd.Flags()
	f.Int("max-steps", 6, "Maximum confirmed symptoms per simulated session")
	f.Int("min-evidence", 2, "Skip diseases with fewer evidence-backed symptoms")
	f.String("only", "", "Comma-separated disease names to test")
	f.StringSlice("scenario", []string{string(autotest.ScenarioTarget)},
		"Scenarios to run: target, optimal, suboptimal, adversarial, random, or all")
	f.Int("runs", 3, "Runs per seeded scenario (suboptimal, random)")
	f.Uint64("seed", 1, "Seed for the suboptimal and random scenarios")
	f.Int("workers", 0, "Diseases simulated in parallel (default GOMAXPROCS)")
	f.StringP("output", "o", "", "Write a JSON report to this file")
	f.Bool("verbose", false, "Print every run, not just the per-disease summary")
}

func runAutotest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	f := cmd.Flags()
	opts := autotest.Options{}
	opts.MaxSteps, _ = f.GetInt("max-steps")
	opts.MinEvidence, _ = f.GetInt("min-evidence")
	opts.RandomRuns, _ = f.GetInt("runs")
	opts.Seed, _ = f.GetUint64("seed")
	opts.Workers, _ = f.GetInt("workers")
	if only, _ := f.GetString("only"); only != "" {
		opts.Only = strings.Split(only, ",")
	}
	names, _ := f.GetStringSlice("scenario")
	scenarios, err := parseScenarios(names)
	if err != nil {
		return err
	}
	opts.Scenarios = scenarios
	output, _ := f.GetString("output")
	verbose, _ := f.GetBool("verbose")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	engine, err := loadEngine(ctx, st)
	if err != nil {
		return err
	}

	rep, err := autotest.NewRunner(engine, opts, logger).Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range rep.Unknown {
		fmt.Fprintf(out, "Unknown disease: %s\n", name)
	}

	if hasScenario(opts.Scenarios, autotest.ScenarioTarget) {
		fmt.Fprintf(out, "\nAuto-test summary (max steps = %d):\n", rep.MaxSteps)
		fmt.Fprintf(out, "%-36s  %5s  %-9s  %-36s  %6s  %s\n",
			"Disease", "Steps", "Finalized", "Top disease", "Top P", "Hits/Req")
		fmt.Fprintln(out, strings.Repeat("─", 110))
		for _, r := range rep.Results {
			if r.Scenario != autotest.ScenarioTarget {
				continue
			}
			fmt.Fprintf(out, "%-36s  %5d  %-9v  %-36s  %6.3f  %d/%d\n",
				truncate(r.Disease, 36), r.Steps, r.Finalized, truncate(r.TopDisease, 36), r.TopBelief, r.Hits, r.Required)
		}
		successes, runs := rep.TargetSuccess()
		fmt.Fprintf(out, "\nSuccess: %d/%d (skipped diseases with <%d evidence-backed symptoms)\n",
			successes, runs, rep.MinEvidence)
	}

	if verbose {
		fmt.Fprintln(out, "\nRuns")
		fmt.Fprintln(out, strings.Repeat("─", 110))
		for _, r := range rep.Results {
			fmt.Fprintf(out, "%-30s  %-11s  conv=%-5v  steps=%-2d  top=%s (%.3f)  %s\n",
				truncate(r.Disease, 30), r.Scenario, r.Converged, r.Steps, r.TopDisease, r.TopBelief, r.Reason)
			for _, e := range r.Errors {
				fmt.Fprintf(out, "    error: %s\n", e)
			}
			for _, w := range r.Warnings {
				fmt.Fprintf(out, "    warning: %s\n", w)
			}
		}
	}

	fmt.Fprintln(out, "\nPer-disease metrics")
	fmt.Fprintln(out, strings.Repeat("─", 110))
	fmt.Fprintf(out, "%-36s  %4s  %6s  %9s  %9s  %8s  %s\n",
		"Disease", "Runs", "Conv%", "Avg steps", "Min/Max", "Avg conf", "Failure modes")
	for _, m := range rep.Diseases {
		fmt.Fprintf(out, "%-36s  %4d  %5.1f%%  %9.2f  %4d/%-4d  %8.3f  %s\n",
			truncate(m.Disease, 36), m.Runs, m.ConvergenceRate*100, m.AvgSteps,
			m.MinSteps, m.MaxSteps, m.AvgConfidence, formatModes(m.FailureModes))
	}

	s := rep.Summary
	fmt.Fprintf(out, "\nTotal runs: %d  Converged: %d (%.1f%%)  Avg steps: %.2f  Avg confidence: %.3f  Anomalies: %d\n",
		s.Runs, s.Converged, s.ConvergenceRate*100, s.AvgSteps, s.AvgConfidence, len(rep.Anomalies))

	if failures := rep.Failures(); len(failures) > 0 {
		fmt.Fprintf(out, "\nFailures by disease:\n")
		for i, fd := range failures {
			if i == 10 {
				break
			}
			fmt.Fprintf(out, "  %s: %d\n", fd.Disease, fd.Count)
		}
	}

	if output != "" {
		fh, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer fh.Close()
		if err := rep.WriteJSON(fh); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nDetailed report saved to: %s\n", output)
	}
	return nil
}

func parseScenarios(names []string) ([]autotest.Scenario, error) {
	var out []autotest.Scenario
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "all" {
			return autotest.AllScenarios, nil
		}
		sc, ok := autotest.ParseScenario(n)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", n)
		}
		out = append(out, sc)
	}
	return out, nil
}

func hasScenario(list []autotest.Scenario, sc autotest.Scenario) bool {
	return slices.Contains(list, sc)
}

func formatModes(modes map[string]int) string {
	if len(modes) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(modes))
	for k := range modes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, modes[k])
	}
	return strings.Join(parts, ", ")
}

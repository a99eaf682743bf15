package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iatro-health/iatro/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded diagnostic sessions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		sessions, err := s.EventRepo().ListSessions(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-16s  %-8s  %-10s  %5s  %-30s  %6s\n",
			"ID", "Started", "Preset", "Outcome", "Steps", "Top diagnosis", "P")
		fmt.Fprintln(out, strings.Repeat("─", 124))
		for _, rec := range sessions {
			outcome := rec.Outcome
			if outcome == "" {
				outcome = rec.Status
			}
			fmt.Fprintf(out, "%-36s  %-16s  %-8s  %-10s  %5d  %-30s  %6.3f\n",
				rec.ID,
				rec.StartedAt.Local().Format("2006-01-02 15:04"),
				rec.Preset,
				outcome,
				rec.Steps,
				truncate(rec.TopDisease, 30),
				rec.TopBelief,
			)
		}
		return nil
	},
}

var historyViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one session and its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		rec, steps, err := s.EventRepo().GetSession(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if rec == nil {
			return fmt.Errorf("session %s not found", args[0])
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Session:     %s\n", rec.ID)
		fmt.Fprintf(out, "Started:     %s\n", rec.StartedAt.Local().Format("2006-01-02 15:04:05"))
		if !rec.EndedAt.IsZero() {
			fmt.Fprintf(out, "Ended:       %s\n", rec.EndedAt.Local().Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintf(out, "Preset:      %s\n", rec.Preset)
		fmt.Fprintf(out, "Status:      %s\n", rec.Status)
		if rec.Outcome != "" {
			fmt.Fprintf(out, "Outcome:     %s\n", rec.Outcome)
		}
		if rec.Reason != "" {
			fmt.Fprintf(out, "Reason:      %s\n", rec.Reason)
		}
		if rec.TopDisease != "" {
			fmt.Fprintf(out, "Diagnosis:   %s (P=%.3f, confidence %.2f)\n", rec.TopDisease, rec.TopBelief, rec.Confidence)
		}

		if len(steps) == 0 {
			return nil
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%4s  %-8s  %-40s  %6s  %6s\n", "Step", "Kind", "Symptoms", "Top P", "Conf")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		for _, st := range steps {
			syms := strings.Join(st.Symptoms, ", ")
			if syms == "" {
				syms = "-"
			}
			fmt.Fprintf(out, "%4d  %-8s  %-40s  %6.3f  %6.2f\n",
				st.Step, st.Kind, truncate(syms, 40), st.TopBelief, st.Confidence)
		}
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyViewCmd)
}

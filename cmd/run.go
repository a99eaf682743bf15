package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iatro-health/iatro/internal/console"
	"github.com/iatro-health/iatro/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive diagnostic session",
	Long: `Offer the most informative symptoms in small batches and update the
ranked diagnoses after every answer. Answer with the number of a symptom
the child HAS, 0 if none are present, s to skip the batch or q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd)
	},
}

func init() {
	runCmd.Flags().Int("top", 3, "Number of diagnoses shown after each answer")
	runCmd.Flags().Int("final", 5, "Number of diagnoses in the final summary")
	runCmd.Flags().Bool("no-history", false, "Do not record the session in the database")
}

// runSession opens the store, builds the engine and drives one session
// on stdin/stdout.
func runSession(cmd *cobra.Command) error {
	ctx := cmd.Context()
	top, _ := cmd.Flags().GetInt("top")
	final, _ := cmd.Flags().GetInt("final")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	engine, err := loadEngine(ctx, st)
	if err != nil {
		return err
	}

	opts := console.Options{
		Engine:    engine,
		Explainer: newExplainer(ctx, st),
		Events:    st.EventRepo(),
		Preset:    cfg.Engine.Preset,
		In:        os.Stdin,
		Out:       cmd.OutOrStdout(),
		Log:       logger,
		TopN:      top,
		FinalN:    final,
	}
	if noHistory {
		opts.Events = nil
	}

	res, err := console.New(opts).Run(ctx)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	logging.FromContext(ctx).Info().
		Str("session", res.SessionID).
		Str("outcome", res.Outcome).
		Str("reason", string(res.Reason)).
		Int("steps", res.Steps).
		Msg("session ended")
	return nil
}

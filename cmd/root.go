package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iatro-health/iatro/internal/config"
	"github.com/iatro-health/iatro/internal/logging"
)

var (
	// cfg and logger are resolved once per invocation in PersistentPreRunE.
	cfg    *config.Config
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "iatro",
	Short: "Adaptive pediatric symptom checker",
	Long: `Iatro asks about the symptoms a child HAS and ranks likely diagnoses
using likelihood ratios from a pediatric knowledge base.

It is a decision-support tool, not a substitute for a clinician.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/iatro/config.yaml)")
	pf.String("db", "", "Path to SQLite database file (overrides IATRO_DB env var)")
	pf.String("kb", "", "Read the knowledge base from a YAML file instead of the database")
	pf.String("preset", "", "Engine preset: strict or lenient")
	pf.String("log-level", "", "Log level: trace, debug, info, warn, error")
	pf.String("log-format", "", "Log format: console or json")
	pf.String("llm", "", "LLM provider for explanations: none, anthropic, openai, gemini, mock")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(autotestCmd)
	rootCmd.AddCommand(kbCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration with flag overrides and installs the logger.
func setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	var o config.Overrides
	o.DB, _ = flags.GetString("db")
	o.KB, _ = flags.GetString("kb")
	o.Preset, _ = flags.GetString("preset")
	o.LogLevel, _ = flags.GetString("log-level")
	o.LogFormat, _ = flags.GetString("log-format")
	o.LLM, _ = flags.GetString("llm")

	c, err := config.Load(path, o)
	if err != nil {
		return err
	}
	l, err := logging.Init(logging.Options{Level: c.Log.Level, Format: c.Log.Format})
	if err != nil {
		return err
	}
	cfg, logger = c, l
	cmd.SetContext(logger.WithContext(cmd.Context()))
	logger.Debug().
		Str("preset", c.Engine.Preset).
		Str("llm", c.LLM.Provider).
		Msg("configuration loaded")
	return nil
}

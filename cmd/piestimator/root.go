package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/branched-services/go-pi/internal/config"
	"github.com/branched-services/go-pi/internal/observability"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "piestimator",
		Short: "Estimate π with stochastic, geometric and analytic methods",
		Long: `piestimator estimates π with one of seven methods, compares the spread
of the stochastic ones, or serves both over HTTP.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (overrides "+config.FileEnv+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(
		newEstimateCmd(a),
		newCompareCmd(a),
		newMethodsCmd(a),
		newServeCmd(a),
	)

	return root
}

// setup loads configuration and builds the logger. Logs go to stderr so
// results on stdout stay machine readable.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = observability.NewLoggerTo(a.stderr, cfg.LogLevel, cfg.LogFormat)
	return nil
}

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/branched-services/go-pi/pkg/compare"
	"github.com/branched-services/go-pi/pkg/estimator"
	"github.com/branched-services/go-pi/pkg/render"
)

type compareFlags struct {
	sampleSize  int
	simulations int
	methods     []string
	seed        uint64
	format      string
	plot        bool
	plotDir     string
}

func newCompareCmd(a *app) *cobra.Command {
	var f compareFlags

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the spread of the stochastic methods",
		Long: `Run every stochastic method repeatedly at a fixed sample size and report the
standard deviation of its estimates. Lower is better.`,
		Example: `  piestimator compare -n 1000 --simulations 100
  piestimator compare --methods buffon,laplace -o markdown --plot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCompare(cmd, f)
		},
	}

	cmd.Flags().IntVarP(&f.sampleSize, "sample-size", "n", 1000, "Samples per run")
	cmd.Flags().IntVarP(&f.simulations, "simulations", "s", 100, "Runs per method")
	cmd.Flags().StringSliceVarP(&f.methods, "methods", "m", nil, "Methods to compare (default all stochastic)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Seed for a reproducible comparison (0 means random)")
	cmd.Flags().StringVarP(&f.format, "output", "o", "text", "Output format: text, markdown or json")
	cmd.Flags().BoolVar(&f.plot, "plot", false, "Write a histogram per method to the plot directory")
	cmd.Flags().StringVar(&f.plotDir, "plot-dir", "", "Directory for plots (default from config)")

	return cmd
}

func (a *app) runCompare(cmd *cobra.Command, f compareFlags) error {
	switch f.format {
	case "text", "markdown", "json":
	default:
		return fmt.Errorf("%w: output must be text, markdown or json, got %q", estimator.ErrInvalidRequest, f.format)
	}

	opts := []compare.Option{
		compare.WithLogger(a.logger),
		compare.WithWarnThreshold(a.cfg.CompareWarnThreshold),
	}
	if f.seed != 0 {
		opts = append(opts, compare.WithSeed(f.seed))
	}

	report, err := compare.Run(cmd.Context(), compare.Config{
		SampleSize:  f.sampleSize,
		Simulations: f.simulations,
		Methods:     f.methods,
	}, opts...)
	if err != nil {
		return err
	}

	if f.plot {
		dir := a.cfg.PlotDir
		if f.plotDir != "" {
			dir = f.plotDir
		}
		if _, err := render.New(dir, render.WithLogger(a.logger)).Histograms(report); err != nil {
			return fmt.Errorf("plotting comparison: %w", err)
		}
	}

	switch f.format {
	case "json":
		return compare.FormatJSON(a.stdout, report)
	case "markdown":
		return a.writeMarkdown(report)
	default:
		compare.FormatText(a.stdout, report)
		return nil
	}
}

// writeMarkdown styles the table with glamour when stdout is a terminal and
// writes it raw otherwise.
func (a *app) writeMarkdown(report *compare.Report) error {
	var buf bytes.Buffer
	compare.FormatMarkdown(&buf, report)

	f, ok := a.stdout.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := a.stdout.Write(buf.Bytes())
		return err
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	styled, err := r.Render(buf.String())
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = fmt.Fprint(a.stdout, styled)
	return err
}

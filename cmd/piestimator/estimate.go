package main

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/branched-services/go-pi/pkg/estimator"
	"github.com/branched-services/go-pi/pkg/render"
)

type estimateFlags struct {
	sampleSize int
	visualize  bool
	params     map[string]string
	seed       uint64
	plotDir    string
	format     string
}

func newEstimateCmd(a *app) *cobra.Command {
	var f estimateFlags

	cmd := &cobra.Command{
		Use:   "estimate <method>",
		Short: "Estimate π with a single method",
		Long: `Estimate π with one method. For chudnovsky the sample size is the number
of significant digits; for newtons it caps the iteration count.`,
		Example: `  piestimator estimate circle-ratio -n 100000
  piestimator estimate chudnovsky -n 1000
  piestimator estimate drunkard -n 5000 --param step_size=0.1 --viz
  piestimator estimate newtons -n 50 --param initial_guess=3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEstimate(cmd, args[0], f)
		},
	}

	cmd.Flags().IntVarP(&f.sampleSize, "sample-size", "n", 1000, "Samples, digits (chudnovsky) or max iterations (newtons)")
	cmd.Flags().BoolVar(&f.visualize, "viz", false, "Render the run to <plot-dir>/<method>.png")
	cmd.Flags().StringToStringVar(&f.params, "param", nil, "Method parameter as key=value (repeatable)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Seed for a reproducible run (0 means random)")
	cmd.Flags().StringVar(&f.plotDir, "plot-dir", "", "Directory for plots (default from config)")
	cmd.Flags().StringVarP(&f.format, "output", "o", "text", "Output format: text or json")

	return cmd
}

func (a *app) runEstimate(cmd *cobra.Command, method string, f estimateFlags) error {
	if f.format != "text" && f.format != "json" {
		return fmt.Errorf("%w: output must be text or json, got %q", estimator.ErrInvalidRequest, f.format)
	}

	params := make(map[string]any, len(f.params))
	for k, v := range a.cfg.ParamsFor(method) {
		params[k] = v
	}
	for k, v := range f.params {
		params[k] = v
	}

	plotDir := a.cfg.PlotDir
	if f.plotDir != "" {
		plotDir = f.plotDir
	}
	renderOpts := []render.Option{render.WithLogger(a.logger)}
	opts := []estimator.Option{estimator.WithLogger(a.logger)}
	if f.seed != 0 {
		renderOpts = append(renderOpts, render.WithSeed(f.seed))
		opts = append(opts, estimator.WithSeed(f.seed))
	}
	renderer := render.New(plotDir, renderOpts...)
	opts = append(opts, estimator.WithRenderer(renderer))

	out, err := estimator.Estimate(cmd.Context(), estimator.Request{
		SampleSize: f.sampleSize,
		Method:     method,
		Visualize:  f.visualize,
		Params:     params,
	}, opts...)
	if err != nil {
		return err
	}

	var plot string
	if f.visualize && out.Method.Visualizable() {
		plot = renderer.Path(out.Method)
	}

	if f.format == "json" {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Method     string  `json:"method"`
			Estimate   float64 `json:"estimate"`
			Digits     string  `json:"digits,omitempty"`
			AbsError   float64 `json:"absError"`
			Trials     int     `json:"trials,omitempty"`
			Hits       int     `json:"hits,omitempty"`
			Iterations int     `json:"iterations,omitempty"`
			Plot       string  `json:"plot,omitempty"`
			Duration   string  `json:"duration"`
		}{
			Method:     string(out.Method),
			Estimate:   out.Value,
			Digits:     exactDigits(out),
			AbsError:   math.Abs(out.Value - math.Pi),
			Trials:     out.Trials,
			Hits:       out.Hits,
			Iterations: iterations(out),
			Plot:       plot,
			Duration:   out.Duration.String(),
		})
	}

	fmt.Fprintf(a.stdout, "Estimated value of pi using %s: %s\n", out.Method, out)
	fmt.Fprintf(a.stdout, "Absolute error: %.3g\n", math.Abs(out.Value-math.Pi))
	if plot != "" {
		fmt.Fprintf(a.stdout, "Plot: %s\n", plot)
	}
	return nil
}

func exactDigits(out *estimator.Outcome) string {
	if out.Exact == nil {
		return ""
	}
	return out.String()
}

// iterations excludes the initial guess.
func iterations(out *estimator.Outcome) int {
	if len(out.Iterates) == 0 {
		return 0
	}
	return len(out.Iterates) - 1
}

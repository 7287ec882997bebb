// Package compare measures the spread of the stochastic π estimators by
// running each of them repeatedly at a fixed sample size.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/branched-services/go-pi/pkg/estimator"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/stat"
)

// DefaultWarnThreshold is the sample_size × simulations workload above which
// Run logs an advisory warning.
const DefaultWarnThreshold = 100_000

// Config describes one comparison.
type Config struct {
	// SampleSize is passed to every estimator run.
	SampleSize int

	// Simulations is the number of runs per method.
	Simulations int

	// Methods restricts the comparison. Empty means every stochastic method.
	Methods []string
}

// Report is the outcome of a comparison, in method order.
type Report struct {
	SampleSize  int
	Simulations int
	Results     []MethodResult
	Duration    time.Duration
}

// MethodResult aggregates the runs of one method.
type MethodResult struct {
	Method    estimator.Method
	Mean      float64
	StdDev    float64
	Estimates []float64
}

// StdDevs returns the method → standard deviation mapping.
func (r *Report) StdDevs() map[estimator.Method]float64 {
	out := make(map[estimator.Method]float64, len(r.Results))
	for _, res := range r.Results {
		out[res.Method] = res.StdDev
	}
	return out
}

// Option configures Run.
type Option func(*runner)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) {
		r.logger = l
	}
}

// WithWarnThreshold overrides DefaultWarnThreshold.
func WithWarnThreshold(n int) Option {
	return func(r *runner) {
		r.warnThreshold = n
	}
}

// WithSeed makes the comparison reproducible: every run gets a seed drawn
// from a generator seeded with seed.
func WithSeed(seed uint64) Option {
	return func(r *runner) {
		r.seeds = rand.New(rand.NewPCG(seed, ^seed))
	}
}

// WithProgressInterval sets how often progress is logged.
func WithProgressInterval(d time.Duration) Option {
	return func(r *runner) {
		r.progress = &rate.Sometimes{First: 1, Interval: d}
	}
}

type runner struct {
	logger        *slog.Logger
	warnThreshold int
	seeds         *rand.Rand
	progress      *rate.Sometimes
}

// exceeds reports whether samples*simulations > threshold without forming
// the product. simulations must be positive.
func exceeds(samples, simulations, threshold int) bool {
	return samples > threshold/simulations
}

// Run drives every selected method Simulations times, sequentially, each
// run on a freshly constructed estimator with visualization off.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Report, error) {
	r := &runner{
		logger:        slog.Default(),
		warnThreshold: DefaultWarnThreshold,
		progress:      &rate.Sometimes{First: 1, Interval: 2 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "compare")

	methods, err := selectMethods(cfg.Methods)
	if err != nil {
		return nil, err
	}
	if cfg.SampleSize < 1 {
		return nil, fmt.Errorf("%w: sample size must be at least 1, got %d", estimator.ErrInvalidRequest, cfg.SampleSize)
	}
	if cfg.Simulations < 1 {
		return nil, fmt.Errorf("%w: simulations must be at least 1, got %d", estimator.ErrInvalidRequest, cfg.Simulations)
	}

	if exceeds(cfg.SampleSize, cfg.Simulations, r.warnThreshold) {
		r.logger.Warn("large sample sizes or simulation counts may take a long time to run",
			"sample_size", cfg.SampleSize,
			"simulations", cfg.Simulations,
			"threshold", r.warnThreshold,
		)
	}

	start := time.Now()
	report := &Report{
		SampleSize:  cfg.SampleSize,
		Simulations: cfg.Simulations,
		Results:     make([]MethodResult, 0, len(methods)),
	}

	for _, m := range methods {
		res, err := r.runMethod(ctx, m, cfg)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (r *runner) runMethod(ctx context.Context, m estimator.Method, cfg Config) (MethodResult, error) {
	estimates := make([]float64, cfg.Simulations)
	req := estimator.Request{SampleSize: cfg.SampleSize, Method: string(m)}

	for i := range estimates {
		opts := []estimator.Option{estimator.WithLogger(r.logger)}
		if r.seeds != nil {
			opts = append(opts, estimator.WithSeed(r.seeds.Uint64()))
		}

		est, err := estimator.New(req, opts...)
		if err != nil {
			return MethodResult{}, err
		}
		out, err := est.Estimate(ctx)
		if err != nil {
			return MethodResult{}, fmt.Errorf("%s run %d/%d: %w", m, i+1, cfg.Simulations, err)
		}
		estimates[i] = out.Value

		r.progress.Do(func() {
			r.logger.Info("comparison progress", "method", m, "completed", i+1, "total", cfg.Simulations)
		})
	}

	mean, std := spread(estimates)
	return MethodResult{
		Method:    m,
		Mean:      mean,
		StdDev:    std,
		Estimates: estimates,
	}, nil
}

// spread returns the mean and population standard deviation. A single run
// has zero spread.
func spread(xs []float64) (mean, std float64) {
	mean = stat.Mean(xs, nil)
	if len(xs) < 2 {
		return mean, 0
	}
	return mean, stat.PopStdDev(xs, nil)
}

func selectMethods(names []string) ([]estimator.Method, error) {
	if len(names) == 0 {
		return estimator.StochasticMethods(), nil
	}

	seen := make(map[estimator.Method]bool, len(names))
	methods := make([]estimator.Method, 0, len(names))
	for _, name := range names {
		m, err := estimator.ParseMethod(name)
		if err != nil {
			return nil, err
		}
		if !m.Stochastic() {
			return nil, fmt.Errorf("%w: %s is not a stochastic method and cannot be compared", estimator.ErrInvalidRequest, m)
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		methods = append(methods, m)
	}
	return methods, nil
}

package estimator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Newton defaults.
const (
	DefaultInitialGuess = 2.0
	DefaultTolerance    = 1e-6
)

// NewtonParams are the method_params accepted by newtons.
type NewtonParams struct {
	InitialGuess float64 `mapstructure:"initial_guess"`
	Tolerance    float64 `mapstructure:"tolerance"`
}

// Newton finds the root of sin(x) near an initial guess with Newton's method.
// The sample size caps the iteration count.
type Newton struct {
	maxIter int
	guess   float64
	tol     float64
	rec     Recorder
	logger  *slog.Logger
}

// NewNewton creates a Newton iterator. The initial guess must lie strictly
// inside (π/2, 6π).
func NewNewton(maxIter int, params NewtonParams, opts ...Option) (*Newton, error) {
	if g := params.InitialGuess; !(g > math.Pi/2 && g < 6*math.Pi) {
		return nil, fmt.Errorf("%w: initial_guess must be between pi/2 and 6*pi, got %v",
			ErrInvalidRequest, params.InitialGuess)
	}
	if !(params.Tolerance >= 0) {
		return nil, fmt.Errorf("%w: tolerance must be a non-negative number, got %v", ErrInvalidRequest, params.Tolerance)
	}

	s := newSettings(opts)
	return &Newton{
		maxIter: maxIter,
		guess:   params.InitialGuess,
		tol:     params.Tolerance,
		rec:     s.recorder,
		logger:  s.logger,
	}, nil
}

// Method returns MethodNewtons.
func (n *Newton) Method() Method {
	return MethodNewtons
}

// Estimate iterates x ← x − sin x / cos x until |sin x| < tolerance or the
// iteration cap is reached.
func (n *Newton) Estimate(ctx context.Context) (*Outcome, error) {
	start := time.Now()

	x := n.guess
	iterates := []float64{x}
	n.rec.RecordIterate(x)

	for i := 0; i < n.maxIter; i++ {
		if err := canceled(ctx, i); err != nil {
			return nil, fmt.Errorf("newtons: %w", err)
		}

		fx := math.Sin(x)
		if math.Abs(fx) < n.tol {
			break
		}

		dfx := math.Cos(x)
		// not guarded: a vanishing derivative sends x to ±Inf
		if math.Abs(dfx) < 1e-12 {
			n.logger.Warn("newton derivative near zero", "x", x, "iteration", i)
		}

		x -= fx / dfx
		iterates = append(iterates, x)
		n.rec.RecordIterate(x)
	}

	return &Outcome{
		Method:   MethodNewtons,
		Value:    x,
		Iterates: iterates,
		Duration: time.Since(start),
	}, nil
}

var _ Estimator = (*Newton)(nil)

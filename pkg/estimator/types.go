// Package estimator estimates the constant π through a closed set of
// numerical methods behind a single Estimator contract.
package estimator

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
)

var (
	// ErrUnknownMethod is returned when a method identifier is not registered.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrInvalidRequest indicates a caller-correctable configuration problem:
	// a bad sample size, malformed method params or an out-of-band option.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInsufficientSamples is returned by the needle methods when no trial
	// crossed a line, which leaves their estimator undefined.
	ErrInsufficientSamples = errors.New("insufficient sample size")
)

// IsConfigError reports whether err was caused by the caller's configuration
// rather than by the computation itself.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrUnknownMethod) || errors.Is(err, ErrInvalidRequest)
}

// Request describes a single estimation run.
// It is treated as immutable once handed to New or Estimate.
type Request struct {
	// SampleSize is the trial count for stochastic methods, the requested
	// significant digits for chudnovsky and the iteration cap for newtons.
	SampleSize int

	// Method is a method identifier, matched case-insensitively.
	Method string

	// Visualize asks for a Trace to be recorded and handed to the Renderer.
	Visualize bool

	// Params holds method specific options (step_size, initial_guess,
	// tolerance). Values may be strings; they are decoded weakly.
	Params map[string]any
}

func (r Request) validate() error {
	if r.SampleSize < 1 {
		return fmt.Errorf("%w: sample size must be at least 1, got %d", ErrInvalidRequest, r.SampleSize)
	}
	return nil
}

// Outcome is the result of one Estimate call.
type Outcome struct {
	Method Method

	// Value is the estimate of π as a float64.
	Value float64

	// Exact holds the full-precision decimal (chudnovsky only).
	Exact *apd.Decimal

	// Iterates is the ordered Newton iterate sequence, starting with the
	// initial guess (newtons only).
	Iterates []float64

	// Trials and Hits count the stochastic trials and the ones that landed
	// inside the disk or crossed a line. Zero for the deterministic methods
	// and for mc-integral, which has no hit notion.
	Trials int
	Hits   int

	Duration time.Duration
}

// String formats the estimate, keeping every digit of an exact result.
func (o *Outcome) String() string {
	if o.Exact != nil {
		return o.Exact.Text('f')
	}
	return strconv.FormatFloat(o.Value, 'f', -1, 64)
}

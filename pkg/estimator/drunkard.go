package estimator

import (
	"context"
	"fmt"
	"math"
	"time"
)

// DefaultStepSize is the default half-width of the drunkard's step proposal.
const DefaultStepSize = 0.2

// DrunkardParams are the method_params accepted by the drunkard walk.
type DrunkardParams struct {
	StepSize float64 `mapstructure:"step_size"`
}

// Drunkard is a Markov-chain variant of circle-ratio. A walker starts at the
// origin and proposes uniform steps in [-step, step]²; a proposal leaving the
// square [-1,1]² is rejected and the walker stays put. Every trial, moved or
// not, is classified against the unit disk.
//
// Rejected proposals are neither reflected nor retried.
type Drunkard struct {
	samples int
	step    float64
	src     Source
	rec     Recorder
}

// NewDrunkard creates a drunkard walk estimator.
func NewDrunkard(samples int, params DrunkardParams, opts ...Option) (*Drunkard, error) {
	if !(params.StepSize > 0) || math.IsInf(params.StepSize, 1) {
		return nil, fmt.Errorf("%w: step_size must be positive and finite, got %v", ErrInvalidRequest, params.StepSize)
	}
	s := newSettings(opts)
	return &Drunkard{
		samples: samples,
		step:    params.StepSize,
		src:     s.source,
		rec:     s.recorder,
	}, nil
}

// Method returns MethodDrunkard.
func (d *Drunkard) Method() Method {
	return MethodDrunkard
}

// Estimate walks the chain. Trials are inherently sequential.
func (d *Drunkard) Estimate(ctx context.Context) (*Outcome, error) {
	start := time.Now()
	inside := 0
	x, y := 0.0, 0.0

	for i := 0; i < d.samples; i++ {
		if err := canceled(ctx, i); err != nil {
			return nil, fmt.Errorf("drunkard: %w", err)
		}

		px := x + uniform(d.src, -d.step, d.step)
		py := y + uniform(d.src, -d.step, d.step)

		// accept only moves that stay in the square
		if inSquare(px, py) {
			x, y = px, py
		}

		hit := inDisk(x, y)
		if hit {
			inside++
		}
		d.rec.RecordPoint(Point{X: x, Y: y, Inside: hit})
	}

	return &Outcome{
		Method:   MethodDrunkard,
		Value:    diskRatio(inside, d.samples),
		Trials:   d.samples,
		Hits:     inside,
		Duration: time.Since(start),
	}, nil
}

func inSquare(x, y float64) bool {
	return x >= -1 && x <= 1 && y >= -1 && y <= 1
}

var _ Estimator = (*Drunkard)(nil)

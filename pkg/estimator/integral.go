package estimator

import (
	"context"
	"fmt"
	"math"
	"time"
)

// MCIntegral estimates 4·∫₀¹√(1−x²)dx by averaging the integrand at uniform
// draws from [0, 1).
type MCIntegral struct {
	samples int
	src     Source
}

// NewMCIntegral creates a Monte Carlo integration estimator.
func NewMCIntegral(samples int, opts ...Option) *MCIntegral {
	s := newSettings(opts)
	return &MCIntegral{
		samples: samples,
		src:     s.source,
	}
}

// Method returns MethodMCIntegral.
func (m *MCIntegral) Method() Method {
	return MethodMCIntegral
}

// Estimate averages the integrand.
func (m *MCIntegral) Estimate(ctx context.Context) (*Outcome, error) {
	start := time.Now()
	var sum float64

	for i := 0; i < m.samples; i++ {
		if err := canceled(ctx, i); err != nil {
			return nil, fmt.Errorf("mc-integral: %w", err)
		}
		u := m.src.Float64()
		sum += math.Sqrt(1 - u*u)
	}

	return &Outcome{
		Method:   MethodMCIntegral,
		Value:    4 * sum / float64(m.samples),
		Trials:   m.samples,
		Duration: time.Since(start),
	}, nil
}

var _ Estimator = (*MCIntegral)(nil)

package estimator

import (
	"context"
	"fmt"
	"slices"
)

// Estimate is the uniform entry point:
// 1. Resolve the method (unknown ids fail before anything is built)
// 2. Attach a Trace when visualization is requested and supported
// 3. Run the estimator
// 4. Hand trace and outcome to the Renderer, if one is configured
//
// Requesting visualization from a method without support only logs a warning.
// The numeric result is identical with or without visualization.
func Estimate(ctx context.Context, req Request, opts ...Option) (*Outcome, error) {
	m, err := ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}

	s := newSettings(opts)
	logger := s.logger.With("component", "estimator", "method", m)

	var trace *Trace
	if req.Visualize {
		if m.Visualizable() {
			trace = NewTrace(m)
			opts = append(slices.Clip(opts), WithRecorder(trace))
		} else {
			logger.Warn("visualization is not available for this method, continuing without it")
		}
	}

	est, err := New(req, opts...)
	if err != nil {
		return nil, err
	}

	logger.Debug("estimation started", "sample_size", req.SampleSize)

	outcome, err := est.Estimate(ctx)
	if err != nil {
		return nil, err
	}

	logger.Debug("estimation finished",
		"estimate", outcome.Value,
		"duration_us", outcome.Duration.Microseconds(),
	)

	if trace != nil {
		if s.renderer == nil {
			logger.Warn("visualization requested but no renderer configured")
			return outcome, nil
		}
		if err := s.renderer.Render(trace, outcome); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", m, err)
		}
	}

	return outcome, nil
}

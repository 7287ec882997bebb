package estimator

import (
	"log/slog"
	"math/rand/v2"
)

// Source is a uniform random number source on [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a deterministic PCG-backed Source for the given seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func newRandomSource() Source {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// uniform draws from [lo, hi).
func uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// settings holds the injectable collaborators shared by all estimators.
type settings struct {
	source   Source
	recorder Recorder
	renderer Renderer
	logger   *slog.Logger
}

// Option configures an Estimator.
type Option func(*settings)

// WithSource sets the random source. Without it every estimator draws from
// its own freshly seeded source.
func WithSource(src Source) Option {
	return func(s *settings) {
		s.source = src
	}
}

// WithSeed is shorthand for WithSource(NewSource(seed)).
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.source = NewSource(seed)
	}
}

// WithRecorder attaches a side-channel recorder. Recording never changes the
// random draws or the control flow of an estimator.
func WithRecorder(r Recorder) Option {
	return func(s *settings) {
		s.recorder = r
	}
}

// WithRenderer sets the visualization collaborator used by Estimate when a
// request asks for visualization.
func WithRenderer(r Renderer) Option {
	return func(s *settings) {
		s.renderer = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.source == nil {
		s.source = newRandomSource()
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	return s
}

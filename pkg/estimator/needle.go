package estimator

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Needle geometry shared by buffon and laplace.
const (
	NeedleLength = 0.5
	LineSpacing  = 1.0

	// buffonFloorWidth is the horizontal range midpoints are dropped in.
	buffonFloorWidth = 4 * LineSpacing
)

// Buffon drops needles on a floor ruled with parallel lines and estimates π
// from the crossing probability 2L/(πd).
type Buffon struct {
	samples int
	src     Source
	rec     Recorder
}

// NewBuffon creates a Buffon's needle estimator.
func NewBuffon(samples int, opts ...Option) *Buffon {
	s := newSettings(opts)
	return &Buffon{
		samples: samples,
		src:     s.source,
		rec:     s.recorder,
	}
}

// Method returns MethodBuffon.
func (b *Buffon) Method() Method {
	return MethodBuffon
}

// Estimate drops the needles. Returns ErrInsufficientSamples if none crossed.
func (b *Buffon) Estimate(ctx context.Context) (*Outcome, error) {
	start := time.Now()
	hits := 0
	half := NeedleLength / 2

	for i := 0; i < b.samples; i++ {
		if err := canceled(ctx, i); err != nil {
			return nil, fmt.Errorf("buffon: %w", err)
		}

		x := uniform(b.src, 0, buffonFloorWidth)
		theta := uniform(b.src, 0, math.Pi)

		xStart := x - half*math.Sin(theta)
		xEnd := x + half*math.Sin(theta)

		// a crossing puts the endpoints in different strips
		crossed := math.Floor(xStart/LineSpacing) != math.Floor(xEnd/LineSpacing)
		if crossed {
			hits++
		}
		b.rec.RecordNeedle(Needle{XStart: xStart, XEnd: xEnd, Theta: theta, Crossed: crossed})
	}

	if hits == 0 {
		return nil, fmt.Errorf("buffon: %w: no needle crossed a line in %d trials", ErrInsufficientSamples, b.samples)
	}

	return &Outcome{
		Method:   MethodBuffon,
		Value:    (2 * NeedleLength * float64(b.samples)) / (LineSpacing * float64(hits)),
		Trials:   b.samples,
		Hits:     hits,
		Duration: time.Since(start),
	}, nil
}

// Laplace is the antithetic variant of Buffon: the floor carries an orthogonal
// grid and a needle counts when it crosses either ruling direction.
type Laplace struct {
	samples int
	src     Source
}

// Grid spacing for Laplace's needle.
const (
	laplaceVSpacing = LineSpacing
	laplaceHSpacing = LineSpacing
)

// NewLaplace creates a Laplace's needle estimator.
func NewLaplace(samples int, opts ...Option) *Laplace {
	s := newSettings(opts)
	return &Laplace{
		samples: samples,
		src:     s.source,
	}
}

// Method returns MethodLaplace.
func (l *Laplace) Method() Method {
	return MethodLaplace
}

// Estimate drops needles on the grid. Returns ErrInsufficientSamples if none
// crossed.
func (l *Laplace) Estimate(ctx context.Context) (*Outcome, error) {
	start := time.Now()
	hits := 0
	half := NeedleLength / 2

	for i := 0; i < l.samples; i++ {
		if err := canceled(ctx, i); err != nil {
			return nil, fmt.Errorf("laplace: %w", err)
		}

		// midpoint within one grid cell
		x := uniform(l.src, 0, laplaceHSpacing)
		y := uniform(l.src, 0, laplaceVSpacing)
		phi := uniform(l.src, -math.Pi/2, math.Pi/2)

		projX := half * math.Abs(math.Cos(phi))
		projY := half * math.Abs(math.Sin(phi))

		vertical := x <= projX || x >= laplaceVSpacing-projX
		horizontal := y <= projY || y >= laplaceHSpacing-projY

		if vertical || horizontal {
			hits++
		}
	}

	if hits == 0 {
		return nil, fmt.Errorf("laplace: %w: no needle crossed a line in %d trials", ErrInsufficientSamples, l.samples)
	}

	ratio := float64(hits) / float64(l.samples)
	value := (NeedleLength * (2*(laplaceVSpacing+laplaceHSpacing) - NeedleLength)) /
		(laplaceVSpacing * laplaceHSpacing * ratio)

	return &Outcome{
		Method:   MethodLaplace,
		Value:    value,
		Trials:   l.samples,
		Hits:     hits,
		Duration: time.Since(start),
	}, nil
}

var (
	_ Estimator = (*Buffon)(nil)
	_ Estimator = (*Laplace)(nil)
)

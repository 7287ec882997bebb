package estimator

import (
	"context"
	"fmt"
	"time"
)

// inDisk is the area-ratio acceptance test shared by circle-ratio and drunkard.
func inDisk(x, y float64) bool {
	return x*x+y*y <= 1
}

// diskRatio turns an inside count into the 4·count/n estimate.
func diskRatio(inside, n int) float64 {
	return 4 * float64(inside) / float64(n)
}

// CircleRatio samples points uniformly in [-1,1]² and estimates π from the
// fraction that land in the unit disk (area ratio π/4).
type CircleRatio struct {
	samples int
	src     Source
	rec     Recorder
}

// NewCircleRatio creates a circle-ratio estimator.
func NewCircleRatio(samples int, opts ...Option) *CircleRatio {
	s := newSettings(opts)
	return &CircleRatio{
		samples: samples,
		src:     s.source,
		rec:     s.recorder,
	}
}

// Method returns MethodCircleRatio.
func (c *CircleRatio) Method() Method {
	return MethodCircleRatio
}

// Estimate runs the sampler.
func (c *CircleRatio) Estimate(ctx context.Context) (*Outcome, error) {
	start := time.Now()
	inside := 0

	for i := 0; i < c.samples; i++ {
		if err := canceled(ctx, i); err != nil {
			return nil, fmt.Errorf("circle-ratio: %w", err)
		}

		x := uniform(c.src, -1, 1)
		y := uniform(c.src, -1, 1)

		hit := inDisk(x, y)
		if hit {
			inside++
		}
		c.rec.RecordPoint(Point{X: x, Y: y, Inside: hit})
	}

	return &Outcome{
		Method:   MethodCircleRatio,
		Value:    diskRatio(inside, c.samples),
		Trials:   c.samples,
		Hits:     inside,
		Duration: time.Since(start),
	}, nil
}

var _ Estimator = (*CircleRatio)(nil)

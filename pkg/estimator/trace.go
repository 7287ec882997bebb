package estimator

import "sync"

// Point is a sampled (or walked-to) position and its disk classification.
type Point struct {
	X, Y   float64
	Inside bool
}

// Needle is one dropped needle. Only the horizontal extent and the angle are
// part of the trial; a renderer is free to place it vertically.
type Needle struct {
	XStart, XEnd float64
	Theta        float64
	Crossed      bool
}

// Recorder receives per-trial facts for the visualization collaborator.
// It is write-only from the estimator's point of view.
type Recorder interface {
	RecordPoint(p Point)
	RecordNeedle(n Needle)
	RecordIterate(x float64)
}

type nopRecorder struct{}

func (nopRecorder) RecordPoint(Point)     {}
func (nopRecorder) RecordNeedle(Needle)   {}
func (nopRecorder) RecordIterate(float64) {}

// Trace collects everything an estimator recorded during one call.
// Safe for concurrent use, though estimators record from a single goroutine.
type Trace struct {
	Method Method

	mu       sync.Mutex
	points   []Point
	needles  []Needle
	iterates []float64
}

// NewTrace creates an empty trace for the given method.
func NewTrace(m Method) *Trace {
	return &Trace{Method: m}
}

// RecordPoint appends a point.
func (t *Trace) RecordPoint(p Point) {
	t.mu.Lock()
	t.points = append(t.points, p)
	t.mu.Unlock()
}

// RecordNeedle appends a needle.
func (t *Trace) RecordNeedle(n Needle) {
	t.mu.Lock()
	t.needles = append(t.needles, n)
	t.mu.Unlock()
}

// RecordIterate appends a Newton iterate.
func (t *Trace) RecordIterate(x float64) {
	t.mu.Lock()
	t.iterates = append(t.iterates, x)
	t.mu.Unlock()
}

// Points returns a copy of the recorded points in trial order.
func (t *Trace) Points() []Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Point(nil), t.points...)
}

// Needles returns a copy of the recorded needles in trial order.
func (t *Trace) Needles() []Needle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Needle(nil), t.needles...)
}

// Iterates returns a copy of the recorded iterates.
func (t *Trace) Iterates() []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]float64(nil), t.iterates...)
}

// Len returns the total number of recorded facts.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.points) + len(t.needles) + len(t.iterates)
}

// Renderer is the visualization collaborator. It receives already computed
// trial data and the final outcome and never feeds anything back.
type Renderer interface {
	Render(trace *Trace, outcome *Outcome) error
}

var _ Recorder = (*Trace)(nil)

package estimator

// scriptedSource replays a fixed sequence of uniform draws, cycling when it
// runs out.
type scriptedSource struct {
	values []float64
	pos    int
}

func (s *scriptedSource) Float64() float64 {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// constSource always returns the same draw.
type constSource float64

func (c constSource) Float64() float64 {
	return float64(c)
}

// countingRecorder counts what it is handed.
type countingRecorder struct {
	points, needles, iterates int
}

func (r *countingRecorder) RecordPoint(Point)     { r.points++ }
func (r *countingRecorder) RecordNeedle(Needle)   { r.needles++ }
func (r *countingRecorder) RecordIterate(float64) { r.iterates++ }

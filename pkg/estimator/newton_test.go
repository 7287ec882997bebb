package estimator

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestNewton_Converges(t *testing.T) {
	n, err := NewNewton(10, NewtonParams{InitialGuess: 2.0, Tolerance: 1e-6})
	if err != nil {
		t.Fatalf("NewNewton() error = %v", err)
	}

	out, err := n.Estimate(context.Background())
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if math.Abs(out.Value-math.Pi) > 1e-6 {
		t.Errorf("Estimate() = %v, want within 1e-6 of pi", out.Value)
	}
	if out.Iterates[0] != 2.0 {
		t.Errorf("first iterate = %v, want initial guess", out.Iterates[0])
	}
	if last := out.Iterates[len(out.Iterates)-1]; last != out.Value {
		t.Errorf("last iterate = %v, value = %v", last, out.Value)
	}
}

func TestNewton_InitialGuessBand(t *testing.T) {
	tests := []struct {
		guess   float64
		wantErr bool
	}{
		{0.1, true},
		{math.Pi / 2, true},
		{6 * math.Pi, true},
		{-3, true},
		{math.NaN(), true},
		{math.Inf(1), true},
		{math.Inf(-1), true},
		{2.0, false},
		{18.5, false},
	}

	for _, tt := range tests {
		_, err := NewNewton(10, NewtonParams{InitialGuess: tt.guess, Tolerance: DefaultTolerance})
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("guess %v: error = %v, want ErrInvalidRequest", tt.guess, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("guess %v: unexpected error %v", tt.guess, err)
		}
	}
}

func TestNewton_IterationCap(t *testing.T) {
	trace := NewTrace(MethodNewtons)
	n, err := NewNewton(1, NewtonParams{InitialGuess: 2.0, Tolerance: 1e-6}, WithRecorder(trace))
	if err != nil {
		t.Fatalf("NewNewton() error = %v", err)
	}

	out, err := n.Estimate(context.Background())
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if len(out.Iterates) != 2 {
		t.Errorf("len(Iterates) = %d, want 2", len(out.Iterates))
	}
	want := 2.0 - math.Sin(2.0)/math.Cos(2.0)
	if out.Value != want {
		t.Errorf("Estimate() = %v, want %v", out.Value, want)
	}
	if got := trace.Iterates(); len(got) != 2 {
		t.Errorf("trace recorded %d iterates, want 2", len(got))
	}
}

func TestNewton_FindsNearestRoot(t *testing.T) {
	n, err := NewNewton(50, NewtonParams{InitialGuess: 6.0, Tolerance: 1e-9})
	if err != nil {
		t.Fatalf("NewNewton() error = %v", err)
	}
	out, err := n.Estimate(context.Background())
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if math.Abs(out.Value-2*math.Pi) > 1e-9 {
		t.Errorf("Estimate() = %v, want 2π", out.Value)
	}
}

func TestNewton_InvalidTolerance(t *testing.T) {
	for _, tol := range []float64{-1, math.NaN(), math.Inf(-1)} {
		_, err := NewNewton(10, NewtonParams{InitialGuess: 2.0, Tolerance: tol})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("tolerance %v: error = %v, want ErrInvalidRequest", tol, err)
		}
	}
}

package estimator

import (
	"context"
	"math"
	"testing"
)

func TestMCIntegral_Converges(t *testing.T) {
	out, err := NewMCIntegral(100_000, WithSeed(3)).Estimate(context.Background())
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if math.Abs(out.Value-math.Pi) > 0.02 {
		t.Errorf("Estimate() = %v, want within 0.02 of pi", out.Value)
	}
	if out.Hits != 0 {
		t.Errorf("Hits = %d, want 0", out.Hits)
	}
}

func TestMCIntegral_Integrand(t *testing.T) {
	tests := []struct {
		draw float64
		want float64
	}{
		{0, 4},
		{0.6, 3.2}, // 4·√(1−0.36)
	}

	for _, tt := range tests {
		out, err := NewMCIntegral(3, WithSource(constSource(tt.draw))).Estimate(context.Background())
		if err != nil {
			t.Fatalf("Estimate() error = %v", err)
		}
		if math.Abs(out.Value-tt.want) > 1e-12 {
			t.Errorf("draw %v: Estimate() = %v, want %v", tt.draw, out.Value, tt.want)
		}
	}
}

package estimator

import (
	"errors"
	"strings"
	"testing"
)

func TestNew_UnknownMethod(t *testing.T) {
	_, err := New(Request{SampleSize: 100, Method: "not-a-method"})
	if !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("New() error = %v, want ErrUnknownMethod", err)
	}
	if !IsConfigError(err) {
		t.Error("IsConfigError() = false for unknown method")
	}
	for _, m := range Methods() {
		if !strings.Contains(err.Error(), string(m)) {
			t.Errorf("error %q does not list %s", err, m)
		}
	}
}

func TestNew_AllMethods(t *testing.T) {
	for _, m := range Methods() {
		est, err := New(Request{SampleSize: 10, Method: string(m)})
		if err != nil {
			t.Errorf("New(%s) error = %v", m, err)
			continue
		}
		if est.Method() != m {
			t.Errorf("New(%s).Method() = %s", m, est.Method())
		}
	}
}

func TestParseMethod_CaseInsensitive(t *testing.T) {
	tests := map[string]Method{
		"CIRCLE-Ratio": MethodCircleRatio,
		" newtons ":    MethodNewtons,
		"Buffon":       MethodBuffon,
	}
	for in, want := range tests {
		got, err := ParseMethod(in)
		if err != nil {
			t.Errorf("ParseMethod(%q) error = %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseMethod(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNew_InvalidSampleSize(t *testing.T) {
	_, err := New(Request{SampleSize: 0, Method: "circle-ratio"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("New() error = %v, want ErrInvalidRequest", err)
	}
}

func TestNew_Params(t *testing.T) {
	tests := []struct {
		name    string
		method  Method
		params  map[string]any
		wantErr bool
	}{
		{"drunkard step as string", MethodDrunkard, map[string]any{"step_size": "0.1"}, false},
		{"drunkard step as float", MethodDrunkard, map[string]any{"step_size": 0.05}, false},
		{"drunkard unknown key", MethodDrunkard, map[string]any{"stride": 0.1}, true},
		{"drunkard bad value", MethodDrunkard, map[string]any{"step_size": "wide"}, true},
		{"newtons guess and tolerance", MethodNewtons, map[string]any{"initial_guess": 3, "tolerance": "1e-9"}, false},
		{"newtons out of band guess", MethodNewtons, map[string]any{"initial_guess": 0.1}, true},
		{"newtons NaN guess", MethodNewtons, map[string]any{"initial_guess": "NaN"}, true},
		{"drunkard infinite step", MethodDrunkard, map[string]any{"step_size": "+Inf"}, true},
		{"circle-ratio takes none", MethodCircleRatio, map[string]any{"step_size": 0.1}, true},
		{"chudnovsky takes none", MethodChudnovsky, map[string]any{"precision": 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Request{SampleSize: 10, Method: string(tt.method), Params: tt.params})
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("New() error = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Errorf("New() unexpected error = %v", err)
			}
		})
	}
}

func TestNew_DecodedParamsApplied(t *testing.T) {
	est, err := New(Request{SampleSize: 10, Method: "drunkard", Params: map[string]any{"step_size": "0.05"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if d := est.(*Drunkard); d.step != 0.05 {
		t.Errorf("step = %v, want 0.05", d.step)
	}

	est, err = New(Request{SampleSize: 10, Method: "newtons"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	n := est.(*Newton)
	if n.guess != DefaultInitialGuess || n.tol != DefaultTolerance {
		t.Errorf("defaults = (%v, %v), want (%v, %v)", n.guess, n.tol, DefaultInitialGuess, DefaultTolerance)
	}
}

func TestStochasticMethods(t *testing.T) {
	got := StochasticMethods()
	want := []Method{MethodMCIntegral, MethodCircleRatio, MethodDrunkard, MethodBuffon, MethodLaplace}
	if len(got) != len(want) {
		t.Fatalf("StochasticMethods() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("StochasticMethods()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

package compare

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branched-services/go-pi/pkg/estimator"
)

func TestRun_SingleSimulationHasZeroSpread(t *testing.T) {
	report, err := Run(context.Background(), Config{SampleSize: 200, Simulations: 1}, WithSeed(1))
	require.NoError(t, err)

	stds := report.StdDevs()
	require.Len(t, stds, len(estimator.StochasticMethods()))
	for m, std := range stds {
		assert.Equal(t, 0.0, std, "method %s", m)
	}
}

func TestRun_DefaultsToStochasticMethods(t *testing.T) {
	report, err := Run(context.Background(), Config{SampleSize: 100, Simulations: 3}, WithSeed(2))
	require.NoError(t, err)

	var got []estimator.Method
	for _, res := range report.Results {
		got = append(got, res.Method)
		assert.Len(t, res.Estimates, 3)
	}
	assert.Equal(t, estimator.StochasticMethods(), got)
}

func TestRun_Subset(t *testing.T) {
	report, err := Run(context.Background(), Config{
		SampleSize:  1000,
		Simulations: 20,
		Methods:     []string{"circle-ratio", "LAPLACE", "circle-ratio"},
	}, WithSeed(3))
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, estimator.MethodCircleRatio, report.Results[0].Method)
	assert.Equal(t, estimator.MethodLaplace, report.Results[1].Method)
	for _, res := range report.Results {
		assert.Greater(t, res.StdDev, 0.0)
		assert.InDelta(t, 3.14, res.Mean, 0.2)
	}
}

func TestRun_Reproducible(t *testing.T) {
	cfg := Config{SampleSize: 500, Simulations: 5, Methods: []string{"drunkard"}}

	a, err := Run(context.Background(), cfg, WithSeed(99))
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg, WithSeed(99))
	require.NoError(t, err)

	assert.Equal(t, a.Results[0].Estimates, b.Results[0].Estimates)
}

func TestRun_RejectsNonStochasticMethods(t *testing.T) {
	for _, name := range []string{"chudnovsky", "newtons"} {
		_, err := Run(context.Background(), Config{SampleSize: 10, Simulations: 2, Methods: []string{name}})
		assert.ErrorIs(t, err, estimator.ErrInvalidRequest, name)
	}
}

func TestRun_UnknownMethod(t *testing.T) {
	_, err := Run(context.Background(), Config{SampleSize: 10, Simulations: 2, Methods: []string{"pie"}})
	assert.ErrorIs(t, err, estimator.ErrUnknownMethod)
}

func TestRun_InvalidSizes(t *testing.T) {
	_, err := Run(context.Background(), Config{SampleSize: 0, Simulations: 2})
	assert.ErrorIs(t, err, estimator.ErrInvalidRequest)

	_, err = Run(context.Background(), Config{SampleSize: 10, Simulations: 0})
	assert.ErrorIs(t, err, estimator.ErrInvalidRequest)
}

func TestRun_WarnsOnLargeWorkload(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := Run(context.Background(), Config{SampleSize: 100, Simulations: 2, Methods: []string{"mc-integral"}},
		WithLogger(logger), WithWarnThreshold(50))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "may take a long time")
}

func TestExceeds(t *testing.T) {
	tests := []struct {
		name                  string
		samples, sims, thresh int
		want                  bool
	}{
		{"below", 10, 10, 100, false},
		{"at threshold", 25, 4, 100, false},
		{"just above", 26, 4, 100, true},
		{"product wraps int", math.MaxInt/2 + 1, 4, DefaultWarnThreshold, true},
		{"both huge", math.MaxInt, math.MaxInt, DefaultWarnThreshold, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exceeds(tt.samples, tt.sims, tt.thresh))
		})
	}
}

func TestRun_PropagatesEstimatorErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{SampleSize: 10, Simulations: 2, Methods: []string{"buffon"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "buffon run 1/2")
}

func TestFormatText(t *testing.T) {
	report := &Report{
		SampleSize:  100,
		Simulations: 10,
		Results: []MethodResult{
			{Method: estimator.MethodCircleRatio, StdDev: 0.1234567},
			{Method: estimator.MethodBuffon, StdDev: 0.5},
		},
	}

	var buf bytes.Buffer
	FormatText(&buf, report)
	out := buf.String()

	assert.Contains(t, out, textHeader)
	assert.Contains(t, out, "circle-ratio     0.123457")
	assert.Contains(t, out, "buffon           0.500000")
	assert.True(t, strings.Index(out, "circle-ratio") < strings.Index(out, "buffon"))
}

func TestFormatMarkdown(t *testing.T) {
	report := &Report{
		SampleSize:  100,
		Simulations: 10,
		Results:     []MethodResult{{Method: estimator.MethodLaplace, Mean: 3.14, StdDev: 0.01}},
	}

	var buf bytes.Buffer
	FormatMarkdown(&buf, report)

	assert.Contains(t, buf.String(), "| laplace | 3.140000 | 0.010000 |")
}

func TestFormatJSON(t *testing.T) {
	report := &Report{
		SampleSize:  100,
		Simulations: 10,
		Results:     []MethodResult{{Method: estimator.MethodMCIntegral, Mean: 3.1, StdDev: 0.2}},
	}

	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, report))

	var decoded struct {
		SampleSize int                `json:"sampleSize"`
		StdDev     map[string]float64 `json:"stdDev"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 100, decoded.SampleSize)
	assert.Equal(t, 0.2, decoded.StdDev["mc-integral"])
}

package observability

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/branched-services/go-pi/pkg/estimator"
)

// Metrics are the service's Prometheus collectors.
type Metrics struct {
	estimates   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	absError    *prometheus.HistogramVec
	comparisons *prometheus.CounterVec
	compareTime prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		estimates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pi_estimates_total",
				Help: "Estimation requests by method and result",
			},
			[]string{"method", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pi_estimate_duration_seconds",
				Help:    "Wall time of successful estimations",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
			},
			[]string{"method"},
		),
		absError: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pi_estimate_abs_error",
				Help:    "Absolute distance of estimates from math.Pi",
				Buckets: prometheus.ExponentialBuckets(1e-9, 10, 10),
			},
			[]string{"method"},
		),
		comparisons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pi_comparisons_total",
				Help: "Comparison runs by result",
			},
			[]string{"result"},
		),
		compareTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pi_comparison_duration_seconds",
				Help:    "Wall time of successful comparisons",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
	}
	reg.MustRegister(m.estimates, m.duration, m.absError, m.comparisons, m.compareTime)
	return m
}

// ObserveEstimate records one estimation. A nil outcome counts only the
// error class.
func (m *Metrics) ObserveEstimate(method string, out *estimator.Outcome, err error) {
	if err != nil {
		m.estimates.WithLabelValues(method, ErrorClass(err)).Inc()
		return
	}
	m.estimates.WithLabelValues(method, "ok").Inc()
	m.duration.WithLabelValues(method).Observe(out.Duration.Seconds())
	m.absError.WithLabelValues(method).Observe(absDiff(out.Value))
}

// ObserveComparison records one comparison run.
func (m *Metrics) ObserveComparison(d time.Duration, err error) {
	if err != nil {
		m.comparisons.WithLabelValues(ErrorClass(err)).Inc()
		return
	}
	m.comparisons.WithLabelValues("ok").Inc()
	m.compareTime.Observe(d.Seconds())
}

// ErrorClass buckets an error into a low-cardinality label value.
func ErrorClass(err error) string {
	switch {
	case estimator.IsConfigError(err):
		return "invalid"
	case errors.Is(err, estimator.ErrInsufficientSamples):
		return "insufficient_samples"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

func absDiff(v float64) float64 {
	return math.Abs(v - math.Pi)
}

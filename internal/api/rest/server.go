// Package rest provides the HTTP/JSON API for π estimation.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/branched-services/go-pi/internal/observability"
	"github.com/branched-services/go-pi/pkg/compare"
	"github.com/branched-services/go-pi/pkg/estimator"
)

const maxBodyBytes = 1 << 20

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Server provides the estimation API.
type Server struct {
	addr          string
	maxSampleSize int
	timeout       time.Duration
	warnThreshold int
	params        func(method string) map[string]any
	renderer      estimator.Renderer
	registry      *prometheus.Registry
	metrics       *observability.Metrics
	logger        *slog.Logger
	server        *http.Server
	ready         atomic.Bool
}

// Option configures a Server.
type Option func(*Server)

// WithMaxSampleSize caps sample_size, and sample_size × simulations for
// comparisons.
func WithMaxSampleSize(n int) Option {
	return func(s *Server) {
		s.maxSampleSize = n
	}
}

// WithRequestTimeout bounds every estimation and comparison.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithWarnThreshold is passed through to compare.Run.
func WithWarnThreshold(n int) Option {
	return func(s *Server) {
		s.warnThreshold = n
	}
}

// WithMethodParams supplies default params for requests that carry none.
func WithMethodParams(fn func(method string) map[string]any) Option {
	return func(s *Server) {
		s.params = fn
	}
}

// WithRenderer enables visualize=true. Without one, visualization requests
// are answered with the numeric result only.
func WithRenderer(r estimator.Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithRegistry sets the Prometheus registry served on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// NewServer creates the API server.
func NewServer(addr string, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		addr:          addr,
		maxSampleSize: 10_000_000,
		timeout:       30 * time.Second,
		warnThreshold: compare.DefaultWarnThreshold,
		params:        func(string) map[string]any { return nil },
		logger:        observability.Component(logger, "rest"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = observability.NewMetrics(s.registry)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: s.timeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Route("/v1/pi", func(r chi.Router) {
		r.Post("/estimate", s.handleEstimate)
		r.Post("/compare", s.handleCompare)
		r.Get("/methods", s.handleMethods)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// Run starts the server. Blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", s.addr)
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()
	s.ready.Store(true)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		s.ready.Store(false)
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.ready.Store(false)
	s.logger.Info("API server shutting down")
	return s.server.Shutdown(ctx)
}

// Ready reports whether the server is accepting requests.
func (s *Server) Ready() bool {
	return s.ready.Load()
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(observability.ContextWithRequestID(r.Context(), id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		observability.WithContext(r.Context(), s.logger).Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_us", time.Since(start).Microseconds(),
		)
	})
}

// EstimateRequest is the body of POST /v1/pi/estimate.
type EstimateRequest struct {
	SampleSize int            `json:"sample_size"`
	Method     string         `json:"method"`
	Visualize  bool           `json:"visualize,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
	Seed       *uint64        `json:"seed,omitempty"`
}

// EstimateResponse is the API response for a single estimate.
type EstimateResponse struct {
	Method     string    `json:"method"`
	Estimate   float64   `json:"estimate"`
	Digits     string    `json:"digits,omitempty"`
	AbsError   float64   `json:"abs_error"`
	Trials     int       `json:"trials,omitempty"`
	Hits       int       `json:"hits,omitempty"`
	Iterates   []float64 `json:"iterates,omitempty"`
	Plot       string    `json:"plot,omitempty"`
	DurationMS float64   `json:"duration_ms"`
}

// CompareRequest is the body of POST /v1/pi/compare.
type CompareRequest struct {
	SampleSize  int      `json:"sample_size"`
	Simulations int      `json:"simulations"`
	Methods     []string `json:"methods,omitempty"`
	Seed        *uint64  `json:"seed,omitempty"`
}

// CompareResponse is the API response for a comparison.
type CompareResponse struct {
	SampleSize  int                  `json:"sample_size"`
	Simulations int                  `json:"simulations"`
	Results     []CompareMethodStats `json:"results"`
	DurationMS  float64              `json:"duration_ms"`
}

// CompareMethodStats is the spread of one method.
type CompareMethodStats struct {
	Method string  `json:"method"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// MethodInfo describes one supported method.
type MethodInfo struct {
	ID           string `json:"id"`
	Stochastic   bool   `json:"stochastic"`
	Visualizable bool   `json:"visualizable"`
}

type plotPather interface {
	Path(m estimator.Method) string
}

// scopedRenderer hands out a renderer whose output files are unique to tag.
type scopedRenderer interface {
	Scoped(tag string) estimator.Renderer
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var body EstimateRequest
	if !s.decode(w, r, &body) {
		return
	}

	if body.SampleSize > s.maxSampleSize {
		s.writeError(w, r, fmt.Errorf("%w: sample_size %d exceeds limit %d",
			estimator.ErrInvalidRequest, body.SampleSize, s.maxSampleSize))
		return
	}

	params := body.Params
	if len(params) == 0 {
		params = s.params(body.Method)
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	logger := observability.WithContext(ctx, s.logger)
	opts := []estimator.Option{estimator.WithLogger(logger)}
	if body.Seed != nil {
		opts = append(opts, estimator.WithSeed(*body.Seed))
	}
	renderer := s.renderer
	if sr, ok := renderer.(scopedRenderer); ok {
		renderer = sr.Scoped(observability.RequestID(ctx))
	}
	if renderer != nil {
		opts = append(opts, estimator.WithRenderer(renderer))
	}

	out, err := estimator.Estimate(ctx, estimator.Request{
		SampleSize: body.SampleSize,
		Method:     body.Method,
		Visualize:  body.Visualize,
		Params:     params,
	}, opts...)
	s.metrics.ObserveEstimate(methodLabel(body.Method), out, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := EstimateResponse{
		Method:     string(out.Method),
		Estimate:   out.Value,
		AbsError:   math.Abs(out.Value - math.Pi),
		Trials:     out.Trials,
		Hits:       out.Hits,
		Iterates:   out.Iterates,
		DurationMS: float64(out.Duration.Microseconds()) / 1000,
	}
	if out.Exact != nil {
		resp.Digits = out.String()
	}
	if p, ok := renderer.(plotPather); ok && body.Visualize && out.Method.Visualizable() {
		resp.Plot = p.Path(out.Method)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var body CompareRequest
	if !s.decode(w, r, &body) {
		return
	}

	if body.SampleSize > 0 && body.Simulations > 0 &&
		body.SampleSize > s.maxSampleSize/body.Simulations {
		s.writeError(w, r, fmt.Errorf("%w: sample_size × simulations exceeds limit %d",
			estimator.ErrInvalidRequest, s.maxSampleSize))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	opts := []compare.Option{
		compare.WithLogger(observability.WithContext(ctx, s.logger)),
		compare.WithWarnThreshold(s.warnThreshold),
	}
	if body.Seed != nil {
		opts = append(opts, compare.WithSeed(*body.Seed))
	}

	start := time.Now()
	report, err := compare.Run(ctx, compare.Config{
		SampleSize:  body.SampleSize,
		Simulations: body.Simulations,
		Methods:     body.Methods,
	}, opts...)
	s.metrics.ObserveComparison(time.Since(start), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := CompareResponse{
		SampleSize:  report.SampleSize,
		Simulations: report.Simulations,
		Results:     make([]CompareMethodStats, 0, len(report.Results)),
		DurationMS:  float64(report.Duration.Microseconds()) / 1000,
	}
	for _, res := range report.Results {
		resp.Results = append(resp.Results, CompareMethodStats{
			Method: string(res.Method),
			Mean:   res.Mean,
			StdDev: res.StdDev,
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	methods := estimator.Methods()
	infos := make([]MethodInfo, 0, len(methods))
	for _, m := range methods {
		infos = append(infos, MethodInfo{
			ID:           string(m),
			Stochastic:   m.Stochastic(),
			Visualizable: m.Visualizable(),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"methods": infos})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed body: %v", estimator.ErrInvalidRequest, err))
		return false
	}
	return true
}

// methodLabel keeps metric labels bounded to known method ids.
func methodLabel(name string) string {
	m, err := estimator.ParseMethod(name)
	if err != nil {
		return "unknown"
	}
	return string(m)
}

// StatusFor maps an estimation error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case estimator.IsConfigError(err):
		return http.StatusBadRequest
	case errors.Is(err, estimator.ErrInsufficientSamples):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	logger := observability.WithContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err, "status", status)
	} else {
		logger.Debug("request rejected", "error", err, "status", status)
	}

	s.writeJSON(w, status, map[string]string{
		"error":      err.Error(),
		"request_id": observability.RequestID(r.Context()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

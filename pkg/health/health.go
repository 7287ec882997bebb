// Package health provides HTTP health check endpoints for the π estimation
// service: Kubernetes-style liveness and readiness probes plus pprof.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// ServiceName is reported on the index page and by the liveness probe.
const ServiceName = "pi-estimator"

// ReadinessChecker is implemented by components that can report readiness.
// The API server is the only one today.
type ReadinessChecker interface {
	Ready() bool
}

// Server provides health check HTTP endpoints.
type Server struct {
	addr    string
	checker ReadinessChecker
	started time.Time
	logger  *slog.Logger
	handler http.Handler
	server  *http.Server
	ready   atomic.Bool
}

// NewServer creates a health server. checker may be nil, in which case
// readiness only reflects whether the health server itself is running.
func NewServer(addr string, checker ReadinessChecker, logger *slog.Logger) *Server {
	s := &Server{
		addr:    addr,
		checker: checker,
		started: time.Now(),
		logger:  logger.With("component", "health"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleLiveness)
	mux.HandleFunc("GET /readyz", s.handleReadiness)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	s.handler = mux
	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second, // pprof profile defaults to 30s
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the health routes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the health server. Blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.ready.Store(true)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("health server starting", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

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
	s.logger.Info("health server shutting down")
	return s.server.Shutdown(ctx)
}

type status struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// handleLiveness answers 200 for as long as the process can serve HTTP.
func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	s.write(w, http.StatusOK, status{
		Status:  "alive",
		Service: ServiceName,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReadiness answers 200 once both the health server and the API
// server accept traffic.
func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	switch {
	case !s.ready.Load():
		s.write(w, http.StatusServiceUnavailable, status{Status: "not_ready", Reason: "health server stopped"})
	case s.checker != nil && !s.checker.Ready():
		s.write(w, http.StatusServiceUnavailable, status{Status: "not_ready", Reason: "api server not accepting requests"})
	default:
		s.write(w, http.StatusOK, status{Status: "ready"})
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.write(w, http.StatusOK, map[string]any{
		"service": ServiceName,
		"endpoints": map[string]string{
			"/healthz":      "Liveness probe",
			"/readyz":       "Readiness probe",
			"/debug/pprof/": "Profiling",
		},
	})
}

func (s *Server) write(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("health response encode failed", "error", err)
	}
}

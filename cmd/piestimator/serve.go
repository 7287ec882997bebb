package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/branched-services/go-pi/internal/api/rest"
	"github.com/branched-services/go-pi/pkg/health"
	"github.com/branched-services/go-pi/pkg/render"
)

func newServeCmd(a *app) *cobra.Command {
	var httpAddr, healthAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the estimation API over HTTP",
		Long: `Start the JSON API (POST /v1/pi/estimate, POST /v1/pi/compare,
GET /v1/pi/methods, GET /metrics) and the health server (/healthz, /readyz).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if httpAddr != "" {
				a.cfg.HTTPAddr = httpAddr
			}
			if healthAddr != "" {
				a.cfg.HealthAddr = healthAddr
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "API listen address (default from config)")
	cmd.Flags().StringVar(&healthAddr, "health-addr", "", "Health listen address (default from config)")

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger
	slog.SetDefault(logger)

	slog.Info("starting pi estimator",
		"http_addr", cfg.HTTPAddr,
		"health_addr", cfg.HealthAddr,
		"max_sample_size", cfg.MaxSampleSize,
		"request_timeout", cfg.RequestTimeout,
		"plot_dir", cfg.PlotDir,
	)

	// Build dependency graph (dependency inversion)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	apiServer := rest.NewServer(cfg.HTTPAddr, logger,
		rest.WithMaxSampleSize(cfg.MaxSampleSize),
		rest.WithRequestTimeout(cfg.RequestTimeout),
		rest.WithWarnThreshold(cfg.CompareWarnThreshold),
		rest.WithMethodParams(cfg.ParamsFor),
		rest.WithRenderer(render.New(cfg.PlotDir, render.WithLogger(logger))),
		rest.WithRegistry(registry),
	)

	healthServer := health.NewServer(cfg.HealthAddr, apiServer, logger)

	// Run all components concurrently
	errCh := make(chan error, 2)

	go func() {
		if err := apiServer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	go func() {
		if err := healthServer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		slog.Info("received shutdown signal")
	case err := <-errCh:
		slog.Error("component failed", "error", err)
		return err
	}

	// Graceful shutdown with timeout
	slog.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown in reverse dependency order
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("api server shutdown error", "error", err)
	}

	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("health server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

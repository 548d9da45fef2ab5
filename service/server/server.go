// Package server exposes the inspection flow over HTTP: handle resolution,
// classified activity reports, position state, and the known-wallet table,
// plus health and Prometheus metrics endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daocha/blockchain-lookup/service/metrics"
)

// Server represents the HTTP server for the lookup service.
type Server struct {
	addr       string
	resolver   HandleResolver
	aggregator Inspector
	positions  PositionFetcher
	gatherer   prometheus.Gatherer
	metrics    *metrics.Metrics
	logger     *slog.Logger
	server     *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The positions fetcher is optional - if nil, the positions endpoint returns 503.
// The gatherer is optional - if nil, the metrics endpoint won't be available.
func New(addr string, resolver HandleResolver, aggregator Inspector, positions PositionFetcher, gatherer prometheus.Gatherer, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:       addr,
		resolver:   resolver,
		aggregator: aggregator,
		positions:  positions,
		gatherer:   gatherer,
		metrics:    m,
		logger:     logger,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	withMetrics := func(name string, h http.Handler) http.Handler {
		return metrics.HTTPMetricsMiddleware(s.metrics, name)(h)
	}

	mux.Handle("GET /api/v1/resolve/{handle}", withMetrics("/api/v1/resolve", handleResolve(s.resolver, s.logger)))
	mux.Handle("GET /api/v1/activity/{input}", withMetrics("/api/v1/activity", handleActivity(s.aggregator, s.logger)))
	mux.Handle("GET /api/v1/positions/{account}", withMetrics("/api/v1/positions", handlePositions(s.positions, s.logger)))
	mux.Handle("GET /api/v1/wallets", withMetrics("/api/v1/wallets", handleListWallets(s.logger)))

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint (if a gatherer is configured)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
		s.logger.Info("Prometheus metrics endpoint enabled")
	}

	// Wrap mux with CORS middleware
	handler := corsMiddleware(mux)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers to all responses and handles OPTIONS preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

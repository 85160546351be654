package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mlieberg/eventledger/pkg/track"
)

// Config contains the ports the daemon listens on. IngestPort of zero
// disables the ingest server.
type Config struct {
	HealthPort  int
	MetricsPort int
	IngestPort  int
}

// Server represents the HTTP servers for health, metrics and event ingest.
type Server struct {
	healthServer  *http.Server
	metricsServer *http.Server
	ingestServer  *http.Server
	logger        *slog.Logger
}

// NewServer creates the HTTP servers.
func NewServer(
	cfg Config,
	healthChecker HealthChecker,
	registry *prometheus.Registry,
	tracker *track.Tracker,
	metrics MetricsCollector,
	logger *slog.Logger,
) *Server {
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health/live", LivenessHandler(healthChecker, logger))
	healthMux.HandleFunc("/health/ready", ReadinessHandler(healthChecker, logger))

	healthServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HealthPort),
		Handler:      healthMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	metricsServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:      metricsMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	var ingestServer *http.Server
	if cfg.IngestPort > 0 {
		ingestMux := http.NewServeMux()
		ingestMux.HandleFunc("POST /v1/track/{category}/{event}",
			TrackHandler(tracker, metrics, logger))

		ingestServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.IngestPort),
			Handler:      ingestMux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
	}

	return &Server{
		healthServer:  healthServer,
		metricsServer: metricsServer,
		ingestServer:  ingestServer,
		logger:        logger,
	}
}

// Start starts all HTTP servers.
func (s *Server) Start() error {
	s.serve("health", s.healthServer)
	s.serve("metrics", s.metricsServer)
	if s.ingestServer != nil {
		s.serve("ingest", s.ingestServer)
	}
	return nil
}

func (s *Server) serve(name string, srv *http.Server) {
	go func() {
		s.logger.Info("starting "+name+" server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error(name+" server failed", "error", err)
		}
	}()
}

// Shutdown gracefully shuts down all servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP servers")

	servers := []*http.Server{s.healthServer, s.metricsServer}
	if s.ingestServer != nil {
		servers = append(servers, s.ingestServer)
	}

	errChan := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			errChan <- srv.Shutdown(ctx)
		}()
	}

	var lastErr error
	for range servers {
		if err := <-errChan; err != nil {
			s.logger.Error("error shutting down server", "error", err)
			lastErr = err
		}
	}

	return lastErr
}

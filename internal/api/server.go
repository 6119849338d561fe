package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dnsblockd/dnsblockd/internal/config"
	"github.com/dnsblockd/dnsblockd/internal/filter"
	"github.com/dnsblockd/dnsblockd/internal/log"
	"github.com/dnsblockd/dnsblockd/internal/stats"
)

// Server represents the API server.
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg *config.Config, store *filter.Store, aggregator *stats.Aggregator, refresh chan<- struct{}, version string) *Server {
	h := NewHandler(cfg, store, aggregator, refresh, version)

	r := chi.NewRouter()

	// Apply middleware
	r.Use(Recovery)
	r.Use(Logger)
	if cfg.API.PrivateOnly {
		r.Use(PrivateSubnetOnly) // Restrict access to private subnets
	}
	r.Use(CORS)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Statistics endpoints
		r.Get("/stats", h.GetStats)
		r.Post("/stats/reset", h.ResetStats)

		// Classification endpoint
		r.Get("/check", h.CheckDomain)

		// Filter snapshot endpoints
		r.Get("/filters", h.GetFilters)
		r.Post("/filters/refresh", h.RefreshFilters)

		// Health check endpoint
		r.Get("/health", h.CheckHealth)
	})

	// Prometheus metrics on a private registry, so only dnsblockd series
	// are exposed
	if cfg.API.EnableMetrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(stats.NewCollector(aggregator))
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// HTML status page
	r.Get("/", h.StatusPage)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.API.Listen,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start starts the API server. It blocks until the server is shut down.
func (s *Server) Start() error {
	log.Infof("[API] Server listening on http://%s", s.httpServer.Addr)
	log.Infof("[API] Example: curl http://%s/api/v1/stats", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop gracefully stops the API server.
func (s *Server) Stop(ctx context.Context) error {
	log.Infof("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}

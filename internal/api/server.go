// Package api exposes the orchestration coordinator to operators over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"teamplanner/internal/events"
	"teamplanner/internal/metrics"
	"teamplanner/internal/orchestrator"
	"teamplanner/internal/permissions"
)

type Server struct {
	Dispatcher *orchestrator.Dispatcher
	Broker     events.Broker
	Perms      *permissions.Cache // nil disables permission gating
	Logger     zerolog.Logger
	Now        func() time.Time
}

func NewServer(d *orchestrator.Dispatcher, broker events.Broker, perms *permissions.Cache, logger zerolog.Logger) *Server {
	return &Server{Dispatcher: d, Broker: broker, Perms: perms, Logger: logger.With().Str("component", "api").Logger(), Now: time.Now}
}

// Routes builds the operator mux wrapped in logging and metrics middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/v1/version", s.VersionHandler)

	// Coordinator
	mux.HandleFunc("/v1/state", s.StateHandler)
	mux.HandleFunc("/v1/orchestrations", s.OrchestrationsHandler)
	mux.HandleFunc("/v1/coverage", s.CoverageHandler)
	mux.HandleFunc("/v1/availability", s.AvailabilityHandler)
	mux.HandleFunc("/v1/system/health", s.SystemHealthHandler)
	mux.HandleFunc("/v1/system/metrics", s.SystemMetricsHandler)
	mux.HandleFunc("/v1/history", s.HistoryHandler)
	mux.HandleFunc("/v1/error", s.ErrorHandler)
	mux.HandleFunc("/v1/reset", s.ResetHandler)
	mux.HandleFunc("/v1/selection", s.SelectionHandler)

	// Change stream
	mux.HandleFunc("/v1/events", s.EventsWSHandler)

	return s.logMiddleware(mux)
}

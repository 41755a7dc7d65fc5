// Package api exposes the REST interface of the uptime monitor: monitor
// CRUD, metric and alert queries, analytics, and live system metrics. The
// handlers talk to the store, the engine and the analytics aggregator through
// narrow interfaces so they can be exercised without a database.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"uptime-monitor/internal/analytics"
	"uptime-monitor/internal/config"
	"uptime-monitor/internal/model"
	"uptime-monitor/internal/probe"
	"uptime-monitor/internal/store"
)

// Store is the persistence surface the handlers consume.
type Store interface {
	Ping(ctx context.Context) error

	ListMonitors(ctx context.Context) ([]*model.MonitorTarget, error)
	GetMonitor(ctx context.Context, id int64) (*model.MonitorTarget, error)
	CreateMonitor(ctx context.Context, t *model.MonitorTarget) error
	UpdateMonitor(ctx context.Context, t *model.MonitorTarget) error
	DeleteMonitor(ctx context.Context, id int64) error
	MonitorStatus(ctx context.Context, monitorID int64) (*store.MonitorStatus, error)

	ListSamples(ctx context.Context, f store.MetricFilter) ([]*model.MetricSample, error)
	Summary(ctx context.Context, monitorID int64, hours int) (*store.MetricsSummary, error)
	ListSystemMetrics(ctx context.Context, hours, limit int) ([]*model.ResourceUsage, error)

	ListAlerts(ctx context.Context, f store.AlertFilter) ([]*model.AlertRecord, error)
	GetAlert(ctx context.Context, id int64) (*model.AlertRecord, error)
	AcknowledgeAlert(ctx context.Context, id int64) (*model.AlertRecord, error)
	AlertStats(ctx context.Context, hours int) (*store.AlertStats, error)
}

// Engine is the scheduling surface the handlers drive. Registry mutations
// take effect on the next scheduling decision.
type Engine interface {
	UpsertTarget(target *model.MonitorTarget) error
	RemoveTarget(id int64)
	AlertStates() []*model.AlertState
	AlertState(monitorID int64) (*model.AlertState, bool)
	CheckNow(ctx context.Context, target *model.MonitorTarget) (*model.MetricSample, error)
}

// Aggregator is the read-only analytics surface.
type Aggregator interface {
	Uptime(ctx context.Context, days int, monitorID int64) (*analytics.UptimeReport, error)
	Performance(ctx context.Context, monitorID int64, hours int) (*analytics.PerformanceReport, error)
	Trends(ctx context.Context, days int) (*analytics.TrendsReport, error)
	SystemTrends(ctx context.Context, hours int) (*analytics.SystemTrendsReport, error)
}

// Server wires the REST handlers to their collaborators.
type Server struct {
	cfg       *config.Config
	store     Store
	engine    Engine
	analytics Aggregator
	system    probe.Prober // live system metrics, never persisted
	version   string
	logger    zerolog.Logger
}

// NewServer creates the REST server.
func NewServer(cfg *config.Config, st Store, eng Engine, agg Aggregator, system probe.Prober, version string, logger zerolog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		store:     st,
		engine:    eng,
		analytics: agg,
		system:    system,
		version:   version,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Router assembles the chi route tree with CORS and request logging.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(s.requestLogger)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/system/metrics", s.handleSystemMetrics)

		r.Route("/monitors", func(r chi.Router) {
			r.Get("/", s.handleListMonitors)
			r.Post("/", s.handleCreateMonitor)
			r.Get("/{id}", s.handleGetMonitor)
			r.Put("/{id}", s.handleUpdateMonitor)
			r.Delete("/{id}", s.handleDeleteMonitor)
			r.Post("/{id}/check", s.handleCheckMonitor)
		})

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/", s.handleListMetrics)
			r.Get("/summary", s.handleMetricsSummary)
			r.Get("/system", s.handleSystemHistory)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", s.handleListAlerts)
			r.Get("/stats", s.handleAlertStats)
			r.Get("/states", s.handleAlertStates)
			r.Get("/{id}", s.handleGetAlert)
			r.Post("/{id}/acknowledge", s.handleAcknowledgeAlert)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/uptime", s.handleAnalyticsUptime)
			r.Get("/performance", s.handleAnalyticsPerformance)
			r.Get("/trends", s.handleAnalyticsTrends)
			r.Get("/system/trends", s.handleSystemTrends)
		})
	})

	return r
}

// Run serves the API until the context is canceled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("api server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	s.logger.Info().Msg("api server stopped")
	return ctx.Err()
}

// requestLogger logs each request with method, path, status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// handleRoot returns the service banner.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "uptime-monitor",
		"version": s.version,
		"endpoints": []string{
			"/health",
			"/api/monitors",
			"/api/metrics",
			"/api/alerts",
			"/api/analytics",
			"/api/system/metrics",
		},
	})
}

// handleHealth reports service and database health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("health check failed")
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSystemMetrics samples live cpu/memory/disk usage without persisting it.
func (s *Server) handleSystemMetrics(w http.ResponseWriter, r *http.Request) {
	sample := s.system.Run(r.Context(), &model.MonitorTarget{Kind: model.KindSystem, URL: "/"})
	if sample.Resources == nil {
		respondError(w, http.StatusInternalServerError, "failed to collect system metrics")
		return
	}
	respondJSON(w, http.StatusOK, sample.Resources)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError writes the {"error": ...} shape every handler uses.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondValidationError writes a 400 with per-field details.
func respondValidationError(w http.ResponseWriter, errs model.ValidationErrors) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":   "validation failed",
		"details": errs.Messages(),
	})
}

// urlID parses the {id} route parameter.
func urlID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// queryInt parses an integer query parameter, clamped to [1, max], falling
// back when absent or invalid.
func queryInt(r *http.Request, name string, fallback, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	if v > max {
		return max
	}
	return v
}

// queryID parses an optional int64 query parameter; 0 means absent.
func queryID(r *http.Request, name string) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return 0
	}
	return v
}

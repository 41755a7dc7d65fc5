package api

import (
	"errors"
	"net/http"

	"uptime-monitor/internal/analytics"
)

// handleAnalyticsUptime reports availability per monitor over the last days
// (default 7, capped at 90). monitor_id narrows to one monitor.
func (s *Server) handleAnalyticsUptime(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7, 90)
	monitorID := queryID(r, "monitor_id")

	report, err := s.analytics.Uptime(r.Context(), days, monitorID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute uptime report")
		respondError(w, http.StatusInternalServerError, "failed to compute uptime report")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleAnalyticsPerformance reports one monitor's latency distribution over
// the last hours (default 24, capped at 720). monitor_id is required.
func (s *Server) handleAnalyticsPerformance(w http.ResponseWriter, r *http.Request) {
	monitorID := queryID(r, "monitor_id")
	if monitorID == 0 {
		respondError(w, http.StatusBadRequest, "monitor_id is required")
		return
	}
	hours := queryInt(r, "hours", 24, 720)

	report, err := s.analytics.Performance(r.Context(), monitorID, hours)
	if errors.Is(err, analytics.ErrNoData) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("monitor_id", monitorID).Msg("failed to compute performance report")
		respondError(w, http.StatusInternalServerError, "failed to compute performance report")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleAnalyticsTrends reports daily availability buckets per monitor over
// the last days (default 7, capped at 90).
func (s *Server) handleAnalyticsTrends(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7, 90)

	report, err := s.analytics.Trends(r.Context(), days)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute trends report")
		respondError(w, http.StatusInternalServerError, "failed to compute trends report")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleSystemTrends summarizes system resource usage over the last hours
// (default 24, capped at 720).
func (s *Server) handleSystemTrends(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24, 720)

	report, err := s.analytics.SystemTrends(r.Context(), hours)
	if errors.Is(err, analytics.ErrNoData) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute system trends")
		respondError(w, http.StatusInternalServerError, "failed to compute system trends")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

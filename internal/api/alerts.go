package api

import (
	"errors"
	"net/http"

	"uptime-monitor/internal/model"
	"uptime-monitor/internal/store"
)

// handleListAlerts lists alert records, newest first. Accepts monitor_id,
// status (active/resolved) and limit (up to 500).
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != model.RecordActive && status != model.RecordResolved {
		respondError(w, http.StatusBadRequest, "status must be active or resolved")
		return
	}

	alerts, err := s.store.ListAlerts(r.Context(), store.AlertFilter{
		MonitorID: queryID(r, "monitor_id"),
		Status:    status,
		Limit:     queryInt(r, "limit", 50, 500),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list alerts")
		respondError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	if alerts == nil {
		alerts = []*model.AlertRecord{}
	}
	respondJSON(w, http.StatusOK, alerts)
}

// handleGetAlert returns one alert record.
func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	alert, err := s.store.GetAlert(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "alert not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("alert_id", id).Msg("failed to get alert")
		respondError(w, http.StatusInternalServerError, "failed to get alert")
		return
	}
	respondJSON(w, http.StatusOK, alert)
}

// handleAcknowledgeAlert marks an alert acknowledged, once. Acknowledging
// never feeds back into the alert state machine.
func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	alert, err := s.store.AcknowledgeAlert(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "alert not found or already acknowledged")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("alert_id", id).Msg("failed to acknowledge alert")
		respondError(w, http.StatusInternalServerError, "failed to acknowledge alert")
		return
	}
	respondJSON(w, http.StatusOK, alert)
}

// handleAlertStats aggregates alert counts over the last hours.
func (s *Server) handleAlertStats(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24, 720)

	stats, err := s.store.AlertStats(r.Context(), hours)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to aggregate alert stats")
		respondError(w, http.StatusInternalServerError, "failed to aggregate alert stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"period_hours": hours,
		"stats":        stats,
	})
}

// handleAlertStates returns the live in-memory alert state per monitor.
func (s *Server) handleAlertStates(w http.ResponseWriter, r *http.Request) {
	if monitorID := queryID(r, "monitor_id"); monitorID != 0 {
		state, ok := s.engine.AlertState(monitorID)
		if !ok {
			respondError(w, http.StatusNotFound, "no alert state for this monitor")
			return
		}
		respondJSON(w, http.StatusOK, state)
		return
	}
	respondJSON(w, http.StatusOK, s.engine.AlertStates())
}

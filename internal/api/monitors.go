package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"uptime-monitor/internal/engine"
	"uptime-monitor/internal/model"
	"uptime-monitor/internal/store"
)

// monitorRequest is the JSON body for create and update. Pointer fields
// distinguish "absent" from zero so partial updates merge cleanly.
type monitorRequest struct {
	Name      *string `json:"name"`
	URL       *string `json:"url"`
	Kind      *string `json:"monitor_type"`
	Interval  *int    `json:"check_interval"`
	Timeout   *int    `json:"timeout"`
	Threshold *int    `json:"alert_threshold"`
	Enabled   *bool   `json:"is_active"`
}

// apply merges the request into the target, leaving absent fields untouched.
func (req *monitorRequest) apply(t *model.MonitorTarget) {
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.URL != nil {
		t.URL = *req.URL
	}
	if req.Kind != nil {
		t.Kind = model.TargetKind(*req.Kind)
	}
	if req.Interval != nil {
		t.Interval = *req.Interval
	}
	if req.Timeout != nil {
		t.Timeout = *req.Timeout
	}
	if req.Threshold != nil {
		t.Threshold = *req.Threshold
	}
	if req.Enabled != nil {
		t.Enabled = *req.Enabled
	}
}

// monitorResponse embeds the live status block into a monitor.
type monitorResponse struct {
	*model.MonitorTarget
	Status *store.MonitorStatus `json:"status,omitempty"`
}

// handleListMonitors returns every monitor with its status block.
func (s *Server) handleListMonitors(w http.ResponseWriter, r *http.Request) {
	monitors, err := s.store.ListMonitors(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list monitors")
		respondError(w, http.StatusInternalServerError, "failed to list monitors")
		return
	}

	out := make([]*monitorResponse, 0, len(monitors))
	for _, m := range monitors {
		status, err := s.store.MonitorStatus(r.Context(), m.ID)
		if err != nil {
			s.logger.Error().Err(err).Int64("monitor_id", m.ID).Msg("failed to load monitor status")
			respondError(w, http.StatusInternalServerError, "failed to load monitor status")
			return
		}
		out = append(out, &monitorResponse{MonitorTarget: m, Status: status})
	}
	respondJSON(w, http.StatusOK, out)
}

// handleGetMonitor returns one monitor with its status block.
func (s *Server) handleGetMonitor(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid monitor id")
		return
	}

	m, err := s.store.GetMonitor(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "monitor not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("monitor_id", id).Msg("failed to get monitor")
		respondError(w, http.StatusInternalServerError, "failed to get monitor")
		return
	}

	status, err := s.store.MonitorStatus(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Int64("monitor_id", id).Msg("failed to load monitor status")
		respondError(w, http.StatusInternalServerError, "failed to load monitor status")
		return
	}
	respondJSON(w, http.StatusOK, &monitorResponse{MonitorTarget: m, Status: status})
}

// handleCreateMonitor creates a monitor and registers it with the engine.
// Omitted interval/timeout/threshold fields fall back to the configured
// monitoring defaults.
func (s *Server) handleCreateMonitor(w http.ResponseWriter, r *http.Request) {
	var req monitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target := &model.MonitorTarget{
		Interval:  int(s.cfg.Monitoring.DefaultInterval.Seconds()),
		Timeout:   int(s.cfg.Monitoring.DefaultTimeout.Seconds()),
		Threshold: s.cfg.Monitoring.DefaultThreshold,
		Enabled:   true,
	}
	req.apply(target)
	target.Normalize()

	if err := target.Validate(); err != nil {
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) {
			respondValidationError(w, verrs)
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.CreateMonitor(r.Context(), target); err != nil {
		s.logger.Error().Err(err).Str("name", target.Name).Msg("failed to create monitor")
		respondError(w, http.StatusInternalServerError, "failed to create monitor")
		return
	}

	// Already validated; registry upsert cannot fail here.
	if err := s.engine.UpsertTarget(target); err != nil {
		s.logger.Error().Err(err).Int64("monitor_id", target.ID).Msg("failed to register monitor")
	}

	respondJSON(w, http.StatusCreated, target)
}

// handleUpdateMonitor merges a partial update into the stored definition,
// re-validates it as a whole and installs the new snapshot.
func (s *Server) handleUpdateMonitor(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid monitor id")
		return
	}

	var req monitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := s.store.GetMonitor(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "monitor not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("monitor_id", id).Msg("failed to get monitor")
		respondError(w, http.StatusInternalServerError, "failed to get monitor")
		return
	}

	req.apply(target)
	target.Normalize()

	if err := target.Validate(); err != nil {
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) {
			respondValidationError(w, verrs)
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateMonitor(r.Context(), target); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "monitor not found")
			return
		}
		s.logger.Error().Err(err).Int64("monitor_id", id).Msg("failed to update monitor")
		respondError(w, http.StatusInternalServerError, "failed to update monitor")
		return
	}

	if err := s.engine.UpsertTarget(target); err != nil {
		s.logger.Error().Err(err).Int64("monitor_id", id).Msg("failed to reinstall monitor")
	}

	respondJSON(w, http.StatusOK, target)
}

// handleDeleteMonitor removes a monitor and cancels its scheduling.
func (s *Server) handleDeleteMonitor(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid monitor id")
		return
	}

	if err := s.store.DeleteMonitor(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "monitor not found")
			return
		}
		s.logger.Error().Err(err).Int64("monitor_id", id).Msg("failed to delete monitor")
		respondError(w, http.StatusInternalServerError, "failed to delete monitor")
		return
	}

	s.engine.RemoveTarget(id)
	respondJSON(w, http.StatusOK, map[string]string{"message": "monitor deleted"})
}

// handleCheckMonitor probes the monitor right now, outside its schedule.
func (s *Server) handleCheckMonitor(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid monitor id")
		return
	}

	target, err := s.store.GetMonitor(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "monitor not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("monitor_id", id).Msg("failed to get monitor")
		respondError(w, http.StatusInternalServerError, "failed to get monitor")
		return
	}

	sample, err := s.engine.CheckNow(r.Context(), target)
	if errors.Is(err, engine.ErrProbeInFlight) {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("monitor_id", id).Msg("manual check failed")
		respondError(w, http.StatusInternalServerError, "manual check failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"monitor_id":    target.ID,
		"status":        sample.Status,
		"status_code":   sample.StatusCode,
		"response_time": sample.LatencyMillis(),
		"error_message": sample.Error,
		"checked_at":    sample.CheckedAt,
	})
}

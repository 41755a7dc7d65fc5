package api

import (
	"net/http"
	"time"

	"uptime-monitor/internal/model"
	"uptime-monitor/internal/store"
)

// metricResponse is one sample row as the API lists it.
type metricResponse struct {
	ID           int64              `json:"id"`
	MonitorID    int64              `json:"monitor_id"`
	MonitorName  string             `json:"monitor_name"`
	Status       model.SampleStatus `json:"status"`
	StatusCode   int                `json:"status_code,omitempty"`
	ResponseTime *float64           `json:"response_time"`
	Error        string             `json:"error_message,omitempty"`
	CheckedAt    time.Time          `json:"checked_at"`
}

func toMetricResponse(s *model.MetricSample) *metricResponse {
	resp := &metricResponse{
		ID:          s.ID,
		MonitorID:   s.MonitorID,
		MonitorName: s.MonitorName,
		Status:      s.Status,
		StatusCode:  s.StatusCode,
		Error:       s.Error,
		CheckedAt:   s.CheckedAt,
	}
	if s.HasLatency() {
		ms := s.LatencyMillis()
		resp.ResponseTime = &ms
	}
	return resp
}

// handleListMetrics lists recent samples, newest first. Accepts monitor_id,
// start_time/end_time (RFC 3339) and limit (up to 1000).
func (s *Server) handleListMetrics(w http.ResponseWriter, r *http.Request) {
	filter := store.MetricFilter{
		MonitorID: queryID(r, "monitor_id"),
		Limit:     queryInt(r, "limit", 100, 1000),
	}

	if raw := r.URL.Query().Get("start_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid start_time, expected RFC 3339")
			return
		}
		filter.Start = t
	}
	if raw := r.URL.Query().Get("end_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid end_time, expected RFC 3339")
			return
		}
		filter.End = t
	}

	samples, err := s.store.ListSamples(r.Context(), filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list metrics")
		respondError(w, http.StatusInternalServerError, "failed to list metrics")
		return
	}

	out := make([]*metricResponse, 0, len(samples))
	for _, sample := range samples {
		out = append(out, toMetricResponse(sample))
	}
	respondJSON(w, http.StatusOK, out)
}

// handleMetricsSummary aggregates the last hours of samples, optionally for
// one monitor. hours is capped at 720 (30 days).
func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24, 720)
	monitorID := queryID(r, "monitor_id")

	summary, err := s.store.Summary(r.Context(), monitorID, hours)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to summarize metrics")
		respondError(w, http.StatusInternalServerError, "failed to summarize metrics")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"period_hours": hours,
		"summary":      summary,
	})
}

// handleSystemHistory lists persisted system resource snapshots, newest first.
func (s *Server) handleSystemHistory(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24, 720)
	limit := queryInt(r, "limit", 100, 1000)

	history, err := s.store.ListSystemMetrics(r.Context(), hours, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list system metrics")
		respondError(w, http.StatusInternalServerError, "failed to list system metrics")
		return
	}

	if history == nil {
		history = []*model.ResourceUsage{}
	}
	respondJSON(w, http.StatusOK, history)
}

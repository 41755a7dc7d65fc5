package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uptime-monitor/internal/analytics"
	"uptime-monitor/internal/model"
)

func TestListAlertsRejectsUnknownStatus(t *testing.T) {
	s := testServer(newFakeStore(), newFakeEngine(), &fakeAggregator{})

	rec := doRequest(s, http.MethodGet, "/api/alerts/?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAlertsFiltersByStatus(t *testing.T) {
	st := newFakeStore()
	st.alerts[1] = &model.AlertRecord{ID: 1, MonitorID: 1, Status: model.RecordActive}
	st.alerts[2] = &model.AlertRecord{ID: 2, MonitorID: 1, Status: model.RecordResolved}
	s := testServer(st, newFakeEngine(), &fakeAggregator{})

	rec := doRequest(s, http.MethodGet, "/api/alerts/?status=active", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var alerts []*model.AlertRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, int64(1), alerts[0].ID)
}

func TestAcknowledgeAlertOnce(t *testing.T) {
	st := newFakeStore()
	st.alerts[7] = &model.AlertRecord{ID: 7, MonitorID: 1, Status: model.RecordActive}
	s := testServer(st, newFakeEngine(), &fakeAggregator{})

	rec := doRequest(s, http.MethodPost, "/api/alerts/7/acknowledge", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ack model.AlertRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.True(t, ack.Acknowledged)
	require.NotNil(t, ack.AcknowledgedAt)

	// Second acknowledge is a 404, matching the conditional update.
	rec = doRequest(s, http.MethodPost, "/api/alerts/7/acknowledge", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertStatesEndpoint(t *testing.T) {
	eng := newFakeEngine()
	eng.states[3] = &model.AlertState{
		MonitorID:        3,
		Status:           model.AlertAlerting,
		ConsecutiveFails: 4,
		LastCheckedAt:    time.Now().UTC(),
	}
	s := testServer(newFakeStore(), eng, &fakeAggregator{})

	rec := doRequest(s, http.MethodGet, "/api/alerts/states?monitor_id=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state model.AlertState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, model.AlertAlerting, state.Status)
	assert.Equal(t, 4, state.ConsecutiveFails)

	rec = doRequest(s, http.MethodGet, "/api/alerts/states?monitor_id=9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyticsUptimeEndpoint(t *testing.T) {
	agg := &fakeAggregator{
		uptime: &analytics.UptimeReport{
			PeriodDays: 7,
			Monitors: []*analytics.MonitorUptime{
				{MonitorID: 1, MonitorName: "Google", TotalChecks: 4, SuccessfulChecks: 3, UptimePercent: 75},
			},
		},
	}
	s := testServer(newFakeStore(), newFakeEngine(), agg)

	rec := doRequest(s, http.MethodGet, "/api/analytics/uptime", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report analytics.UptimeReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Monitors, 1)
	assert.Equal(t, 75.0, report.Monitors[0].UptimePercent)
}

func TestAnalyticsPerformanceRequiresMonitorID(t *testing.T) {
	s := testServer(newFakeStore(), newFakeEngine(), &fakeAggregator{})

	rec := doRequest(s, http.MethodGet, "/api/analytics/performance", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsPerformanceNoData(t *testing.T) {
	agg := &fakeAggregator{err: analytics.ErrNoData}
	s := testServer(newFakeStore(), newFakeEngine(), agg)

	rec := doRequest(s, http.MethodGet, "/api/analytics/performance?monitor_id=1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsListRejectsBadTimestamp(t *testing.T) {
	s := testServer(newFakeStore(), newFakeEngine(), &fakeAggregator{})

	rec := doRequest(s, http.MethodGet, "/api/metrics/?start_time=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsListOmitsLatencyForTimeouts(t *testing.T) {
	st := newFakeStore()
	st.samples = []*model.MetricSample{
		{ID: 1, MonitorID: 1, Status: model.StatusSuccess, Latency: 30 * time.Millisecond, CheckedAt: time.Now().UTC()},
		{ID: 2, MonitorID: 1, Status: model.StatusTimeout, CheckedAt: time.Now().UTC()},
	}
	s := testServer(st, newFakeEngine(), &fakeAggregator{})

	rec := doRequest(s, http.MethodGet, "/api/metrics/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, float64(30), rows[0]["response_time"])
	assert.Nil(t, rows[1]["response_time"])
}

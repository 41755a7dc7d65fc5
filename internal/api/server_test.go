package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"uptime-monitor/internal/analytics"
	"uptime-monitor/internal/config"
	"uptime-monitor/internal/model"
	"uptime-monitor/internal/store"
)

// fakeStore implements Store in memory for handler tests.
type fakeStore struct {
	pingErr  error
	monitors map[int64]*model.MonitorTarget
	nextID   int64
	samples  []*model.MetricSample
	system   []*model.ResourceUsage
	alerts   map[int64]*model.AlertRecord
	summary  *store.MetricsSummary
	stats    *store.AlertStats
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		monitors: make(map[int64]*model.MonitorTarget),
		alerts:   make(map[int64]*model.AlertRecord),
		nextID:   1,
		summary:  &store.MetricsSummary{},
		stats:    &store.AlertStats{ByMonitor: []*store.MonitorAlertCount{}},
	}
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) ListMonitors(ctx context.Context) ([]*model.MonitorTarget, error) {
	out := make([]*model.MonitorTarget, 0, len(f.monitors))
	for _, m := range f.monitors {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) GetMonitor(ctx context.Context, id int64) (*model.MonitorTarget, error) {
	m, ok := f.monitors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *m
	return &clone, nil
}

func (f *fakeStore) CreateMonitor(ctx context.Context, t *model.MonitorTarget) error {
	t.ID = f.nextID
	f.nextID++
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	clone := *t
	f.monitors[t.ID] = &clone
	return nil
}

func (f *fakeStore) UpdateMonitor(ctx context.Context, t *model.MonitorTarget) error {
	if _, ok := f.monitors[t.ID]; !ok {
		return store.ErrNotFound
	}
	clone := *t
	f.monitors[t.ID] = &clone
	return nil
}

func (f *fakeStore) DeleteMonitor(ctx context.Context, id int64) error {
	if _, ok := f.monitors[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.monitors, id)
	return nil
}

func (f *fakeStore) MonitorStatus(ctx context.Context, monitorID int64) (*store.MonitorStatus, error) {
	return &store.MonitorStatus{}, nil
}

func (f *fakeStore) ListSamples(ctx context.Context, filter store.MetricFilter) ([]*model.MetricSample, error) {
	return f.samples, nil
}

func (f *fakeStore) Summary(ctx context.Context, monitorID int64, hours int) (*store.MetricsSummary, error) {
	return f.summary, nil
}

func (f *fakeStore) ListSystemMetrics(ctx context.Context, hours, limit int) ([]*model.ResourceUsage, error) {
	return f.system, nil
}

func (f *fakeStore) ListAlerts(ctx context.Context, filter store.AlertFilter) ([]*model.AlertRecord, error) {
	out := make([]*model.AlertRecord, 0, len(f.alerts))
	for _, a := range f.alerts {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) GetAlert(ctx context.Context, id int64) (*model.AlertRecord, error) {
	a, ok := f.alerts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) AcknowledgeAlert(ctx context.Context, id int64) (*model.AlertRecord, error) {
	a, ok := f.alerts[id]
	if !ok || a.Acknowledged {
		return nil, store.ErrNotFound
	}
	now := time.Now().UTC()
	a.Acknowledged = true
	a.AcknowledgedAt = &now
	return a, nil
}

func (f *fakeStore) AlertStats(ctx context.Context, hours int) (*store.AlertStats, error) {
	return f.stats, nil
}

// fakeEngine records registry mutations and serves canned state.
type fakeEngine struct {
	upserted   []*model.MonitorTarget
	removed    []int64
	states     map[int64]*model.AlertState
	checkErr   error
	lastSample *model.MetricSample
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{states: make(map[int64]*model.AlertState)}
}

func (f *fakeEngine) UpsertTarget(target *model.MonitorTarget) error {
	f.upserted = append(f.upserted, target)
	return nil
}

func (f *fakeEngine) RemoveTarget(id int64) { f.removed = append(f.removed, id) }

func (f *fakeEngine) AlertStates() []*model.AlertState {
	out := make([]*model.AlertState, 0, len(f.states))
	for _, s := range f.states {
		out = append(out, s)
	}
	return out
}

func (f *fakeEngine) AlertState(monitorID int64) (*model.AlertState, bool) {
	s, ok := f.states[monitorID]
	return s, ok
}

func (f *fakeEngine) CheckNow(ctx context.Context, target *model.MonitorTarget) (*model.MetricSample, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	if f.lastSample != nil {
		return f.lastSample, nil
	}
	return &model.MetricSample{
		MonitorID: target.ID,
		Status:    model.StatusSuccess,
		Latency:   42 * time.Millisecond,
		CheckedAt: time.Now().UTC(),
	}, nil
}

// fakeAggregator serves canned analytics reports.
type fakeAggregator struct {
	uptime      *analytics.UptimeReport
	performance *analytics.PerformanceReport
	trends      *analytics.TrendsReport
	system      *analytics.SystemTrendsReport
	err         error
}

func (f *fakeAggregator) Uptime(ctx context.Context, days int, monitorID int64) (*analytics.UptimeReport, error) {
	return f.uptime, f.err
}

func (f *fakeAggregator) Performance(ctx context.Context, monitorID int64, hours int) (*analytics.PerformanceReport, error) {
	return f.performance, f.err
}

func (f *fakeAggregator) Trends(ctx context.Context, days int) (*analytics.TrendsReport, error) {
	return f.trends, f.err
}

func (f *fakeAggregator) SystemTrends(ctx context.Context, hours int) (*analytics.SystemTrendsReport, error) {
	return f.system, f.err
}

// fakeProber always returns a fixed system sample.
type fakeProber struct {
	sample *model.MetricSample
}

func (f *fakeProber) Run(ctx context.Context, target *model.MonitorTarget) *model.MetricSample {
	if f.sample != nil {
		return f.sample
	}
	return &model.MetricSample{
		Status: model.StatusSuccess,
		Resources: &model.ResourceUsage{
			CPUPercent:    12.5,
			MemoryPercent: 41.0,
			DiskPercent:   63.2,
		},
		CheckedAt: time.Now().UTC(),
	}
}

// testServer assembles a server over the fakes with default config.
func testServer(st *fakeStore, eng *fakeEngine, agg *fakeAggregator) *Server {
	cfg := &config.Config{
		Server: config.ServerConfig{CORSOrigins: []string{"*"}},
		Monitoring: config.MonitoringConfig{
			DefaultInterval:  60 * time.Second,
			DefaultTimeout:   10 * time.Second,
			DefaultThreshold: 3,
		},
	}
	return NewServer(cfg, st, eng, agg, &fakeProber{}, "test", zerolog.Nop())
}

// doRequest runs one request through the full router.
func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

var errBoom = errors.New("boom")

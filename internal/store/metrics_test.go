package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uptime-monitor/internal/model"
)

var sampleColumns = []string{
	"id", "monitor_id", "monitor_name", "status", "status_code",
	"latency_ms", "error_message", "checked_at",
}

func TestStore_AppendSample(t *testing.T) {
	t.Run("http success", func(t *testing.T) {
		s, mock := newTestStore(t)
		now := time.Now().UTC().Truncate(time.Second)

		sample := &model.MetricSample{
			MonitorID:  1,
			Status:     model.StatusSuccess,
			StatusCode: 200,
			Latency:    123 * time.Millisecond,
			CheckedAt:  now,
		}

		mock.ExpectQuery("INSERT INTO metrics").
			WithArgs(int64(1), "success", 200, 123.0, nil, now).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(55)))

		err := s.AppendSample(context.Background(), sample)
		require.NoError(t, err)
		assert.Equal(t, int64(55), sample.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("timeout has no latency or status code", func(t *testing.T) {
		s, mock := newTestStore(t)
		now := time.Now().UTC().Truncate(time.Second)

		sample := &model.MetricSample{
			MonitorID: 2,
			Status:    model.StatusTimeout,
			Error:     "Request timeout",
			CheckedAt: now,
		}

		mock.ExpectQuery("INSERT INTO metrics").
			WithArgs(int64(2), "timeout", nil, nil, "Request timeout", now).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(56)))

		require.NoError(t, s.AppendSample(context.Background(), sample))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("system sample also records resources", func(t *testing.T) {
		s, mock := newTestStore(t)
		now := time.Now().UTC().Truncate(time.Second)

		sample := &model.MetricSample{
			MonitorID: 3,
			Status:    model.StatusSuccess,
			CheckedAt: now,
			Resources: &model.ResourceUsage{
				CPUPercent:    25.5,
				MemoryPercent: 60.2,
				MemoryUsedGB:  9.6,
				MemoryTotalGB: 16.0,
				DiskPercent:   43.1,
				DiskUsedGB:    215.3,
				DiskTotalGB:   500.0,
				RecordedAt:    now,
			},
		}

		mock.ExpectQuery("INSERT INTO metrics").
			WithArgs(int64(3), "success", nil, nil, nil, now).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(57)))
		mock.ExpectExec("INSERT INTO system_metrics").
			WithArgs(25.5, 60.2, 9.6, 16.0, 43.1, 215.3, 500.0, now).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, s.AppendSample(context.Background(), sample))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_QueryRange(t *testing.T) {
	s, mock := newTestStore(t)
	start := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	end := start.Add(time.Hour)
	latency := 88.0
	code := 200

	mock.ExpectQuery("SELECT m.id, m.monitor_id, mon.name").
		WithArgs(int64(1), start, end).
		WillReturnRows(pgxmock.NewRows(sampleColumns).
			AddRow(int64(10), int64(1), "Google", "success", &code, &latency, nil, start.Add(time.Minute)).
			AddRow(int64(11), int64(1), "Google", "timeout", nil, nil, strPtr("Request timeout"), start.Add(2*time.Minute)))

	samples, err := s.QueryRange(context.Background(), 1, start, end)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, "Google", samples[0].MonitorName)
	assert.Equal(t, model.StatusSuccess, samples[0].Status)
	assert.Equal(t, 200, samples[0].StatusCode)
	assert.Equal(t, 88*time.Millisecond, samples[0].Latency)
	assert.True(t, samples[0].HasLatency())

	assert.Equal(t, model.StatusTimeout, samples[1].Status)
	assert.False(t, samples[1].HasLatency())
	assert.Equal(t, "Request timeout", samples[1].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListSamples(t *testing.T) {
	t.Run("filters and clamps limit", func(t *testing.T) {
		s, mock := newTestStore(t)
		now := time.Now().UTC().Truncate(time.Second)
		latency := 10.0

		mock.ExpectQuery("SELECT m.id, m.monitor_id, mon.name").
			WithArgs(int64(3), maxListLimit).
			WillReturnRows(pgxmock.NewRows(sampleColumns).
				AddRow(int64(1), int64(3), "API", "success", nil, &latency, nil, now))

		samples, err := s.ListSamples(context.Background(), MetricFilter{MonitorID: 3, Limit: 5000})
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.Equal(t, "API", samples[0].MonitorName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("default limit", func(t *testing.T) {
		s, mock := newTestStore(t)

		mock.ExpectQuery("SELECT m.id, m.monitor_id, mon.name").
			WithArgs(100).
			WillReturnRows(pgxmock.NewRows(sampleColumns))

		samples, err := s.ListSamples(context.Background(), MetricFilter{})
		require.NoError(t, err)
		assert.Empty(t, samples)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Summary(t *testing.T) {
	t.Run("all monitors", func(t *testing.T) {
		s, mock := newTestStore(t)

		mock.ExpectQuery("SELECT COUNT").
			WithArgs(pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"total", "success", "failed", "avg", "min", "max"}).
				AddRow(10, 9, 1, 120.456, 50.0, 300.123))

		sum, err := s.Summary(context.Background(), 0, 24)
		require.NoError(t, err)
		assert.Equal(t, 10, sum.TotalChecks)
		assert.Equal(t, 9, sum.SuccessfulChecks)
		assert.Equal(t, 1, sum.FailedChecks)
		assert.Equal(t, 90.0, sum.UptimePercent)
		assert.Equal(t, 120.46, sum.AvgResponseTime)
		assert.Equal(t, 300.12, sum.MaxResponseTime)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("single monitor with no samples", func(t *testing.T) {
		s, mock := newTestStore(t)

		mock.ExpectQuery("SELECT COUNT").
			WithArgs(pgxmock.AnyArg(), int64(5)).
			WillReturnRows(pgxmock.NewRows([]string{"total", "success", "failed", "avg", "min", "max"}).
				AddRow(0, 0, 0, 0.0, 0.0, 0.0))

		sum, err := s.Summary(context.Background(), 5, 24)
		require.NoError(t, err)
		assert.Zero(t, sum.TotalChecks)
		assert.Zero(t, sum.UptimePercent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_PruneSamples(t *testing.T) {
	s, mock := newTestStore(t)
	cutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)

	mock.ExpectExec("DELETE FROM metrics").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 42))

	n, err := s.PruneSamples(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(s string) *string { return &s }

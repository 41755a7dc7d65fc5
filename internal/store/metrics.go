package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"uptime-monitor/internal/model"
)

// MetricFilter narrows a sample listing. Zero values mean "no filter".
type MetricFilter struct {
	MonitorID int64
	Start     time.Time
	End       time.Time
	Limit     int
}

// MetricsSummary aggregates a window of samples, optionally per monitor.
type MetricsSummary struct {
	TotalChecks      int     `json:"total_checks"`
	SuccessfulChecks int     `json:"successful_checks"`
	FailedChecks     int     `json:"failed_checks"`
	AvgResponseTime  float64 `json:"avg_response_time"`
	MinResponseTime  float64 `json:"min_response_time"`
	MaxResponseTime  float64 `json:"max_response_time"`
	UptimePercent    float64 `json:"uptime_percent"`
}

const maxListLimit = 1000

// AppendSample persists one probe observation and fills its id. System samples
// additionally write a system_metrics row from the attached resource snapshot.
func (s *Store) AppendSample(ctx context.Context, sample *model.MetricSample) error {
	query := `
		INSERT INTO metrics (monitor_id, status, status_code, latency_ms, error_message, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var (
		code    interface{}
		latency interface{}
		errMsg  interface{}
	)
	if sample.StatusCode != 0 {
		code = sample.StatusCode
	}
	if sample.HasLatency() {
		latency = sample.LatencyMillis()
	}
	if sample.Error != "" {
		errMsg = sample.Error
	}

	err := s.db.QueryRow(ctx, query,
		sample.MonitorID, string(sample.Status), code, latency, errMsg, sample.CheckedAt).
		Scan(&sample.ID)
	if err != nil {
		return fmt.Errorf("append sample: %w", err)
	}

	if sample.Resources != nil {
		if err := s.insertSystemMetric(ctx, sample.Resources); err != nil {
			return err
		}
	}
	return nil
}

// QueryRange returns one monitor's samples inside [start, end] in
// chronological order, with the monitor name attached.
func (s *Store) QueryRange(ctx context.Context, monitorID int64, start, end time.Time) ([]*model.MetricSample, error) {
	query := `
		SELECT m.id, m.monitor_id, mon.name, m.status, m.status_code, m.latency_ms, m.error_message, m.checked_at
		FROM metrics m
		JOIN monitors mon ON m.monitor_id = mon.id
		WHERE m.monitor_id = $1 AND m.checked_at >= $2 AND m.checked_at <= $3
		ORDER BY m.checked_at ASC`

	rows, err := s.db.Query(ctx, query, monitorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query sample range: %w", err)
	}
	defer rows.Close()

	return collectSamples(rows)
}

// ListSamples returns recent samples newest first, filtered per f.
func (s *Store) ListSamples(ctx context.Context, f MetricFilter) ([]*model.MetricSample, error) {
	query := `
		SELECT m.id, m.monitor_id, mon.name, m.status, m.status_code, m.latency_ms, m.error_message, m.checked_at
		FROM metrics m
		JOIN monitors mon ON m.monitor_id = mon.id
		WHERE 1=1`
	var args []interface{}

	if f.MonitorID > 0 {
		args = append(args, f.MonitorID)
		query += fmt.Sprintf(" AND m.monitor_id = $%d", len(args))
	}
	if !f.Start.IsZero() {
		args = append(args, f.Start)
		query += fmt.Sprintf(" AND m.checked_at >= $%d", len(args))
	}
	if !f.End.IsZero() {
		args = append(args, f.End)
		query += fmt.Sprintf(" AND m.checked_at <= $%d", len(args))
	}

	args = append(args, clampLimit(f.Limit, 100, maxListLimit))
	query += fmt.Sprintf(" ORDER BY m.checked_at DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	return collectSamples(rows)
}

// Summary aggregates the last `hours` of samples. monitorID 0 covers all
// monitors.
func (s *Store) Summary(ctx context.Context, monitorID int64, hours int) (*MetricsSummary, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'success'),
		       COUNT(*) FILTER (WHERE status <> 'success'),
		       COALESCE(AVG(latency_ms), 0),
		       COALESCE(MIN(latency_ms), 0),
		       COALESCE(MAX(latency_ms), 0)
		FROM metrics
		WHERE checked_at > $1`
	args := []interface{}{time.Now().UTC().Add(-time.Duration(hours) * time.Hour)}

	if monitorID > 0 {
		args = append(args, monitorID)
		query += fmt.Sprintf(" AND monitor_id = $%d", len(args))
	}

	var sum MetricsSummary
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&sum.TotalChecks, &sum.SuccessfulChecks, &sum.FailedChecks,
		&sum.AvgResponseTime, &sum.MinResponseTime, &sum.MaxResponseTime)
	if err != nil {
		return nil, fmt.Errorf("metrics summary: %w", err)
	}

	if sum.TotalChecks > 0 {
		sum.UptimePercent = math.Round(float64(sum.SuccessfulChecks)/float64(sum.TotalChecks)*100*100) / 100
	}
	sum.AvgResponseTime = math.Round(sum.AvgResponseTime*100) / 100
	sum.MinResponseTime = math.Round(sum.MinResponseTime*100) / 100
	sum.MaxResponseTime = math.Round(sum.MaxResponseTime*100) / 100
	return &sum, nil
}

// PruneSamples deletes samples older than cutoff and reports how many went.
func (s *Store) PruneSamples(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM metrics WHERE checked_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune samples: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collectSamples(rows pgx.Rows) ([]*model.MetricSample, error) {
	var samples []*model.MetricSample
	for rows.Next() {
		var (
			sample  model.MetricSample
			status  string
			code    *int
			latency *float64
			errMsg  *string
		)
		err := rows.Scan(&sample.ID, &sample.MonitorID, &sample.MonitorName,
			&status, &code, &latency, &errMsg, &sample.CheckedAt)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		sample.Status = model.SampleStatus(status)
		if code != nil {
			sample.StatusCode = *code
		}
		if latency != nil {
			sample.Latency = time.Duration(*latency * float64(time.Millisecond))
		}
		if errMsg != nil {
			sample.Error = *errMsg
		}
		samples = append(samples, &sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"uptime-monitor/internal/model"
)

// LatestCheck is the most recent probe result inside a monitor status block.
type LatestCheck struct {
	Status       model.SampleStatus `json:"status"`
	StatusCode   int                `json:"status_code,omitempty"`
	ResponseTime *float64           `json:"response_time,omitempty"`
	Error        string             `json:"error_message,omitempty"`
	CheckedAt    time.Time          `json:"checked_at"`
}

// MonitorStatus is the live status block embedded in monitor API responses.
type MonitorStatus struct {
	LatestCheck    *LatestCheck `json:"latest_check"`
	Uptime24h      float64      `json:"uptime_24h"`
	TotalChecks24h int          `json:"total_checks_24h"`
}

// LoadTargets returns every configured monitor, enabled or not. The engine
// registers disabled targets too so manual checks and tombstone lookups
// still resolve.
func (s *Store) LoadTargets(ctx context.Context) ([]*model.MonitorTarget, error) {
	query := `
		SELECT id, name, url, monitor_type, check_interval, timeout, alert_threshold, is_active, created_at, updated_at
		FROM monitors
		ORDER BY id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load monitors: %w", err)
	}
	defer rows.Close()

	return collectTargets(rows)
}

// ListMonitors returns all monitors ordered newest first, as the API lists them.
func (s *Store) ListMonitors(ctx context.Context) ([]*model.MonitorTarget, error) {
	query := `
		SELECT id, name, url, monitor_type, check_interval, timeout, alert_threshold, is_active, created_at, updated_at
		FROM monitors
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}
	defer rows.Close()

	return collectTargets(rows)
}

// GetMonitor returns one monitor or ErrNotFound.
func (s *Store) GetMonitor(ctx context.Context, id int64) (*model.MonitorTarget, error) {
	query := `
		SELECT id, name, url, monitor_type, check_interval, timeout, alert_threshold, is_active, created_at, updated_at
		FROM monitors
		WHERE id = $1`

	t, err := scanTarget(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get monitor: %w", err)
	}
	return t, nil
}

// CreateMonitor inserts a monitor and fills its id and timestamps.
func (s *Store) CreateMonitor(ctx context.Context, t *model.MonitorTarget) error {
	query := `
		INSERT INTO monitors (name, url, monitor_type, check_interval, timeout, alert_threshold, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRow(ctx, query,
		t.Name, t.URL, string(t.Kind), t.Interval, t.Timeout, t.Threshold, t.Enabled).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create monitor: %w", err)
	}

	s.logger.Info().Int64("monitor_id", t.ID).Str("name", t.Name).Msg("monitor created")
	return nil
}

// UpdateMonitor writes the full definition back. Callers merge partial updates
// into the stored row and re-validate before calling.
func (s *Store) UpdateMonitor(ctx context.Context, t *model.MonitorTarget) error {
	query := `
		UPDATE monitors
		SET name = $2, url = $3, monitor_type = $4, check_interval = $5, timeout = $6,
		    alert_threshold = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := s.db.QueryRow(ctx, query,
		t.ID, t.Name, t.URL, string(t.Kind), t.Interval, t.Timeout, t.Threshold, t.Enabled).
		Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update monitor: %w", err)
	}
	return nil
}

// DeleteMonitor removes a monitor. Its metrics and alerts cascade.
func (s *Store) DeleteMonitor(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM monitors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete monitor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.logger.Info().Int64("monitor_id", id).Msg("monitor deleted")
	return nil
}

// MonitorStatus assembles the latest check plus 24h uptime for one monitor.
func (s *Store) MonitorStatus(ctx context.Context, monitorID int64) (*MonitorStatus, error) {
	status := &MonitorStatus{}

	latestQuery := `
		SELECT status, status_code, latency_ms, error_message, checked_at
		FROM metrics
		WHERE monitor_id = $1
		ORDER BY checked_at DESC
		LIMIT 1`

	var (
		latest     LatestCheck
		statusText string
		code       *int
		errMsg     *string
	)
	err := s.db.QueryRow(ctx, latestQuery, monitorID).
		Scan(&statusText, &code, &latest.ResponseTime, &errMsg, &latest.CheckedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// no samples yet; latest_check stays null
	case err != nil:
		return nil, fmt.Errorf("latest check: %w", err)
	default:
		latest.Status = model.SampleStatus(statusText)
		if code != nil {
			latest.StatusCode = *code
		}
		if errMsg != nil {
			latest.Error = *errMsg
		}
		status.LatestCheck = &latest
	}

	uptimeQuery := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'success')
		FROM metrics
		WHERE monitor_id = $1 AND checked_at > $2`

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	var total, successful int
	if err := s.db.QueryRow(ctx, uptimeQuery, monitorID, cutoff).Scan(&total, &successful); err != nil {
		return nil, fmt.Errorf("uptime window: %w", err)
	}

	status.TotalChecks24h = total
	if total > 0 {
		status.Uptime24h = math.Round(float64(successful)/float64(total)*100*100) / 100
	}
	return status, nil
}

func collectTargets(rows pgx.Rows) ([]*model.MonitorTarget, error) {
	var targets []*model.MonitorTarget
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan monitor: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monitors: %w", err)
	}
	return targets, nil
}

func scanTarget(row pgx.Row) (*model.MonitorTarget, error) {
	var (
		t    model.MonitorTarget
		kind string
	)
	err := row.Scan(&t.ID, &t.Name, &t.URL, &kind, &t.Interval, &t.Timeout,
		&t.Threshold, &t.Enabled, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Kind = model.TargetKind(kind)
	return &t, nil
}

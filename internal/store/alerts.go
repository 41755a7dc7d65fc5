package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"uptime-monitor/internal/model"
)

// AlertFilter narrows an alert listing. Zero values mean "no filter".
type AlertFilter struct {
	MonitorID int64
	Status    string
	Limit     int
}

// MonitorAlertCount is one by-monitor row in the alert statistics.
type MonitorAlertCount struct {
	Name       string `json:"name"`
	AlertCount int    `json:"alert_count"`
}

// AlertStats aggregates alert counts for a window.
type AlertStats struct {
	TotalAlerts        int                  `json:"total_alerts"`
	ActiveAlerts       int                  `json:"active_alerts"`
	ResolvedAlerts     int                  `json:"resolved_alerts"`
	AcknowledgedAlerts int                  `json:"acknowledged_alerts"`
	ByMonitor          []*MonitorAlertCount `json:"by_monitor"`
}

const maxAlertLimit = 500

// OpenAlert inserts an active alert record and returns its id.
func (s *Store) OpenAlert(ctx context.Context, rec *model.AlertRecord) (int64, error) {
	query := `
		INSERT INTO alerts (monitor_id, alert_type, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err := s.db.QueryRow(ctx, query,
		rec.MonitorID, rec.Type, rec.Message, rec.Status, createdAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("open alert: %w", err)
	}

	rec.ID = id
	s.logger.Info().Int64("alert_id", id).Int64("monitor_id", rec.MonitorID).Msg("alert opened")
	return id, nil
}

// ResolveAlerts marks every active alert of a monitor resolved.
func (s *Store) ResolveAlerts(ctx context.Context, monitorID int64) error {
	query := `
		UPDATE alerts
		SET status = 'resolved', resolved_at = NOW()
		WHERE monitor_id = $1 AND status = 'active'`

	tag, err := s.db.Exec(ctx, query, monitorID)
	if err != nil {
		return fmt.Errorf("resolve alerts: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		s.logger.Info().Int64("monitor_id", monitorID).Int64("resolved", n).Msg("alerts resolved")
	}
	return nil
}

// ListAlerts returns alerts newest first, filtered per f.
func (s *Store) ListAlerts(ctx context.Context, f AlertFilter) ([]*model.AlertRecord, error) {
	query := `
		SELECT a.id, a.monitor_id, m.name, a.alert_type, a.message, a.status,
		       a.acknowledged, a.acknowledged_at, a.created_at, a.resolved_at
		FROM alerts a
		JOIN monitors m ON a.monitor_id = m.id
		WHERE 1=1`
	var args []interface{}

	if f.MonitorID > 0 {
		args = append(args, f.MonitorID)
		query += fmt.Sprintf(" AND a.monitor_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND a.status = $%d", len(args))
	}

	args = append(args, clampLimit(f.Limit, 50, maxAlertLimit))
	query += fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*model.AlertRecord
	for rows.Next() {
		rec, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}

// GetAlert returns one alert with its monitor name, or ErrNotFound.
func (s *Store) GetAlert(ctx context.Context, id int64) (*model.AlertRecord, error) {
	query := `
		SELECT a.id, a.monitor_id, m.name, a.alert_type, a.message, a.status,
		       a.acknowledged, a.acknowledged_at, a.created_at, a.resolved_at
		FROM alerts a
		JOIN monitors m ON a.monitor_id = m.id
		WHERE a.id = $1`

	rec, err := scanAlert(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return rec, nil
}

// AcknowledgeAlert marks an alert acknowledged, once. Returns ErrNotFound when
// the alert does not exist or was already acknowledged.
func (s *Store) AcknowledgeAlert(ctx context.Context, id int64) (*model.AlertRecord, error) {
	query := `
		UPDATE alerts
		SET acknowledged = TRUE, acknowledged_at = NOW()
		WHERE id = $1 AND acknowledged = FALSE
		RETURNING id, monitor_id, alert_type, message, status, acknowledged, acknowledged_at, created_at, resolved_at`

	var rec model.AlertRecord
	err := s.db.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.MonitorID, &rec.Type, &rec.Message, &rec.Status,
		&rec.Acknowledged, &rec.AcknowledgedAt, &rec.CreatedAt, &rec.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("acknowledge alert: %w", err)
	}

	s.logger.Info().Int64("alert_id", id).Msg("alert acknowledged")
	return &rec, nil
}

// AlertStats aggregates the last `hours` of alert records.
func (s *Store) AlertStats(ctx context.Context, hours int) (*AlertStats, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	totalsQuery := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'active'),
		       COUNT(*) FILTER (WHERE status = 'resolved'),
		       COUNT(*) FILTER (WHERE acknowledged)
		FROM alerts
		WHERE created_at > $1`

	var stats AlertStats
	err := s.db.QueryRow(ctx, totalsQuery, cutoff).Scan(
		&stats.TotalAlerts, &stats.ActiveAlerts, &stats.ResolvedAlerts, &stats.AcknowledgedAlerts)
	if err != nil {
		return nil, fmt.Errorf("alert totals: %w", err)
	}

	byMonitorQuery := `
		SELECT m.name, COUNT(*)
		FROM alerts a
		JOIN monitors m ON a.monitor_id = m.id
		WHERE a.created_at > $1
		GROUP BY m.name
		ORDER BY COUNT(*) DESC`

	rows, err := s.db.Query(ctx, byMonitorQuery, cutoff)
	if err != nil {
		return nil, fmt.Errorf("alerts by monitor: %w", err)
	}
	defer rows.Close()

	stats.ByMonitor = []*MonitorAlertCount{}
	for rows.Next() {
		var row MonitorAlertCount
		if err := rows.Scan(&row.Name, &row.AlertCount); err != nil {
			return nil, fmt.Errorf("scan alert count: %w", err)
		}
		stats.ByMonitor = append(stats.ByMonitor, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert counts: %w", err)
	}
	return &stats, nil
}

func scanAlert(row pgx.Row) (*model.AlertRecord, error) {
	var rec model.AlertRecord
	err := row.Scan(&rec.ID, &rec.MonitorID, &rec.MonitorName, &rec.Type, &rec.Message,
		&rec.Status, &rec.Acknowledged, &rec.AcknowledgedAt, &rec.CreatedAt, &rec.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

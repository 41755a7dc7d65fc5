package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"uptime-monitor/internal/model"
)

// insertSystemMetric writes one resource snapshot. Called from AppendSample
// for system probe samples.
func (s *Store) insertSystemMetric(ctx context.Context, usage *model.ResourceUsage) error {
	query := `
		INSERT INTO system_metrics (cpu_percent, memory_percent, memory_used_gb, memory_total_gb,
		                            disk_percent, disk_used_gb, disk_total_gb, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	recordedAt := usage.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, query,
		usage.CPUPercent, usage.MemoryPercent, usage.MemoryUsedGB, usage.MemoryTotalGB,
		usage.DiskPercent, usage.DiskUsedGB, usage.DiskTotalGB, recordedAt)
	if err != nil {
		return fmt.Errorf("insert system metric: %w", err)
	}
	return nil
}

// SystemHistory returns resource snapshots inside [start, end] in
// chronological order.
func (s *Store) SystemHistory(ctx context.Context, start, end time.Time) ([]*model.ResourceUsage, error) {
	query := `
		SELECT id, cpu_percent, memory_percent, memory_used_gb, memory_total_gb,
		       disk_percent, disk_used_gb, disk_total_gb, recorded_at
		FROM system_metrics
		WHERE recorded_at >= $1 AND recorded_at <= $2
		ORDER BY recorded_at ASC`

	rows, err := s.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query system history: %w", err)
	}
	defer rows.Close()

	return collectUsage(rows)
}

// ListSystemMetrics returns the last `hours` of snapshots newest first.
func (s *Store) ListSystemMetrics(ctx context.Context, hours, limit int) ([]*model.ResourceUsage, error) {
	query := `
		SELECT id, cpu_percent, memory_percent, memory_used_gb, memory_total_gb,
		       disk_percent, disk_used_gb, disk_total_gb, recorded_at
		FROM system_metrics
		WHERE recorded_at > $1
		ORDER BY recorded_at DESC
		LIMIT $2`

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	rows, err := s.db.Query(ctx, query, cutoff, clampLimit(limit, 100, maxListLimit))
	if err != nil {
		return nil, fmt.Errorf("list system metrics: %w", err)
	}
	defer rows.Close()

	return collectUsage(rows)
}

func collectUsage(rows pgx.Rows) ([]*model.ResourceUsage, error) {
	var history []*model.ResourceUsage
	for rows.Next() {
		var u model.ResourceUsage
		err := rows.Scan(&u.ID, &u.CPUPercent, &u.MemoryPercent, &u.MemoryUsedGB, &u.MemoryTotalGB,
			&u.DiskPercent, &u.DiskUsedGB, &u.DiskTotalGB, &u.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("scan system metric: %w", err)
		}
		history = append(history, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate system metrics: %w", err)
	}
	return history, nil
}

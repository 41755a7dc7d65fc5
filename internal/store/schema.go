package store

import (
	"context"
	"fmt"

	"uptime-monitor/internal/model"
)

// schemaStatements creates all tables and indexes. Statements are idempotent
// so initdb can run against an existing database.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS monitors (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		url VARCHAR(512) NOT NULL,
		monitor_type VARCHAR(50) NOT NULL DEFAULT 'http',
		check_interval INTEGER NOT NULL DEFAULT 60,
		timeout INTEGER NOT NULL DEFAULT 10,
		alert_threshold INTEGER NOT NULL DEFAULT 3,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS metrics (
		id BIGSERIAL PRIMARY KEY,
		monitor_id BIGINT NOT NULL REFERENCES monitors(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL,
		status_code INTEGER,
		latency_ms DOUBLE PRECISION,
		error_message TEXT,
		checked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id BIGSERIAL PRIMARY KEY,
		monitor_id BIGINT NOT NULL REFERENCES monitors(id) ON DELETE CASCADE,
		alert_type VARCHAR(50) NOT NULL,
		message TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
		acknowledged_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		resolved_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS system_metrics (
		id BIGSERIAL PRIMARY KEY,
		cpu_percent DOUBLE PRECISION,
		memory_percent DOUBLE PRECISION,
		memory_used_gb DOUBLE PRECISION,
		memory_total_gb DOUBLE PRECISION,
		disk_percent DOUBLE PRECISION,
		disk_used_gb DOUBLE PRECISION,
		disk_total_gb DOUBLE PRECISION,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_metrics_monitor_checked ON metrics (monitor_id, checked_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_metrics_checked_at ON metrics (checked_at)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_monitor_id ON alerts (monitor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts (status)`,
	`CREATE INDEX IF NOT EXISTS idx_system_metrics_recorded ON system_metrics (recorded_at)`,
}

// CreateSchema creates all tables and indexes if they do not exist yet.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	s.logger.Info().Msg("database schema ready")
	return nil
}

// SeedMonitors inserts the given targets when the monitors table is empty.
// Returns how many rows were inserted; 0 means the table already had data.
func (s *Store) SeedMonitors(ctx context.Context, targets []*model.MonitorTarget) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM monitors`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count monitors: %w", err)
	}
	if count > 0 {
		s.logger.Info().Int("existing", count).Msg("monitors already present, seed skipped")
		return 0, nil
	}

	for _, t := range targets {
		if err := s.CreateMonitor(ctx, t); err != nil {
			return 0, fmt.Errorf("seed monitor %q: %w", t.Name, err)
		}
	}
	return len(targets), nil
}

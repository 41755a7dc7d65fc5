// Package report provides offline report generation for the uptime monitor.
// It defines the report Result payload, the Writer interface and a registry
// of output formats (Excel, HTML).
package report

import (
	"time"

	"uptime-monitor/internal/analytics"
	"uptime-monitor/internal/model"
	"uptime-monitor/internal/store"
)

// Result is the assembled payload every writer renders: availability per
// monitor, latency distributions and the alert history over the period.
type Result struct {
	GeneratedAt time.Time
	PeriodDays  int
	Uptime      *analytics.UptimeReport
	Performance []*analytics.PerformanceReport
	Alerts      []*model.AlertRecord
	AlertStats  *store.AlertStats
}

// Writer defines the interface for generating uptime reports.
// Implementations should be able to write the assembled result to a file
// in their specific format (Excel, HTML, etc.).
type Writer interface {
	// Write renders the result and saves it to the specified output path.
	// The path should include the file extension appropriate for the
	// format.
	//
	// Returns an error if rendering or file writing fails.
	Write(result *Result, outputPath string) error

	// Format returns the format identifier for this writer.
	// Common values are "excel" and "html".
	Format() string
}

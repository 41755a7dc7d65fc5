// Package analytics computes uptime, latency and trend aggregations over
// persisted metric samples. It only reads; engine state is never touched.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"uptime-monitor/internal/model"
)

// ErrNoData is returned when the requested window holds no samples at all.
var ErrNoData = errors.New("no data found for the specified monitor and period")

// hourLayout labels hourly buckets.
const hourLayout = "2006-01-02 15:00"

// Source is the read contract the aggregator consumes.
type Source interface {
	LoadTargets(ctx context.Context) ([]*model.MonitorTarget, error)
	QueryRange(ctx context.Context, monitorID int64, start, end time.Time) ([]*model.MetricSample, error)
	SystemHistory(ctx context.Context, start, end time.Time) ([]*model.ResourceUsage, error)
}

// LatencyStats summarizes response times in milliseconds.
type LatencyStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// MonitorUptime is one monitor's row in the uptime report.
type MonitorUptime struct {
	MonitorID        int64   `json:"monitor_id"`
	MonitorName      string  `json:"monitor_name"`
	TotalChecks      int     `json:"total_checks"`
	SuccessfulChecks int     `json:"successful_checks"`
	FailedChecks     int     `json:"failed_checks"`
	UptimePercent    float64 `json:"uptime_percent"`
	AvgResponseTime  float64 `json:"avg_response_time"`
}

// UptimeReport covers all requested monitors over a period.
type UptimeReport struct {
	PeriodDays int              `json:"period_days"`
	Monitors   []*MonitorUptime `json:"monitors"`
}

// HourlyPoint is one hour bucket of a monitor's performance.
type HourlyPoint struct {
	Hour            string  `json:"hour"`
	AvgResponseTime float64 `json:"avg_response_time"`
	CheckCount      int     `json:"check_count"`
	SuccessCount    int     `json:"success_count"`
}

// PerformanceReport describes one monitor's latency distribution.
type PerformanceReport struct {
	MonitorID    int64          `json:"monitor_id"`
	MonitorName  string         `json:"monitor_name"`
	PeriodHours  int            `json:"period_hours"`
	ResponseTime LatencyStats   `json:"response_time"`
	HourlyData   []*HourlyPoint `json:"hourly_data"`
}

// Analytics aggregates persisted samples into report payloads.
type Analytics struct {
	source Source
	logger zerolog.Logger
}

// New creates an aggregator over the given source.
func New(source Source, logger zerolog.Logger) *Analytics {
	return &Analytics{
		source: source,
		logger: logger.With().Str("component", "analytics").Logger(),
	}
}

// Uptime reports availability per monitor over the last days. monitorID
// filters to a single monitor when non-zero. Monitors without samples appear
// with zero checks and 0% uptime.
func (a *Analytics) Uptime(ctx context.Context, days int, monitorID int64) (*UptimeReport, error) {
	targets, err := a.source.LoadTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load monitors: %w", err)
	}

	end := time.Now().UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	report := &UptimeReport{PeriodDays: days, Monitors: []*MonitorUptime{}}
	for _, target := range targets {
		if monitorID != 0 && target.ID != monitorID {
			continue
		}

		samples, err := a.source.QueryRange(ctx, target.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to query samples for monitor %d: %w", target.ID, err)
		}

		row := &MonitorUptime{
			MonitorID:     target.ID,
			MonitorName:   target.Name,
			TotalChecks:   len(samples),
			UptimePercent: uptimePercent(samples),
		}
		for _, s := range samples {
			if s.Status.IsUp() {
				row.SuccessfulChecks++
			} else {
				row.FailedChecks++
			}
		}
		row.AvgResponseTime = round2(avg(latencies(samples)))
		report.Monitors = append(report.Monitors, row)
	}

	sort.Slice(report.Monitors, func(i, j int) bool {
		return report.Monitors[i].MonitorID < report.Monitors[j].MonitorID
	})
	return report, nil
}

// Performance builds the latency distribution of one monitor over the last
// hours. Timeout samples carry no latency and stay out of the distribution by
// definition. Returns ErrNoData when the window is empty.
func (a *Analytics) Performance(ctx context.Context, monitorID int64, hours int) (*PerformanceReport, error) {
	end := time.Now().UTC()
	start := end.Add(-time.Duration(hours) * time.Hour)

	samples, err := a.source.QueryRange(ctx, monitorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples for monitor %d: %w", monitorID, err)
	}
	if len(samples) == 0 {
		return nil, ErrNoData
	}

	report := &PerformanceReport{
		MonitorID:    monitorID,
		MonitorName:  samples[0].MonitorName,
		PeriodHours:  hours,
		ResponseTime: latencyStats(latencies(samples)),
		HourlyData:   hourlyBuckets(samples),
	}
	return report, nil
}

// hourlyBuckets groups samples into hour buckets ordered by time.
func hourlyBuckets(samples []*model.MetricSample) []*HourlyPoint {
	type bucket struct {
		latencies []float64
		checks    int
		successes int
	}

	buckets := make(map[time.Time]*bucket)
	for _, s := range samples {
		hour := s.CheckedAt.UTC().Truncate(time.Hour)
		b, ok := buckets[hour]
		if !ok {
			b = &bucket{}
			buckets[hour] = b
		}
		b.checks++
		if s.Status.IsUp() {
			b.successes++
		}
		if s.HasLatency() {
			b.latencies = append(b.latencies, s.LatencyMillis())
		}
	}

	hours := make([]time.Time, 0, len(buckets))
	for hour := range buckets {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	out := make([]*HourlyPoint, 0, len(hours))
	for _, hour := range hours {
		b := buckets[hour]
		out = append(out, &HourlyPoint{
			Hour:            hour.Format(hourLayout),
			AvgResponseTime: round2(avg(b.latencies)),
			CheckCount:      b.checks,
			SuccessCount:    b.successes,
		})
	}
	return out
}

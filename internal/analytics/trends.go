package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"uptime-monitor/internal/model"
)

// dayLayout labels daily buckets.
const dayLayout = "2006-01-02"

// DailyStat is one day bucket of a monitor's availability.
type DailyStat struct {
	Date            string  `json:"date"`
	TotalChecks     int     `json:"total_checks"`
	UptimePercent   float64 `json:"uptime_percent"`
	AvgResponseTime float64 `json:"avg_response_time"`
}

// MonitorTrend holds a monitor's daily buckets.
type MonitorTrend struct {
	MonitorID   int64        `json:"monitor_id"`
	MonitorName string       `json:"monitor_name"`
	DailyStats  []*DailyStat `json:"daily_stats"`
}

// TrendsReport covers all monitors with data in the period.
type TrendsReport struct {
	PeriodDays int             `json:"period_days"`
	Monitors   []*MonitorTrend `json:"monitors"`
}

// ResourceStats summarizes one resource dimension in percent.
type ResourceStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// SystemHourlyPoint is one hour bucket of system resource averages.
type SystemHourlyPoint struct {
	Hour          string  `json:"hour"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	DiskPercent   float64 `json:"disk_percent"`
}

// SystemTrendsReport summarizes system resource history.
type SystemTrendsReport struct {
	PeriodHours int                  `json:"period_hours"`
	CPU         ResourceStats        `json:"cpu"`
	Memory      ResourceStats        `json:"memory"`
	Disk        ResourceStats        `json:"disk"`
	HourlyData  []*SystemHourlyPoint `json:"hourly_data"`
}

// Trends reports daily availability buckets per monitor over the last days.
// Monitors without any samples in the window are omitted.
func (a *Analytics) Trends(ctx context.Context, days int) (*TrendsReport, error) {
	targets, err := a.source.LoadTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load monitors: %w", err)
	}

	end := time.Now().UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	report := &TrendsReport{PeriodDays: days, Monitors: []*MonitorTrend{}}
	for _, target := range targets {
		samples, err := a.source.QueryRange(ctx, target.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to query samples for monitor %d: %w", target.ID, err)
		}
		if len(samples) == 0 {
			continue
		}

		report.Monitors = append(report.Monitors, &MonitorTrend{
			MonitorID:   target.ID,
			MonitorName: target.Name,
			DailyStats:  dailyBuckets(samples),
		})
	}

	sort.Slice(report.Monitors, func(i, j int) bool {
		return report.Monitors[i].MonitorID < report.Monitors[j].MonitorID
	})
	return report, nil
}

// dailyBuckets groups samples into day buckets ordered by date.
func dailyBuckets(samples []*model.MetricSample) []*DailyStat {
	byDay := make(map[string][]*model.MetricSample)
	for _, s := range samples {
		day := s.CheckedAt.UTC().Format(dayLayout)
		byDay[day] = append(byDay[day], s)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]*DailyStat, 0, len(days))
	for _, day := range days {
		daySamples := byDay[day]
		out = append(out, &DailyStat{
			Date:            day,
			TotalChecks:     len(daySamples),
			UptimePercent:   uptimePercent(daySamples),
			AvgResponseTime: round2(avg(latencies(daySamples))),
		})
	}
	return out
}

// SystemTrends summarizes cpu/memory/disk usage over the last hours.
// Returns ErrNoData when no system samples were recorded in the window.
func (a *Analytics) SystemTrends(ctx context.Context, hours int) (*SystemTrendsReport, error) {
	end := time.Now().UTC()
	start := end.Add(-time.Duration(hours) * time.Hour)

	history, err := a.source.SystemHistory(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query system history: %w", err)
	}
	if len(history) == 0 {
		return nil, ErrNoData
	}

	cpuValues := make([]float64, 0, len(history))
	memValues := make([]float64, 0, len(history))
	diskValues := make([]float64, 0, len(history))
	for _, r := range history {
		cpuValues = append(cpuValues, r.CPUPercent)
		memValues = append(memValues, r.MemoryPercent)
		diskValues = append(diskValues, r.DiskPercent)
	}

	return &SystemTrendsReport{
		PeriodHours: hours,
		CPU:         resourceStats(cpuValues),
		Memory:      resourceStats(memValues),
		Disk:        resourceStats(diskValues),
		HourlyData:  systemHourlyBuckets(history),
	}, nil
}

// resourceStats summarizes one dimension.
func resourceStats(values []float64) ResourceStats {
	if len(values) == 0 {
		return ResourceStats{}
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return ResourceStats{
		Min: round2(minV),
		Max: round2(maxV),
		Avg: round2(avg(values)),
	}
}

// systemHourlyBuckets averages resource usage per hour, ordered by time.
func systemHourlyBuckets(history []*model.ResourceUsage) []*SystemHourlyPoint {
	type bucket struct {
		cpu, mem, disk []float64
	}

	buckets := make(map[time.Time]*bucket)
	for _, r := range history {
		hour := r.RecordedAt.UTC().Truncate(time.Hour)
		b, ok := buckets[hour]
		if !ok {
			b = &bucket{}
			buckets[hour] = b
		}
		b.cpu = append(b.cpu, r.CPUPercent)
		b.mem = append(b.mem, r.MemoryPercent)
		b.disk = append(b.disk, r.DiskPercent)
	}

	hours := make([]time.Time, 0, len(buckets))
	for hour := range buckets {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	out := make([]*SystemHourlyPoint, 0, len(hours))
	for _, hour := range hours {
		b := buckets[hour]
		out = append(out, &SystemHourlyPoint{
			Hour:          hour.Format(hourLayout),
			CPUPercent:    round2(avg(b.cpu)),
			MemoryPercent: round2(avg(b.mem)),
			DiskPercent:   round2(avg(b.disk)),
		})
	}
	return out
}

//go:build ignore
// +build ignore

// This script generates a sample Excel report for manual verification.
// Run with: go run scripts/verify_excel.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"uptime-monitor/internal/analytics"
	"uptime-monitor/internal/model"
	"uptime-monitor/internal/report"
	"uptime-monitor/internal/report/excel"
	"uptime-monitor/internal/store"
)

func main() {
	// Create test data
	result := createSampleData()

	// Create Excel writer
	writer := excel.NewWriter(time.UTC)

	// Generate report
	outputPath := filepath.Join(".", "sample_uptime_report.xlsx")
	if err := writer.Write(result, outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Excel report generated: %s\n", outputPath)
	fmt.Println("\nReport contents:")
	fmt.Println("  - 可用性概览: Summary statistics")
	fmt.Println("  - 监控明细: Per-monitor availability")
	fmt.Println("  - 响应时间: Latency distribution")
	fmt.Println("  - 告警记录: Alert history")
	fmt.Println("\nPlease open the file to verify:")
	fmt.Println("  - Uptime >= 99% cells have green background")
	fmt.Println("  - Uptime 95%-99% cells have yellow background")
	fmt.Println("  - Uptime < 95% cells have red background")
	fmt.Println("  - Resolved time stays empty for active alerts")
}

func createSampleData() *report.Result {
	now := time.Now().UTC()
	resolvedAt := now.Add(-2 * time.Hour)

	return &report.Result{
		GeneratedAt: now,
		PeriodDays:  7,
		Uptime: &analytics.UptimeReport{
			PeriodDays: 7,
			Monitors: []*analytics.MonitorUptime{
				{
					MonitorID:        1,
					MonitorName:      "Google",
					TotalChecks:      10080,
					SuccessfulChecks: 10075,
					FailedChecks:     5,
					UptimePercent:    99.95,
					AvgResponseTime:  132.4,
				},
				{
					MonitorID:        2,
					MonitorName:      "GitHub",
					TotalChecks:      10080,
					SuccessfulChecks: 9876,
					FailedChecks:     204,
					UptimePercent:    97.98,
					AvgResponseTime:  287.1,
				},
				{
					MonitorID:        3,
					MonitorName:      "Example API",
					TotalChecks:      5040,
					SuccessfulChecks: 4536,
					FailedChecks:     504,
					UptimePercent:    90.0,
					AvgResponseTime:  845.6,
				},
			},
		},
		Performance: []*analytics.PerformanceReport{
			{
				MonitorID:   1,
				MonitorName: "Google",
				PeriodHours: 168,
				ResponseTime: analytics.LatencyStats{
					Min:    85.2,
					Max:    892.0,
					Avg:    132.4,
					Median: 120.5,
					P95:    245.8,
					P99:    512.3,
				},
			},
			{
				MonitorID:   2,
				MonitorName: "GitHub",
				PeriodHours: 168,
				ResponseTime: analytics.LatencyStats{
					Min:    150.0,
					Max:    3200.5,
					Avg:    287.1,
					Median: 250.0,
					P95:    890.2,
					P99:    1850.0,
				},
			},
		},
		Alerts: []*model.AlertRecord{
			{
				ID:          1,
				MonitorID:   3,
				MonitorName: "Example API",
				Type:        model.AlertTypeDown,
				Message:     "Example API 连续 3 次检查失败",
				Status:      model.RecordActive,
				CreatedAt:   now.Add(-30 * time.Minute),
			},
			{
				ID:           2,
				MonitorID:    2,
				MonitorName:  "GitHub",
				Type:         model.AlertTypeDown,
				Message:      "GitHub 连续 3 次检查失败",
				Status:       model.RecordResolved,
				Acknowledged: true,
				CreatedAt:    now.Add(-4 * time.Hour),
				ResolvedAt:   &resolvedAt,
			},
		},
		AlertStats: &store.AlertStats{
			TotalAlerts:        2,
			ActiveAlerts:       1,
			ResolvedAlerts:     1,
			AcknowledgedAlerts: 1,
		},
	}
}

package excel

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"uptime-monitor/internal/analytics"
	"uptime-monitor/internal/model"
	"uptime-monitor/internal/report"
	"uptime-monitor/internal/store"
)

func sampleResult() *report.Result {
	resolved := time.Date(2026, 8, 2, 11, 0, 0, 0, time.UTC)
	return &report.Result{
		GeneratedAt: time.Date(2026, 8, 3, 9, 30, 0, 0, time.UTC),
		PeriodDays:  7,
		Uptime: &analytics.UptimeReport{
			PeriodDays: 7,
			Monitors: []*analytics.MonitorUptime{
				{MonitorID: 1, MonitorName: "Google", TotalChecks: 100, SuccessfulChecks: 100, UptimePercent: 100, AvgResponseTime: 32.5},
				{MonitorID: 2, MonitorName: "Example API", TotalChecks: 100, SuccessfulChecks: 90, FailedChecks: 10, UptimePercent: 90, AvgResponseTime: 120.75},
			},
		},
		Performance: []*analytics.PerformanceReport{
			{
				MonitorID:   1,
				MonitorName: "Google",
				PeriodHours: 168,
				ResponseTime: analytics.LatencyStats{
					Min: 10, Max: 30, Avg: 20, Median: 20, P95: 29, P99: 29.8,
				},
			},
		},
		Alerts: []*model.AlertRecord{
			{
				ID:          1,
				MonitorID:   2,
				MonitorName: "Example API",
				Type:        model.AlertTypeDown,
				Message:     "Monitor 'Example API' is down. Failed 3 consecutive checks.",
				Status:      model.RecordResolved,
				ResolvedAt:  &resolved,
				CreatedAt:   time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
			},
		},
		AlertStats: &store.AlertStats{TotalAlerts: 1, ResolvedAlerts: 1},
	}
}

func TestWriterFormat(t *testing.T) {
	w := NewWriter(nil)
	assert.Equal(t, "excel", w.Format())
}

func TestWriteCreatesWorkbook(t *testing.T) {
	w := NewWriter(time.UTC)
	outputPath := filepath.Join(t.TempDir(), "report.xlsx")

	require.NoError(t, w.Write(sampleResult(), outputPath))

	f, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, sheetSummary)
	assert.Contains(t, sheets, sheetMonitors)
	assert.Contains(t, sheets, sheetPerformance)
	assert.Contains(t, sheets, sheetAlerts)
	assert.NotContains(t, sheets, defaultSheet)
}

func TestWriteMonitorRows(t *testing.T) {
	w := NewWriter(time.UTC)
	outputPath := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, w.Write(sampleResult(), outputPath))

	f, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue(sheetMonitors, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Google", name)

	uptime, err := f.GetCellValue(sheetMonitors, "E3")
	require.NoError(t, err)
	assert.Equal(t, "90", uptime)
}

func TestWriteAppendsExtension(t *testing.T) {
	w := NewWriter(time.UTC)
	outputPath := filepath.Join(t.TempDir(), "report")

	require.NoError(t, w.Write(sampleResult(), outputPath))

	_, err := excelize.OpenFile(outputPath + ".xlsx")
	assert.NoError(t, err)
}

func TestWriteNilResult(t *testing.T) {
	w := NewWriter(time.UTC)
	err := w.Write(nil, filepath.Join(t.TempDir(), "report.xlsx"))
	assert.Error(t, err)
}

func TestWriteEmptyResult(t *testing.T) {
	w := NewWriter(time.UTC)
	outputPath := filepath.Join(t.TempDir(), "empty.xlsx")

	result := &report.Result{
		GeneratedAt: time.Now().UTC(),
		PeriodDays:  7,
		Uptime:      &analytics.UptimeReport{PeriodDays: 7},
	}
	require.NoError(t, w.Write(result, outputPath))

	f, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer f.Close()

	total, err := f.GetCellValue(sheetSummary, "B4")
	require.NoError(t, err)
	assert.Equal(t, "0", total)
}

// Package excel provides Excel report generation for the uptime monitor.
// It implements the report.Writer interface to generate .xlsx files with
// availability, response time and alert history worksheets.
package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"uptime-monitor/internal/model"
	"uptime-monitor/internal/report"
)

const (
	// Sheet names
	sheetSummary     = "可用性概览"
	sheetMonitors    = "监控明细"
	sheetPerformance = "响应时间"
	sheetAlerts      = "告警记录"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for conditional formatting (RGB without #)
	colorHeaderBg   = "4472C4" // Blue background for header
	colorHeaderFg   = "FFFFFF" // White text for header
	colorNormalBg   = "C6EFCE" // Green background for healthy uptime
	colorNormalFg   = "006100" // Dark green text for healthy uptime
	colorWarningBg  = "FFEB9C" // Yellow background for degraded uptime
	colorWarningFg  = "9C6500" // Dark yellow text for degraded uptime
	colorCriticalBg = "FFC7CE" // Red background for poor uptime
	colorCriticalFg = "9C0006" // Dark red text for poor uptime

	// Uptime coloring thresholds (percent)
	uptimeHealthy  = 99.0
	uptimeDegraded = 95.0

	// Column widths
	defaultColWidth = 15.0
	wideColWidth    = 30.0

	timeLayout = "2006-01-02 15:04:05"
)

// Writer implements report.Writer for Excel format.
type Writer struct {
	timezone *time.Location
}

// NewWriter creates a new Excel report writer.
// If timezone is nil, it defaults to UTC.
func NewWriter(timezone *time.Location) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Writer{
		timezone: timezone,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "excel"
}

// Write generates an Excel report from the assembled result.
func (w *Writer) Write(result *report.Result, outputPath string) error {
	if result == nil {
		return fmt.Errorf("report result is nil")
	}

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.createSummarySheet(f, result); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := w.createMonitorsSheet(f, result); err != nil {
		return fmt.Errorf("failed to create monitors sheet: %w", err)
	}
	if err := w.createPerformanceSheet(f, result); err != nil {
		return fmt.Errorf("failed to create performance sheet: %w", err)
	}
	if err := w.createAlertsSheet(f, result); err != nil {
		return fmt.Errorf("failed to create alerts sheet: %w", err)
	}

	// Remove default Sheet1
	_ = f.DeleteSheet(defaultSheet)

	// Set active sheet to summary
	idx, _ := f.GetSheetIndex(sheetSummary)
	f.SetActiveSheet(idx)

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// headerStyle builds the shared column header style.
func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: colorHeaderFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorHeaderBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

// uptimeStyle colors an uptime percentage cell by severity.
func uptimeStyle(f *excelize.File, percent float64) (int, error) {
	bg, fg := colorCriticalBg, colorCriticalFg
	switch {
	case percent >= uptimeHealthy:
		bg, fg = colorNormalBg, colorNormalFg
	case percent >= uptimeDegraded:
		bg, fg = colorWarningBg, colorWarningFg
	}

	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: fg},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{bg},
			Pattern: 1,
		},
	})
}

// createSummarySheet writes the report overview worksheet.
func (w *Writer) createSummarySheet(f *excelize.File, result *report.Result) error {
	idx, err := f.NewSheet(sheetSummary)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: colorHeaderFg},
		Fill: excelize.Fill{Type: "pattern", Color: []string{colorHeaderBg}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	if err := f.MergeCell(sheetSummary, "A1", "B1"); err != nil {
		return err
	}
	f.SetCellValue(sheetSummary, "A1", "可用性监控报告")
	f.SetCellStyle(sheetSummary, "A1", "B1", titleStyle)

	totalMonitors := 0
	totalChecks := 0
	var weightedUptime float64
	if result.Uptime != nil {
		totalMonitors = len(result.Uptime.Monitors)
		for _, m := range result.Uptime.Monitors {
			totalChecks += m.TotalChecks
			weightedUptime += m.UptimePercent * float64(m.TotalChecks)
		}
	}
	overallUptime := 0.0
	if totalChecks > 0 {
		overallUptime = weightedUptime / float64(totalChecks)
	}

	rows := [][2]interface{}{
		{"生成时间", result.GeneratedAt.In(w.timezone).Format(timeLayout)},
		{"统计周期", fmt.Sprintf("%d 天", result.PeriodDays)},
		{"监控项总数", totalMonitors},
		{"检查总次数", totalChecks},
		{"整体可用率", fmt.Sprintf("%.2f%%", overallUptime)},
	}
	if result.AlertStats != nil {
		rows = append(rows,
			[2]interface{}{"告警总数", result.AlertStats.TotalAlerts},
			[2]interface{}{"未恢复告警", result.AlertStats.ActiveAlerts},
			[2]interface{}{"已恢复告警", result.AlertStats.ResolvedAlerts},
		)
	}

	for i, row := range rows {
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", i+2), row[0])
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", i+2), row[1])
	}

	f.SetColWidth(sheetSummary, "A", "A", defaultColWidth)
	f.SetColWidth(sheetSummary, "B", "B", wideColWidth)
	return nil
}

// createMonitorsSheet writes the per-monitor availability worksheet.
func (w *Writer) createMonitorsSheet(f *excelize.File, result *report.Result) error {
	if _, err := f.NewSheet(sheetMonitors); err != nil {
		return err
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"监控项", "检查次数", "成功次数", "失败次数", "可用率 (%)", "平均响应 (ms)"}
	for i, h := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheetMonitors, cell, h)
		f.SetCellStyle(sheetMonitors, cell, cell, header)
	}

	if result.Uptime != nil {
		for i, m := range result.Uptime.Monitors {
			row := i + 2
			f.SetCellValue(sheetMonitors, fmt.Sprintf("A%d", row), m.MonitorName)
			f.SetCellValue(sheetMonitors, fmt.Sprintf("B%d", row), m.TotalChecks)
			f.SetCellValue(sheetMonitors, fmt.Sprintf("C%d", row), m.SuccessfulChecks)
			f.SetCellValue(sheetMonitors, fmt.Sprintf("D%d", row), m.FailedChecks)
			f.SetCellValue(sheetMonitors, fmt.Sprintf("E%d", row), m.UptimePercent)
			f.SetCellValue(sheetMonitors, fmt.Sprintf("F%d", row), m.AvgResponseTime)

			style, err := uptimeStyle(f, m.UptimePercent)
			if err != nil {
				return err
			}
			cell := fmt.Sprintf("E%d", row)
			f.SetCellStyle(sheetMonitors, cell, cell, style)
		}
	}

	f.SetColWidth(sheetMonitors, "A", "A", wideColWidth)
	f.SetColWidth(sheetMonitors, "B", "F", defaultColWidth)
	return nil
}

// createPerformanceSheet writes the latency distribution worksheet.
func (w *Writer) createPerformanceSheet(f *excelize.File, result *report.Result) error {
	if _, err := f.NewSheet(sheetPerformance); err != nil {
		return err
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"监控项", "最小 (ms)", "最大 (ms)", "平均 (ms)", "中位数 (ms)", "P95 (ms)", "P99 (ms)"}
	for i, h := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheetPerformance, cell, h)
		f.SetCellStyle(sheetPerformance, cell, cell, header)
	}

	for i, p := range result.Performance {
		row := i + 2
		f.SetCellValue(sheetPerformance, fmt.Sprintf("A%d", row), p.MonitorName)
		f.SetCellValue(sheetPerformance, fmt.Sprintf("B%d", row), p.ResponseTime.Min)
		f.SetCellValue(sheetPerformance, fmt.Sprintf("C%d", row), p.ResponseTime.Max)
		f.SetCellValue(sheetPerformance, fmt.Sprintf("D%d", row), p.ResponseTime.Avg)
		f.SetCellValue(sheetPerformance, fmt.Sprintf("E%d", row), p.ResponseTime.Median)
		f.SetCellValue(sheetPerformance, fmt.Sprintf("F%d", row), p.ResponseTime.P95)
		f.SetCellValue(sheetPerformance, fmt.Sprintf("G%d", row), p.ResponseTime.P99)
	}

	f.SetColWidth(sheetPerformance, "A", "A", wideColWidth)
	f.SetColWidth(sheetPerformance, "B", "G", defaultColWidth)
	return nil
}

// createAlertsSheet writes the alert history worksheet.
func (w *Writer) createAlertsSheet(f *excelize.File, result *report.Result) error {
	if _, err := f.NewSheet(sheetAlerts); err != nil {
		return err
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"监控项", "类型", "状态", "已确认", "触发时间", "恢复时间", "消息"}
	for i, h := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheetAlerts, cell, h)
		f.SetCellStyle(sheetAlerts, cell, cell, header)
	}

	for i, a := range result.Alerts {
		row := i + 2
		f.SetCellValue(sheetAlerts, fmt.Sprintf("A%d", row), a.MonitorName)
		f.SetCellValue(sheetAlerts, fmt.Sprintf("B%d", row), a.Type)
		f.SetCellValue(sheetAlerts, fmt.Sprintf("C%d", row), alertStatusLabel(a.Status))
		f.SetCellValue(sheetAlerts, fmt.Sprintf("D%d", row), boolLabel(a.Acknowledged))
		f.SetCellValue(sheetAlerts, fmt.Sprintf("E%d", row), a.CreatedAt.In(w.timezone).Format(timeLayout))
		if a.ResolvedAt != nil {
			f.SetCellValue(sheetAlerts, fmt.Sprintf("F%d", row), a.ResolvedAt.In(w.timezone).Format(timeLayout))
		}
		f.SetCellValue(sheetAlerts, fmt.Sprintf("G%d", row), a.Message)
	}

	f.SetColWidth(sheetAlerts, "A", "A", wideColWidth)
	f.SetColWidth(sheetAlerts, "B", "F", defaultColWidth)
	f.SetColWidth(sheetAlerts, "G", "G", wideColWidth*2)
	return nil
}

// alertStatusLabel translates a record status for display.
func alertStatusLabel(status string) string {
	if status == model.RecordResolved {
		return "已恢复"
	}
	return "未恢复"
}

// boolLabel translates a flag for display.
func boolLabel(v bool) string {
	if v {
		return "是"
	}
	return "否"
}

// columnName converts a 1-based column index to its Excel letter name.
func columnName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}

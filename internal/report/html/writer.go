// Package html provides HTML report generation for the uptime monitor.
// It implements the report.Writer interface to render a self-contained
// .html document with availability, response time and alert tables.
package html

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"uptime-monitor/internal/model"
	"uptime-monitor/internal/report"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

const timeLayout = "2006-01-02 15:04:05"

// Writer implements report.Writer for HTML format.
type Writer struct {
	timezone     *time.Location
	templatePath string // User-defined template path (optional)
	version      string
}

// TemplateData holds all data passed to the HTML template.
type TemplateData struct {
	Title         string
	PeriodDays    int
	GeneratedAt   string
	TotalMonitors int
	TotalChecks   int
	OverallUptime string
	TotalAlerts   int
	Monitors      []*MonitorData
	Performance   []*PerformanceData
	Alerts        []*AlertData
	Version       string
}

// MonitorData is one availability row formatted for template rendering.
type MonitorData struct {
	Name             string
	TotalChecks      int
	SuccessfulChecks int
	FailedChecks     int
	UptimePercent    string
	UptimeClass      string
	AvgResponseTime  string
}

// PerformanceData is one latency row formatted for template rendering.
type PerformanceData struct {
	Name   string
	Min    string
	Max    string
	Avg    string
	Median string
	P95    string
	P99    string
}

// AlertData is one alert row formatted for template rendering.
type AlertData struct {
	MonitorName  string
	Status       string
	StatusClass  string
	Acknowledged string
	CreatedAt    string
	ResolvedAt   string
	Message      string
}

// NewWriter creates a new HTML report writer.
// If timezone is nil, it defaults to UTC. templatePath overrides the embedded
// default template when non-empty.
func NewWriter(timezone *time.Location, templatePath, version string) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Writer{
		timezone:     timezone,
		templatePath: templatePath,
		version:      version,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "html"
}

// Write renders the HTML report and saves it to outputPath.
func (w *Writer) Write(result *report.Result, outputPath string) error {
	if result == nil {
		return fmt.Errorf("report result is nil")
	}

	// Ensure output path has .html extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".html") {
		outputPath = outputPath + ".html"
	}

	tmpl, err := w.loadTemplate()
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := tmpl.Execute(out, w.buildTemplateData(result)); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	return nil
}

// loadTemplate parses the user template when configured, otherwise the
// embedded default.
func (w *Writer) loadTemplate() (*template.Template, error) {
	if w.templatePath != "" {
		return template.ParseFiles(w.templatePath)
	}
	return template.ParseFS(embeddedTemplates, "templates/report.html")
}

// buildTemplateData flattens the result into display-ready strings.
func (w *Writer) buildTemplateData(result *report.Result) *TemplateData {
	data := &TemplateData{
		Title:       "可用性监控报告",
		PeriodDays:  result.PeriodDays,
		GeneratedAt: result.GeneratedAt.In(w.timezone).Format(timeLayout),
		Version:     w.version,
	}

	totalChecks := 0
	var weightedUptime float64
	if result.Uptime != nil {
		data.TotalMonitors = len(result.Uptime.Monitors)
		for _, m := range result.Uptime.Monitors {
			totalChecks += m.TotalChecks
			weightedUptime += m.UptimePercent * float64(m.TotalChecks)

			data.Monitors = append(data.Monitors, &MonitorData{
				Name:             m.MonitorName,
				TotalChecks:      m.TotalChecks,
				SuccessfulChecks: m.SuccessfulChecks,
				FailedChecks:     m.FailedChecks,
				UptimePercent:    fmt.Sprintf("%.2f", m.UptimePercent),
				UptimeClass:      uptimeClass(m.UptimePercent),
				AvgResponseTime:  fmt.Sprintf("%.2f", m.AvgResponseTime),
			})
		}
	}
	data.TotalChecks = totalChecks
	overall := 0.0
	if totalChecks > 0 {
		overall = weightedUptime / float64(totalChecks)
	}
	data.OverallUptime = fmt.Sprintf("%.2f", overall)

	for _, p := range result.Performance {
		data.Performance = append(data.Performance, &PerformanceData{
			Name:   p.MonitorName,
			Min:    fmt.Sprintf("%.2f", p.ResponseTime.Min),
			Max:    fmt.Sprintf("%.2f", p.ResponseTime.Max),
			Avg:    fmt.Sprintf("%.2f", p.ResponseTime.Avg),
			Median: fmt.Sprintf("%.2f", p.ResponseTime.Median),
			P95:    fmt.Sprintf("%.2f", p.ResponseTime.P95),
			P99:    fmt.Sprintf("%.2f", p.ResponseTime.P99),
		})
	}

	data.TotalAlerts = len(result.Alerts)
	for _, a := range result.Alerts {
		row := &AlertData{
			MonitorName:  a.MonitorName,
			Status:       "未恢复",
			StatusClass:  "status-active",
			Acknowledged: "否",
			CreatedAt:    a.CreatedAt.In(w.timezone).Format(timeLayout),
			ResolvedAt:   "-",
			Message:      a.Message,
		}
		if a.Status == model.RecordResolved {
			row.Status = "已恢复"
			row.StatusClass = "status-resolved"
		}
		if a.Acknowledged {
			row.Acknowledged = "是"
		}
		if a.ResolvedAt != nil {
			row.ResolvedAt = a.ResolvedAt.In(w.timezone).Format(timeLayout)
		}
		data.Alerts = append(data.Alerts, row)
	}

	return data
}

// uptimeClass maps an uptime percentage to its display severity.
func uptimeClass(percent float64) string {
	switch {
	case percent >= 99.0:
		return "uptime-ok"
	case percent >= 95.0:
		return "uptime-warn"
	default:
		return "uptime-bad"
	}
}

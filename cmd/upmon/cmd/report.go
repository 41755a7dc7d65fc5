// Package cmd implements CLI commands for the uptime monitor.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"uptime-monitor/internal/analytics"
	"uptime-monitor/internal/config"
	"uptime-monitor/internal/report"
	"uptime-monitor/internal/report/excel"
	"uptime-monitor/internal/report/html"
	"uptime-monitor/internal/store"
)

// Command flags
var (
	reportFormats []string // Output formats (excel, html)
	reportOutput  string   // Output directory
	reportDays    int      // Report period in days
)

// reportCmd represents the report command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "生成可用性报告",
	Long: `基于已存储的探测数据生成离线可用性报告，包括：
1. 每个监控项的可用率与检查次数统计
2. 响应时间分布（最小 / 最大 / 平均 / 中位数 / P95 / P99）
3. 周期内的告警记录汇总

示例:
  upmon report -c config.yaml
  upmon report -c config.yaml -f excel --days 30
  upmon report -c config.yaml -f excel,html -o ./reports`,
	Run: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringSliceVarP(&reportFormats, "format", "f", []string{"excel", "html"}, "输出格式 (excel,html)，可用逗号分隔多个")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "输出目录（默认使用配置中的 report.output_dir）")
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "统计周期（天，1-90）")
}

// runReport assembles the report payload and renders every requested format.
func runReport(cmd *cobra.Command, args []string) {
	printBanner()

	_ = godotenv.Load()

	configPath := GetConfigFile()
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger := setupLogger(GetLogLevel(), cfg.Logging.Format)

	if reportDays < 1 || reportDays > 90 {
		fmt.Fprintf(os.Stderr, "❌ --days 必须在 1 到 90 之间\n")
		os.Exit(1)
	}

	outputDir := reportOutput
	if outputDir == "" {
		outputDir = cfg.Report.OutputDir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "❌ 创建输出目录失败: %v\n", err)
		os.Exit(1)
	}

	timezone, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 无效的时区配置 %q: %v\n", cfg.Report.Timezone, err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := store.New(ctx, &cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 数据库连接失败: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	result, err := buildReport(ctx, st, logger, reportDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 汇总报告数据失败: %v\n", err)
		os.Exit(1)
	}

	registry := report.NewRegistry()
	registry.Register(excel.NewWriter(timezone))
	registry.Register(html.NewWriter(timezone, "", Version))

	stamp := result.GeneratedAt.In(timezone).Format("20060102_150405")
	for _, format := range reportFormats {
		writer, err := registry.Get(format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}

		outputPath := filepath.Join(outputDir, fmt.Sprintf("uptime_report_%s", stamp))
		if err := writer.Write(result, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "❌ 生成 %s 报告失败: %v\n", format, err)
			os.Exit(1)
		}
		fmt.Printf("✅ %s 报告已生成: %s\n", format, outputPath)
	}
}

// buildReport collects availability, latency and alert data for the period.
func buildReport(ctx context.Context, st *store.Store, logger zerolog.Logger, days int) (*report.Result, error) {
	agg := analytics.New(st, logger)

	uptime, err := agg.Uptime(ctx, days, 0)
	if err != nil {
		return nil, err
	}

	result := &report.Result{
		GeneratedAt: time.Now().UTC(),
		PeriodDays:  days,
		Uptime:      uptime,
	}

	// Latency distributions, one per monitor with data in the window.
	hours := days * 24
	for _, m := range uptime.Monitors {
		perf, err := agg.Performance(ctx, m.MonitorID, hours)
		if errors.Is(err, analytics.ErrNoData) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Performance = append(result.Performance, perf)
	}

	alerts, err := st.ListAlerts(ctx, store.AlertFilter{Limit: 500})
	if err != nil {
		return nil, err
	}
	result.Alerts = alerts

	stats, err := st.AlertStats(ctx, hours)
	if err != nil {
		return nil, err
	}
	result.AlertStats = stats

	return result, nil
}

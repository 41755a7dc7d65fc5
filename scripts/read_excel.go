//go:build ignore
// +build ignore

// This script reads and displays the contents of an Excel report for verification.
package main

import (
	"fmt"
	"github.com/xuri/excelize/v2"
)

func main() {
	f, err := excelize.OpenFile("sample_uptime_report.xlsx")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer f.Close()

	fmt.Println("📊 Sheets:", f.GetSheetList())
	fmt.Println()

	// Summary sheet
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  可用性概览")
	fmt.Println("═══════════════════════════════════════")
	for row := 1; row <= 10; row++ {
		a, _ := f.GetCellValue("可用性概览", fmt.Sprintf("A%d", row))
		b, _ := f.GetCellValue("可用性概览", fmt.Sprintf("B%d", row))
		if a != "" || b != "" {
			fmt.Printf("  %-12s %s\n", a, b)
		}
	}
	fmt.Println()

	// Monitors sheet
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  监控明细")
	fmt.Println("═══════════════════════════════════════")
	for row := 1; row <= 10; row++ {
		name, _ := f.GetCellValue("监控明细", fmt.Sprintf("A%d", row))
		checks, _ := f.GetCellValue("监控明细", fmt.Sprintf("B%d", row))
		uptime, _ := f.GetCellValue("监控明细", fmt.Sprintf("E%d", row))
		avg, _ := f.GetCellValue("监控明细", fmt.Sprintf("F%d", row))
		if name != "" {
			fmt.Printf("  %-24s 检查:%-8s 可用率:%-8s 平均:%s\n", name, checks, uptime, avg)
		}
	}
	fmt.Println()

	// Performance sheet
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  响应时间")
	fmt.Println("═══════════════════════════════════════")
	for row := 1; row <= 10; row++ {
		name, _ := f.GetCellValue("响应时间", fmt.Sprintf("A%d", row))
		min, _ := f.GetCellValue("响应时间", fmt.Sprintf("B%d", row))
		avg, _ := f.GetCellValue("响应时间", fmt.Sprintf("D%d", row))
		p95, _ := f.GetCellValue("响应时间", fmt.Sprintf("F%d", row))
		if name != "" {
			fmt.Printf("  %-24s Min:%-10s Avg:%-10s P95:%s\n", name, min, avg, p95)
		}
	}
	fmt.Println()

	// Alerts sheet
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  告警记录")
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  监控项                   | 状态   | 触发时间            | 消息")
	fmt.Println("  -------------------------+--------+---------------------+--------")
	for row := 2; row <= 10; row++ {
		name, _ := f.GetCellValue("告警记录", fmt.Sprintf("A%d", row))
		status, _ := f.GetCellValue("告警记录", fmt.Sprintf("C%d", row))
		created, _ := f.GetCellValue("告警记录", fmt.Sprintf("E%d", row))
		message, _ := f.GetCellValue("告警记录", fmt.Sprintf("G%d", row))
		if name != "" {
			fmt.Printf("  %-24s | %-6s | %-19s | %s\n", name, status, created, message)
		}
	}
	fmt.Println()
	fmt.Println("✅ Excel 报告验证完成！")
	fmt.Println("   请用 Excel/WPS 打开 sample_uptime_report.xlsx 查看完整样式")
}

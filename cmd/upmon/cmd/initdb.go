// Package cmd implements CLI commands for the uptime monitor.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"uptime-monitor/internal/config"
	"uptime-monitor/internal/store"
)

// Command flags
var (
	seedPath string // Path to the seed monitors file; empty disables seeding
)

// initdbCmd represents the initdb command.
var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "初始化数据库",
	Long: `创建 monitors / metrics / alerts / system_metrics 表及索引。
所有语句均为幂等操作，可以安全地对已有数据库重复执行。

使用 --seed 从 YAML 文件导入示例监控项（仅当 monitors 表为空时生效）。

示例:
  upmon initdb -c config.yaml
  upmon initdb -c config.yaml --seed configs/monitors.yaml`,
	Run: runInitDB,
}

func init() {
	rootCmd.AddCommand(initdbCmd)

	initdbCmd.Flags().StringVar(&seedPath, "seed", "", "种子监控项文件路径（YAML）")
}

// runInitDB creates the schema and optionally seeds monitors.
func runInitDB(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	configPath := GetConfigFile()
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(GetLogLevel(), cfg.Logging.Format)
	ctx := context.Background()

	st, err := store.New(ctx, &cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 数据库连接失败: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.CreateSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ 创建数据库表失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ 数据库表已就绪")

	if seedPath == "" {
		return
	}

	targets, err := config.LoadSeedTargets(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 读取种子文件失败: %v\n", err)
		os.Exit(1)
	}

	inserted, err := st.SeedMonitors(ctx, targets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 导入种子监控项失败: %v\n", err)
		os.Exit(1)
	}
	if inserted == 0 {
		fmt.Println("ℹ️  monitors 表已有数据，跳过种子导入")
		return
	}
	fmt.Printf("✅ 已导入 %d 个监控项\n", inserted)
}

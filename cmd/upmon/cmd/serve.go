// Package cmd implements CLI commands for the uptime monitor.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"uptime-monitor/internal/analytics"
	"uptime-monitor/internal/api"
	"uptime-monitor/internal/config"
	"uptime-monitor/internal/engine"
	"uptime-monitor/internal/model"
	"uptime-monitor/internal/notify"
	"uptime-monitor/internal/probe"
	"uptime-monitor/internal/store"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动监控服务",
	Long: `启动完整的监控服务，包括：
1. 从 PostgreSQL 加载监控项定义并启动调度器
2. 按各监控项的检查间隔并发执行探测
3. 持久化探测结果并评估告警状态机
4. 通过已启用的通知渠道（邮件 / Slack / Telegram）发送告警
5. 提供 REST API（监控项管理、指标查询、可用性分析）
6. 按保留策略定期清理历史指标数据

示例:
  upmon serve -c config.yaml
  upmon serve -c config.yaml --log-level debug`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe wires every component together and supervises them until a
// shutdown signal arrives.
func runServe(cmd *cobra.Command, args []string) {
	printBanner()

	// .env may carry UPMON_DATABASE_URL and transport credentials.
	_ = godotenv.Load()

	configPath := GetConfigFile()
	fmt.Printf("📋 加载配置文件: %s\n", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		tmpLogger := setupLogger("error", "console")
		tmpLogger.Error().Err(err).Str("path", configPath).Msg("failed to load config")
		fmt.Fprintf(os.Stderr, "❌ 加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// Command line --log-level overrides config file setting
	level := cfg.Logging.Level
	if GetLogLevel() != "info" {
		level = GetLogLevel()
	}
	logger := setupLogger(level, cfg.Logging.Format)
	logger.Info().
		Str("version", Version).
		Str("config_path", configPath).
		Msg("uptime monitor starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistent store; unreachable database at startup is fatal.
	st, err := store.New(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		fmt.Fprintf(os.Stderr, "❌ 数据库连接失败: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := bootstrapSystemTarget(ctx, st, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("failed to bootstrap the system monitor")
	}

	// Notification transports; the engine runs fine with none enabled.
	registry, err := buildNotifiers(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to set up notification transports")
		fmt.Fprintf(os.Stderr, "❌ 通知渠道初始化失败: %v\n", err)
		os.Exit(1)
	}

	var dispatcher *notify.Dispatcher
	var publisher engine.Publisher
	if len(registry.Names()) > 0 {
		dispatcher = notify.NewDispatcher(registry, cfg.Alerting.EventsBuffer, logger)
		publisher = dispatcher
	} else {
		logger.Warn().Msg("no notification transport enabled, alerts will only be persisted")
	}

	prober := probe.NewRouter(logger)
	eng := engine.New(cfg, st, prober, publisher, logger)
	agg := analytics.New(st, logger)
	server := api.NewServer(cfg, st, eng, agg, probe.NewSystemProber(logger), Version, logger)
	janitor := store.NewJanitor(st, &cfg.Retention, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(ctx) })
	g.Go(func() error { return server.Run(ctx) })
	g.Go(func() error { return janitor.Run(ctx) })
	if dispatcher != nil {
		g.Go(func() error { return dispatcher.Run(ctx) })
	}

	fmt.Printf("✅ 服务已启动: http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("service terminated")
		fmt.Fprintf(os.Stderr, "❌ 服务异常退出: %v\n", err)
		os.Exit(1)
	}
	logger.Info().Msg("uptime monitor stopped")
}

// buildNotifiers registers every transport enabled in the configuration.
func buildNotifiers(cfg *config.Config, logger zerolog.Logger) (*notify.Registry, error) {
	registry := notify.NewRegistry()

	if cfg.Email.Enabled {
		email, err := notify.NewEmailNotifier(cfg.Email, logger)
		if err != nil {
			return nil, fmt.Errorf("email transport: %w", err)
		}
		registry.Register(email)
	}
	if cfg.Slack.Enabled {
		registry.Register(notify.NewSlackNotifier(cfg.Slack, logger))
	}
	if cfg.Telegram.Enabled {
		telegram, err := notify.NewTelegramNotifier(cfg.Telegram, logger)
		if err != nil {
			return nil, fmt.Errorf("telegram transport: %w", err)
		}
		registry.Register(telegram)
	}

	return registry, nil
}

// bootstrapSystemTarget creates the built-in local resource monitor when the
// store has no system-kind monitor yet. Disabled via monitoring.system_interval: 0.
func bootstrapSystemTarget(ctx context.Context, st *store.Store, cfg *config.Config, logger zerolog.Logger) error {
	if cfg.Monitoring.SystemInterval <= 0 {
		return nil
	}

	targets, err := st.LoadTargets(ctx)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if t.Kind == model.KindSystem {
			return nil
		}
	}

	interval := int(cfg.Monitoring.SystemInterval.Seconds())
	timeout := int(cfg.Monitoring.DefaultTimeout.Seconds())
	if timeout >= interval {
		timeout = interval - 1
	}

	target := &model.MonitorTarget{
		Name:      "Local System",
		URL:       "/",
		Kind:      model.KindSystem,
		Interval:  interval,
		Timeout:   timeout,
		Threshold: cfg.Monitoring.DefaultThreshold,
		Enabled:   true,
	}
	if err := target.Validate(); err != nil {
		return err
	}
	if err := st.CreateMonitor(ctx, target); err != nil {
		return err
	}

	logger.Info().
		Int64("monitor_id", target.ID).
		Int("interval", interval).
		Msg("built-in system monitor created")
	return nil
}

// setupLogger creates a zerolog logger with the specified level and format.
func setupLogger(level string, format string) zerolog.Logger {
	// Set log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Log timestamps in UTC so entries line up with stored sample times
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	// Select output format based on configuration
	var output io.Writer
	if format == "json" {
		// JSON format - structured logging for log aggregation systems
		output = os.Stderr
	} else {
		// Console format - human-readable output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// printBanner prints the application banner.
func printBanner() {
	fmt.Printf("📡 网站可用性监控 %s\n", Version)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

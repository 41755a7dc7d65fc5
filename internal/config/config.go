// Package config provides configuration management for the uptime monitor.
package config

import "time"

// Config is the root configuration structure for the uptime monitor.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Alerting   AlertingConfig   `mapstructure:"alerting"`
	Email      EmailConfig      `mapstructure:"email"`
	Slack      SlackConfig      `mapstructure:"slack"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Retention  RetentionConfig  `mapstructure:"retention"`
	Report     ReportConfig     `mapstructure:"report"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig contains configuration for the PostgreSQL store.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url" validate:"required"` // PostgreSQL 连接串（也可通过 UPMON_DATABASE_URL 或 .env 提供）
	MaxConns       int           `mapstructure:"max_conns" validate:"gte=1,lte=100"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// MonitoringConfig contains configuration for the scheduling engine.
type MonitoringConfig struct {
	DefaultInterval  time.Duration `mapstructure:"default_interval"` // 新建监控的默认检查间隔
	DefaultTimeout   time.Duration `mapstructure:"default_timeout"`  // 新建监控的默认超时
	DefaultThreshold int           `mapstructure:"default_threshold" validate:"gte=1,lte=100"`
	SystemInterval   time.Duration `mapstructure:"system_interval"` // 本机资源采集间隔，0 表示禁用
	ProbeWorkers     int           `mapstructure:"probe_workers" validate:"gte=1,lte=1024"`
	RefreshInterval  time.Duration `mapstructure:"refresh_interval"` // 从存储刷新监控清单的间隔
	ResultsBuffer    int           `mapstructure:"results_buffer" validate:"gte=1"`
}

// AlertingConfig contains configuration for the alert evaluator.
type AlertingConfig struct {
	Cooldown            time.Duration `mapstructure:"cooldown"`              // 同一监控两次通知之间的最小间隔
	RepeatAfterCooldown bool          `mapstructure:"repeat_after_cooldown"` // 冷却期再次届满后是否重发"仍然故障"通知
	EventsBuffer        int           `mapstructure:"events_buffer" validate:"gte=1"`
}

// EmailConfig contains configuration for the SMTP notification transport.
type EmailConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	UseTLS   bool     `mapstructure:"use_tls"` // STARTTLS
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// SlackConfig contains configuration for the Slack webhook transport.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
}

// TelegramConfig contains configuration for the Telegram transport.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	ChatID  string `mapstructure:"chat_id"`
}

// RetentionConfig controls pruning of historical metric samples.
type RetentionConfig struct {
	MaxAge        time.Duration `mapstructure:"max_age"`        // 指标数据保留时长
	SweepInterval time.Duration `mapstructure:"sweep_interval"` // 清理任务执行间隔
}

// ReportConfig contains configuration for offline report generation.
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	Timezone  string `mapstructure:"timezone"`
}

// LoggingConfig contains configuration for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// Package config provides configuration management for the uptime monitor.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values.
// Environment variable format: UPMON_<SECTION>_<KEY> (e.g., UPMON_DATABASE_URL)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults first
	setDefaults(v)

	// Configure environment variable binding
	v.SetEnvPrefix("UPMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Check if config file exists
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// Set config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Database defaults (url stays empty so UPMON_DATABASE_URL can supply it)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	// Monitoring defaults
	v.SetDefault("monitoring.default_interval", 60*time.Second)
	v.SetDefault("monitoring.default_timeout", 10*time.Second)
	v.SetDefault("monitoring.default_threshold", 3)
	v.SetDefault("monitoring.system_interval", 30*time.Second)
	v.SetDefault("monitoring.probe_workers", 64)
	v.SetDefault("monitoring.refresh_interval", 60*time.Second)
	v.SetDefault("monitoring.results_buffer", 256)

	// Alerting defaults
	v.SetDefault("alerting.cooldown", 300*time.Second)
	v.SetDefault("alerting.repeat_after_cooldown", false)
	v.SetDefault("alerting.events_buffer", 64)

	// Notification transport defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.port", 587)
	v.SetDefault("email.use_tls", true)
	v.SetDefault("slack.enabled", false)
	v.SetDefault("telegram.enabled", false)

	// Retention defaults - keep 30 days of metric samples
	v.SetDefault("retention.max_age", 720*time.Hour)
	v.SetDefault("retention.sweep_interval", 24*time.Hour)

	// Report defaults
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.timezone", "UTC")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

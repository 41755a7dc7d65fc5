// Package config provides configuration management for the uptime monitor.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"uptime-monitor/internal/model"
)

// seedFile is the YAML document shape for seed monitor definitions.
type seedFile struct {
	Monitors []*seedTarget `yaml:"monitors"`
}

// seedTarget is one seed monitor entry.
type seedTarget struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	Kind      string `yaml:"monitor_type"`
	Interval  int    `yaml:"check_interval"`
	Timeout   int    `yaml:"timeout"`
	Threshold int    `yaml:"alert_threshold"`
	Disabled  bool   `yaml:"disabled"`
}

// LoadSeedTargets reads seed monitor definitions from the specified YAML file.
// Omitted interval/timeout/threshold fields fall back to 60s/10s/3. Each entry
// is validated; a single bad entry fails the whole load so a typo cannot
// silently drop a monitor.
func LoadSeedTargets(seedPath string) ([]*model.MonitorTarget, error) {
	if seedPath == "" {
		return nil, fmt.Errorf("seed file path is required")
	}

	// Check if file exists
	if _, err := os.Stat(seedPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("seed file not found: %s", seedPath)
	}

	// Read file content
	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	// Parse YAML
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if len(f.Monitors) == 0 {
		return nil, fmt.Errorf("no monitors defined in seed file: %s", seedPath)
	}

	targets := make([]*model.MonitorTarget, 0, len(f.Monitors))
	for i, s := range f.Monitors {
		target := &model.MonitorTarget{
			Name:      s.Name,
			URL:       s.URL,
			Kind:      model.TargetKind(s.Kind),
			Interval:  s.Interval,
			Timeout:   s.Timeout,
			Threshold: s.Threshold,
			Enabled:   !s.Disabled,
		}
		if target.Interval == 0 {
			target.Interval = 60
		}
		if target.Timeout == 0 {
			target.Timeout = 10
		}
		if target.Threshold == 0 {
			target.Threshold = 3
		}
		target.Normalize()

		if err := target.Validate(); err != nil {
			return nil, fmt.Errorf("invalid seed monitor at index %d: %w", i, err)
		}

		targets = append(targets, target)
	}

	return targets, nil
}

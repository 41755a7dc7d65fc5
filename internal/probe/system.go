package probe

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"uptime-monitor/internal/model"
)

const bytesPerGB = 1024 * 1024 * 1024

// SystemProber samples local CPU, memory and disk usage. The target URL acts
// as the disk mount selector ("/" by default).
type SystemProber struct {
	logger zerolog.Logger // Logger
}

// NewSystemProber creates a prober for system-kind targets.
func NewSystemProber(logger zerolog.Logger) *SystemProber {
	return &SystemProber{
		logger: logger.With().Str("component", "system-probe").Logger(),
	}
}

// Run collects a resource snapshot. CPU is sampled non-blocking (usage since
// the previous call), so the scheduler never stalls on it. Collector errors
// degrade to failure samples.
func (p *SystemProber) Run(ctx context.Context, target *model.MonitorTarget) *model.MetricSample {
	started := time.Now().UTC()
	sample := &model.MetricSample{
		MonitorID:   target.ID,
		MonitorName: target.Name,
		CheckedAt:   started,
	}

	mountPath := target.URL
	if mountPath == "" {
		mountPath = "/"
	}

	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return p.fail(sample, fmt.Errorf("cpu: %w", err))
	}
	cpuPercent := 0.0
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	vmStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return p.fail(sample, fmt.Errorf("memory: %w", err))
	}

	diskStat, err := disk.UsageWithContext(ctx, mountPath)
	if err != nil {
		return p.fail(sample, fmt.Errorf("disk %s: %w", mountPath, err))
	}

	sample.Status = model.StatusSuccess
	sample.Resources = &model.ResourceUsage{
		CPUPercent:    round2(cpuPercent),
		MemoryPercent: round2(vmStat.UsedPercent),
		MemoryUsedGB:  round2(float64(vmStat.Used) / bytesPerGB),
		MemoryTotalGB: round2(float64(vmStat.Total) / bytesPerGB),
		DiskPercent:   round2(diskStat.UsedPercent),
		DiskUsedGB:    round2(float64(diskStat.Used) / bytesPerGB),
		DiskTotalGB:   round2(float64(diskStat.Total) / bytesPerGB),
		RecordedAt:    started,
	}

	p.logger.Debug().
		Float64("cpu_percent", sample.Resources.CPUPercent).
		Float64("memory_percent", sample.Resources.MemoryPercent).
		Float64("disk_percent", sample.Resources.DiskPercent).
		Msg("system snapshot collected")

	return sample
}

// fail marks the sample as a failed collection attempt.
func (p *SystemProber) fail(sample *model.MetricSample, err error) *model.MetricSample {
	sample.Status = model.StatusFailure
	sample.Error = fmt.Sprintf("System sampling error: %v", err)
	p.logger.Warn().Err(err).Msg("system sampling failed")
	return sample
}

// round2 rounds to two decimal places for storage and display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

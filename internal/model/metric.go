// Package model provides data models for the uptime monitor.
package model

import "time"

// SampleStatus classifies the outcome of a single probe.
type SampleStatus string

const (
	StatusSuccess SampleStatus = "success" // 探测成功（2xx–3xx 响应）
	StatusFailure SampleStatus = "failure" // 探测失败（错误状态码或连接错误）
	StatusTimeout SampleStatus = "timeout" // 探测超时
)

// IsUp reports whether the status counts as "up" for uptime statistics.
func (s SampleStatus) IsUp() bool {
	return s == StatusSuccess
}

// MetricSample is one probe observation. Samples are append-only: the engine
// creates them and hands them to the store, and nothing ever mutates one after
// that.
type MetricSample struct {
	ID          int64          `json:"id"`
	MonitorID   int64          `json:"monitor_id"`
	MonitorName string         `json:"monitor_name,omitempty"` // 关联查询时填充
	Status      SampleStatus   `json:"status"`
	StatusCode  int            `json:"status_code,omitempty"` // 0 表示未收到响应
	Latency     time.Duration  `json:"-"`                     // 零值表示未收到响应
	Error       string         `json:"error_message,omitempty"`
	Resources   *ResourceUsage `json:"resources,omitempty"` // 仅 system 类型样本
	CheckedAt   time.Time      `json:"checked_at"` // 探测开始时间
}

// HasLatency reports whether the sample carries a measured round-trip time.
// Timeout samples and connection errors have no latency by definition.
func (s *MetricSample) HasLatency() bool {
	return s.Latency > 0 && s.Status != StatusTimeout
}

// LatencyMillis returns the latency in milliseconds.
func (s *MetricSample) LatencyMillis() float64 {
	return float64(s.Latency) / float64(time.Millisecond)
}

// ResourceUsage carries local system utilization sampled by a system probe.
type ResourceUsage struct {
	ID            int64     `json:"id,omitempty"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	MemoryUsedGB  float64   `json:"memory_used_gb"`
	MemoryTotalGB float64   `json:"memory_total_gb"`
	DiskPercent   float64   `json:"disk_percent"`
	DiskUsedGB    float64   `json:"disk_used_gb"`
	DiskTotalGB   float64   `json:"disk_total_gb"`
	RecordedAt    time.Time `json:"recorded_at,omitempty"`
}

// Package model provides data models for the uptime monitor.
package model

import (
	"testing"
	"time"
)

func validTarget() *MonitorTarget {
	return &MonitorTarget{
		ID:        1,
		Name:      "Google",
		URL:       "https://www.google.com",
		Kind:      KindHTTP,
		Interval:  60,
		Timeout:   10,
		Threshold: 3,
		Enabled:   true,
	}
}

func TestMonitorTarget_Validate_Success(t *testing.T) {
	if err := validTarget().Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestMonitorTarget_Validate_SystemKind(t *testing.T) {
	target := &MonitorTarget{
		Name:      "Local System",
		Kind:      KindSystem,
		Interval:  30,
		Timeout:   5,
		Threshold: 3,
		Enabled:   true,
	}
	target.Normalize()

	if target.URL != "/" {
		t.Errorf("Normalize() URL = %q, want %q", target.URL, "/")
	}
	if err := target.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if target.IsHTTP() {
		t.Error("IsHTTP() = true for system kind, want false")
	}
}

func TestMonitorTarget_Validate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*MonitorTarget)
		wantField string
	}{
		{
			name:      "missing name",
			mutate:    func(m *MonitorTarget) { m.Name = "" },
			wantField: "name",
		},
		{
			name:      "missing url",
			mutate:    func(m *MonitorTarget) { m.URL = "" },
			wantField: "url",
		},
		{
			name:      "invalid url scheme",
			mutate:    func(m *MonitorTarget) { m.URL = "ftp://example.com" },
			wantField: "url",
		},
		{
			name:      "url without host",
			mutate:    func(m *MonitorTarget) { m.URL = "https://" },
			wantField: "url",
		},
		{
			name:      "invalid kind",
			mutate:    func(m *MonitorTarget) { m.Kind = "icmp" },
			wantField: "monitor_type",
		},
		{
			name:      "interval too small",
			mutate:    func(m *MonitorTarget) { m.Interval = 5 },
			wantField: "check_interval",
		},
		{
			name:      "interval too large",
			mutate:    func(m *MonitorTarget) { m.Interval = 90000 },
			wantField: "check_interval",
		},
		{
			name:      "timeout zero",
			mutate:    func(m *MonitorTarget) { m.Timeout = 0 },
			wantField: "timeout",
		},
		{
			name:      "timeout not below interval",
			mutate:    func(m *MonitorTarget) { m.Timeout = 60 },
			wantField: "timeout",
		},
		{
			name:      "threshold zero",
			mutate:    func(m *MonitorTarget) { m.Threshold = 0 },
			wantField: "alert_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := validTarget()
			tt.mutate(target)

			err := target.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want validation error")
			}

			verrs, ok := err.(ValidationErrors)
			if !ok {
				t.Fatalf("Validate() error type = %T, want ValidationErrors", err)
			}

			found := false
			for _, ve := range verrs {
				if ve.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v, want error on field %q", verrs, tt.wantField)
			}
		})
	}
}

func TestMonitorTarget_Validate_KeepsAllErrors(t *testing.T) {
	target := validTarget()
	target.Name = ""
	target.Interval = 5

	err := target.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want validation errors")
	}

	verrs := err.(ValidationErrors)
	if len(verrs) < 2 {
		t.Errorf("Validate() returned %d errors, want at least 2", len(verrs))
	}
}

func TestMonitorTarget_Durations(t *testing.T) {
	target := validTarget()

	if got := target.IntervalDuration(); got != 60*time.Second {
		t.Errorf("IntervalDuration() = %v, want 60s", got)
	}
	if got := target.TimeoutDuration(); got != 10*time.Second {
		t.Errorf("TimeoutDuration() = %v, want 10s", got)
	}
}

func TestMonitorTarget_Clone(t *testing.T) {
	target := validTarget()
	clone := target.Clone()

	clone.Name = "changed"
	if target.Name == "changed" {
		t.Error("Clone() shares state with the original")
	}
}

func TestMetricSample_HasLatency(t *testing.T) {
	tests := []struct {
		name   string
		sample MetricSample
		want   bool
	}{
		{"success with latency", MetricSample{Status: StatusSuccess, Latency: 20 * time.Millisecond}, true},
		{"failure with response", MetricSample{Status: StatusFailure, Latency: 15 * time.Millisecond}, true},
		{"connection error", MetricSample{Status: StatusFailure, Latency: 0}, false},
		{"timeout", MetricSample{Status: StatusTimeout, Latency: 5 * time.Second}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sample.HasLatency(); got != tt.want {
				t.Errorf("HasLatency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSampleStatus_IsUp(t *testing.T) {
	if !StatusSuccess.IsUp() {
		t.Error("StatusSuccess.IsUp() = false, want true")
	}
	if StatusFailure.IsUp() || StatusTimeout.IsUp() {
		t.Error("failure/timeout IsUp() = true, want false")
	}
}

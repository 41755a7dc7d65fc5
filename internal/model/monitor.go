// Package model provides data models for the uptime monitor.
package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TargetKind identifies how a monitor target is probed.
type TargetKind string

const (
	KindHTTP   TargetKind = "http"   // HTTP 站点探测
	KindHTTPS  TargetKind = "https"  // HTTPS 站点探测
	KindAPI    TargetKind = "api"    // API 端点探测
	KindSystem TargetKind = "system" // 本机资源采集
)

// MonitorTarget is a configured check. The scheduler only ever observes
// immutable snapshots of it; configuration changes install a whole new value.
type MonitorTarget struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name" validate:"required,max=255"`                      // 监控名称
	URL       string     `json:"url" validate:"required,max=512"`                       // 探测地址（system 类型为磁盘挂载路径）
	Kind      TargetKind `json:"monitor_type" validate:"required,oneof=http https api system"` // 监控类型
	Interval  int        `json:"check_interval" validate:"gte=10,lte=86400"`            // 检查间隔（秒）
	Timeout   int        `json:"timeout" validate:"gte=1,lte=300"`                      // 超时时间（秒）
	Threshold int        `json:"alert_threshold" validate:"gte=1,lte=100"`              // 连续失败告警阈值
	Enabled   bool       `json:"is_active"`                                             // 是否启用
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsHTTP reports whether the target is probed over HTTP.
func (t *MonitorTarget) IsHTTP() bool {
	return t.Kind == KindHTTP || t.Kind == KindHTTPS || t.Kind == KindAPI
}

// IntervalDuration returns the check interval as a time.Duration.
func (t *MonitorTarget) IntervalDuration() time.Duration {
	return time.Duration(t.Interval) * time.Second
}

// TimeoutDuration returns the probe timeout as a time.Duration.
func (t *MonitorTarget) TimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

// Clone returns a copy of the target so callers can hand out snapshots
// without sharing mutable state.
func (t *MonitorTarget) Clone() *MonitorTarget {
	c := *t
	return &c
}

// Normalize trims string fields and fills kind-dependent defaults.
// A system target with no selector samples the root filesystem.
func (t *MonitorTarget) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	t.URL = strings.TrimSpace(t.URL)
	if t.Kind == "" {
		t.Kind = KindHTTP
	}
	if t.Kind == KindSystem && t.URL == "" {
		t.URL = "/"
	}
}

// ValidationError represents a single validation error with a user-friendly message.
type ValidationError struct {
	Field   string      `json:"field"`   // Field name (e.g., "check_interval")
	Tag     string      `json:"tag"`     // Validation tag that failed (e.g., "required", "gte")
	Value   interface{} `json:"value"`   // Actual value that failed validation
	Message string      `json:"message"` // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("monitor validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Messages returns the plain error messages, suitable for API responses.
func (e ValidationErrors) Messages() []string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Message)
	}
	return msgs
}

// validate is the package-level validator instance.
var validate = validator.New()

// fieldJSONNames maps struct field names to their wire names.
var fieldJSONNames = map[string]string{
	"Name":      "name",
	"URL":       "url",
	"Kind":      "monitor_type",
	"Interval":  "check_interval",
	"Timeout":   "timeout",
	"Threshold": "alert_threshold",
}

// Validate checks the target invariants and returns user-friendly error messages.
// Invariants: interval > 0, timeout > 0, timeout < interval, threshold >= 1,
// and a well-formed http(s) URL for HTTP kinds.
func (t *MonitorTarget) Validate() error {
	var validationErrors ValidationErrors

	// Run struct validation
	if err := validate.Struct(t); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, &ValidationError{
					Field:   jsonFieldName(fe.Field()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateTargetError(fe),
				})
			}
		}
	}

	// Run business rule validations
	if t.Timeout >= t.Interval && t.Interval > 0 {
		validationErrors = append(validationErrors, &ValidationError{
			Field:   "timeout",
			Tag:     "lt_interval",
			Value:   fmt.Sprintf("timeout=%d, check_interval=%d", t.Timeout, t.Interval),
			Message: fmt.Sprintf("timeout (%ds) must be less than check interval (%ds)", t.Timeout, t.Interval),
		})
	}

	if t.IsHTTP() && t.URL != "" {
		if !validTargetURL(t.URL) {
			validationErrors = append(validationErrors, &ValidationError{
				Field:   "url",
				Tag:     "url",
				Value:   t.URL,
				Message: fmt.Sprintf("invalid URL format: %s", t.URL),
			})
		}
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validTargetURL reports whether s parses as an absolute http(s) URL with a host.
func validTargetURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// jsonFieldName converts a struct field name to its wire name.
func jsonFieldName(field string) string {
	if name, ok := fieldJSONNames[field]; ok {
		return name
	}
	return strings.ToLower(field)
}

// translateTargetError converts a validator.FieldError to a user-friendly message.
func translateTargetError(fe validator.FieldError) string {
	field := jsonFieldName(fe.Field())

	switch {
	case fe.Tag() == "required":
		return fmt.Sprintf("%s is required", field)
	case field == "name" && fe.Tag() == "max":
		return "name must be less than 255 characters"
	case field == "url" && fe.Tag() == "max":
		return "url must be less than 512 characters"
	case field == "monitor_type" && fe.Tag() == "oneof":
		return fmt.Sprintf("monitor type must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case field == "check_interval" && fe.Tag() == "gte":
		return "check interval must be at least 10 seconds"
	case field == "check_interval" && fe.Tag() == "lte":
		return "check interval must be less than 24 hours"
	case field == "timeout" && fe.Tag() == "gte":
		return "timeout must be at least 1 second"
	case field == "timeout" && fe.Tag() == "lte":
		return "timeout must be less than 5 minutes"
	case field == "alert_threshold" && fe.Tag() == "gte":
		return "alert threshold must be at least 1"
	case field == "alert_threshold" && fe.Tag() == "lte":
		return "alert threshold must be less than 100"
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}

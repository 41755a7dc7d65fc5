// Package model provides data models for the uptime monitor.
package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertStatus represents the in-memory state machine status for a target.
type AlertStatus string

const (
	AlertOK       AlertStatus = "ok"       // 正常
	AlertAlerting AlertStatus = "alerting" // 告警中
)

// AlertState is the per-target alert machine state. It lives in memory only
// and is authoritative: alerting correctness never depends on the store.
// It is mutated exclusively by the result pipeline's serialized handling.
type AlertState struct {
	MonitorID        int64       `json:"monitor_id"`
	Status           AlertStatus `json:"status"`
	ConsecutiveFails int         `json:"consecutive_failures"` // 连续失败次数
	LastNotifiedAt   time.Time   `json:"last_notified_at"`     // 最近一次 open 通知时间（零值表示从未通知）
	LastCheckedAt    time.Time   `json:"last_checked_at"`
	OpenAlertID      int64       `json:"open_alert_id,omitempty"` // 当前未恢复告警记录 ID，0 表示无
	Notified         bool        `json:"-"`                       // 当前告警记录是否已发出通知
}

// Clone returns a copy of the state for read-only consumers.
func (s *AlertState) Clone() *AlertState {
	c := *s
	return &c
}

// Alert record status values, as persisted in the alerts table.
const (
	RecordActive   = "active"
	RecordResolved = "resolved"
)

// AlertTypeDown is the alert_type written when a target breaches its threshold.
const AlertTypeDown = "down"

// AlertRecord is a persisted, user-visible alert occurrence. Created when a
// target transitions to ALERTING and resolved when it recovers. Acknowledgment
// is an API-layer mutation that never feeds back into the state machine.
type AlertRecord struct {
	ID             int64      `json:"id"`
	MonitorID      int64      `json:"monitor_id"`
	MonitorName    string     `json:"monitor_name,omitempty"` // 关联查询时填充
	Type           string     `json:"alert_type"`
	Message        string     `json:"message"`
	Status         string     `json:"status"` // active / resolved
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
}

// EventKind classifies a notification event.
type EventKind string

const (
	EventOpen  EventKind = "open"  // 告警触发
	EventClose EventKind = "close" // 告警恢复
)

// AlertEvent is handed to the notification transports when the evaluator
// opens or closes an alert. Delivered at-most-once per transition; transports
// report outcomes back only for logging.
type AlertEvent struct {
	ID          uuid.UUID `json:"id"`
	Kind        EventKind `json:"kind"`
	MonitorID   int64     `json:"monitor_id"`
	MonitorName string    `json:"monitor_name"`
	Message     string    `json:"message"`
	At          time.Time `json:"at"`
}

// NewAlertEvent creates an AlertEvent with a fresh trace identity.
func NewAlertEvent(kind EventKind, monitorID int64, monitorName, message string, at time.Time) *AlertEvent {
	return &AlertEvent{
		ID:          uuid.New(),
		Kind:        kind,
		MonitorID:   monitorID,
		MonitorName: monitorName,
		Message:     message,
		At:          at,
	}
}

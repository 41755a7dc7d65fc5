package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"uptime-monitor/internal/model"
)

var evalBase = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// at converts scenario seconds into absolute sample times.
func at(sec int) time.Time {
	return evalBase.Add(time.Duration(sec) * time.Second)
}

func alertTarget(threshold int) *model.MonitorTarget {
	return &model.MonitorTarget{
		ID:        1,
		Name:      "API",
		URL:       "https://api.example.com",
		Kind:      model.KindAPI,
		Interval:  60,
		Timeout:   10,
		Threshold: threshold,
		Enabled:   true,
	}
}

func failAt(sec int) *model.MetricSample {
	return &model.MetricSample{
		MonitorID:   1,
		MonitorName: "API",
		Status:      model.StatusFailure,
		StatusCode:  500,
		Error:       "HTTP 500",
		CheckedAt:   at(sec),
	}
}

func timeoutAt(sec int) *model.MetricSample {
	return &model.MetricSample{
		MonitorID:   1,
		MonitorName: "API",
		Status:      model.StatusTimeout,
		Error:       "Request timeout",
		CheckedAt:   at(sec),
	}
}

func okAt(sec int) *model.MetricSample {
	return &model.MetricSample{
		MonitorID:   1,
		MonitorName: "API",
		Status:      model.StatusSuccess,
		StatusCode:  200,
		Latency:     20 * time.Millisecond,
		CheckedAt:   at(sec),
	}
}

func TestEvaluator_OpensAtThreshold(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 300*time.Second, false, testLogger())
	target := alertTarget(3)
	ctx := context.Background()

	if events := ev.Apply(ctx, target, failAt(0)); len(events) != 0 {
		t.Errorf("1st failure: expected no events, got %d", len(events))
	}
	if events := ev.Apply(ctx, target, failAt(60)); len(events) != 0 {
		t.Errorf("2nd failure: expected no events, got %d", len(events))
	}

	events := ev.Apply(ctx, target, failAt(120))
	if len(events) != 1 {
		t.Fatalf("3rd failure: expected 1 event, got %d", len(events))
	}
	if events[0].Kind != model.EventOpen {
		t.Errorf("expected open event, got %s", events[0].Kind)
	}
	wantMsg := "Monitor 'API' is down. Failed 3 consecutive checks."
	if events[0].Message != wantMsg {
		t.Errorf("event message = %q, want %q", events[0].Message, wantMsg)
	}

	state, ok := ev.State(1)
	if !ok {
		t.Fatal("expected alert state for monitor 1")
	}
	if state.Status != model.AlertAlerting {
		t.Errorf("state = %s, want alerting", state.Status)
	}
	if state.ConsecutiveFails != 3 {
		t.Errorf("consecutive failures = %d, want 3", state.ConsecutiveFails)
	}
	if !state.LastNotifiedAt.Equal(at(120)) {
		t.Errorf("last notified = %v, want %v", state.LastNotifiedAt, at(120))
	}
	if state.OpenAlertID != 1 {
		t.Errorf("open alert id = %d, want 1", state.OpenAlertID)
	}

	if store.openedCount() != 1 {
		t.Fatalf("expected 1 persisted alert record, got %d", store.openedCount())
	}
	record := store.opened[0]
	if record.Type != model.AlertTypeDown {
		t.Errorf("record type = %q, want down", record.Type)
	}
	if record.Status != model.RecordActive {
		t.Errorf("record status = %q, want active", record.Status)
	}
	if record.Message != wantMsg {
		t.Errorf("record message = %q, want %q", record.Message, wantMsg)
	}
}

func TestEvaluator_TimeoutCountsAsFailure(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 300*time.Second, false, testLogger())
	target := alertTarget(2)
	ctx := context.Background()

	ev.Apply(ctx, target, timeoutAt(0))
	events := ev.Apply(ctx, target, timeoutAt(60))

	if len(events) != 1 || events[0].Kind != model.EventOpen {
		t.Fatalf("expected an open event after 2 timeouts, got %v", events)
	}
}

func TestEvaluator_SuccessResetsCount(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 300*time.Second, false, testLogger())
	target := alertTarget(2)
	ctx := context.Background()

	ev.Apply(ctx, target, failAt(0))
	ev.Apply(ctx, target, okAt(60)) // resets the streak

	if events := ev.Apply(ctx, target, failAt(120)); len(events) != 0 {
		t.Errorf("count must restart after a success, got %d events", len(events))
	}
	events := ev.Apply(ctx, target, failAt(180))
	if len(events) != 1 {
		t.Errorf("expected open after a fresh streak of 2, got %d events", len(events))
	}
}

func TestEvaluator_CloseOnFirstSuccess(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 300*time.Second, false, testLogger())
	target := alertTarget(1)
	ctx := context.Background()

	ev.Apply(ctx, target, failAt(0))

	events := ev.Apply(ctx, target, okAt(60))
	if len(events) != 1 {
		t.Fatalf("expected 1 close event, got %d", len(events))
	}
	if events[0].Kind != model.EventClose {
		t.Errorf("expected close event, got %s", events[0].Kind)
	}
	if events[0].Message != "Monitor 'API' is back up." {
		t.Errorf("unexpected close message %q", events[0].Message)
	}

	if store.resolvedCount() != 1 {
		t.Errorf("expected 1 resolve call, got %d", store.resolvedCount())
	}

	state, _ := ev.State(1)
	if state.Status != model.AlertOK {
		t.Errorf("state = %s, want ok", state.Status)
	}
	if state.ConsecutiveFails != 0 {
		t.Errorf("consecutive failures = %d, want 0", state.ConsecutiveFails)
	}
	if state.OpenAlertID != 0 {
		t.Errorf("open alert id = %d, want 0", state.OpenAlertID)
	}
}

// TestEvaluator_CooldownDefersSecondOpen walks a full flap under a 300s
// cooldown. The close at t=180 must not move the cooldown clock: the second
// outage crosses the threshold at t=360 (240s after the first notification),
// so its record is created silently and the announcement goes out with the
// first failure at or past t=420.
func TestEvaluator_CooldownDefersSecondOpen(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 300*time.Second, false, testLogger())
	target := alertTarget(3)
	ctx := context.Background()

	// First outage: notified at t=120
	ev.Apply(ctx, target, failAt(0))
	ev.Apply(ctx, target, failAt(60))
	events := ev.Apply(ctx, target, failAt(120))
	if len(events) != 1 || events[0].Kind != model.EventOpen {
		t.Fatalf("first outage: expected open at t=120, got %v", events)
	}

	// Recovery: close emits immediately, cooldown clock untouched
	events = ev.Apply(ctx, target, okAt(180))
	if len(events) != 1 || events[0].Kind != model.EventClose {
		t.Fatalf("recovery: expected close at t=180, got %v", events)
	}

	// Second outage: threshold crossed at t=360, still inside the cooldown
	ev.Apply(ctx, target, failAt(240))
	ev.Apply(ctx, target, failAt(300))
	events = ev.Apply(ctx, target, failAt(360))
	if len(events) != 0 {
		t.Fatalf("second outage: open must be held back at t=360, got %v", events)
	}
	if store.openedCount() != 2 {
		t.Errorf("the record is still created silently, want 2 records, got %d", store.openedCount())
	}
	state, _ := ev.State(1)
	if state.Status != model.AlertAlerting {
		t.Errorf("state = %s, want alerting", state.Status)
	}
	if state.Notified {
		t.Error("held-back alert must be marked not notified")
	}

	// First qualifying failure after the cooldown elapses announces it
	events = ev.Apply(ctx, target, failAt(420))
	if len(events) != 1 || events[0].Kind != model.EventOpen {
		t.Fatalf("expected deferred open at t=420, got %v", events)
	}
	wantMsg := "Monitor 'API' is down. Failed 4 consecutive checks."
	if events[0].Message != wantMsg {
		t.Errorf("deferred message = %q, want %q", events[0].Message, wantMsg)
	}
	if store.openedCount() != 2 {
		t.Errorf("deferred announcement must not create another record, got %d", store.openedCount())
	}

	state, _ = ev.State(1)
	if !state.LastNotifiedAt.Equal(at(420)) {
		t.Errorf("last notified = %v, want %v", state.LastNotifiedAt, at(420))
	}
	if !state.Notified {
		t.Error("state must be marked notified after the deferred announcement")
	}
}

func TestEvaluator_NoDuplicateOpenWhileAlerting(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 60*time.Second, false, testLogger())
	target := alertTarget(1)
	ctx := context.Background()

	if events := ev.Apply(ctx, target, failAt(0)); len(events) != 1 {
		t.Fatalf("expected open at t=0, got %d events", len(events))
	}

	// Without repeat_after_cooldown, staying down never re-announces
	for _, sec := range []int{60, 120, 600, 3600} {
		if events := ev.Apply(ctx, target, failAt(sec)); len(events) != 0 {
			t.Errorf("t=%d: expected no events while alerting, got %d", sec, len(events))
		}
	}
	if store.openedCount() != 1 {
		t.Errorf("expected a single record, got %d", store.openedCount())
	}
}

func TestEvaluator_RepeatAfterCooldown(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 60*time.Second, true, testLogger())
	target := alertTarget(1)
	ctx := context.Background()

	if events := ev.Apply(ctx, target, failAt(0)); len(events) != 1 {
		t.Fatalf("expected open at t=0, got %d events", len(events))
	}
	if events := ev.Apply(ctx, target, failAt(30)); len(events) != 0 {
		t.Errorf("t=30: still inside cooldown, got %d events", len(events))
	}

	events := ev.Apply(ctx, target, failAt(70))
	if len(events) != 1 {
		t.Fatalf("t=70: expected a still-down event, got %d", len(events))
	}
	if events[0].Kind != model.EventOpen {
		t.Errorf("still-down event kind = %s, want open", events[0].Kind)
	}
	wantMsg := "Monitor 'API' is still down. 3 consecutive failed checks."
	if events[0].Message != wantMsg {
		t.Errorf("still-down message = %q, want %q", events[0].Message, wantMsg)
	}

	if events := ev.Apply(ctx, target, failAt(100)); len(events) != 0 {
		t.Errorf("t=100: inside the new cooldown window, got %d events", len(events))
	}
	if events := ev.Apply(ctx, target, failAt(130)); len(events) != 1 {
		t.Errorf("t=130: cooldown re-elapsed, expected 1 event, got %d", len(events))
	}

	// Re-announcements never create additional records
	if store.openedCount() != 1 {
		t.Errorf("expected a single record, got %d", store.openedCount())
	}
}

func TestEvaluator_OpenPersistFailureStillNotifies(t *testing.T) {
	store := newFakeStore()
	store.openErr = errors.New("db down")
	ev := NewEvaluator(store, 300*time.Second, false, testLogger())
	target := alertTarget(1)

	events := ev.Apply(context.Background(), target, failAt(0))
	if len(events) != 1 {
		t.Fatalf("alerting must not depend on persistence, got %d events", len(events))
	}

	state, _ := ev.State(1)
	if state.Status != model.AlertAlerting {
		t.Errorf("state = %s, want alerting", state.Status)
	}
	if state.OpenAlertID != 0 {
		t.Errorf("open alert id = %d, want 0 when persistence failed", state.OpenAlertID)
	}
}

func TestEvaluator_ResolveFailureStillCloses(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 300*time.Second, false, testLogger())
	target := alertTarget(1)
	ctx := context.Background()

	ev.Apply(ctx, target, failAt(0))
	store.resolveErr = errors.New("db down")

	events := ev.Apply(ctx, target, okAt(60))
	if len(events) != 1 || events[0].Kind != model.EventClose {
		t.Fatalf("close must not depend on persistence, got %v", events)
	}

	state, _ := ev.State(1)
	if state.Status != model.AlertOK {
		t.Errorf("state = %s, want ok", state.Status)
	}
}

func TestEvaluator_Forget(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 300*time.Second, false, testLogger())
	target := alertTarget(2)
	ctx := context.Background()

	ev.Apply(ctx, target, failAt(0))
	ev.Forget(1)

	if _, ok := ev.State(1); ok {
		t.Error("state should be gone after Forget")
	}

	// A fresh streak starts from zero
	if events := ev.Apply(ctx, target, failAt(60)); len(events) != 0 {
		t.Errorf("expected no events on the first failure of a fresh state, got %d", len(events))
	}
}

func TestEvaluator_StatesAreSortedCopies(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 300*time.Second, false, testLogger())
	ctx := context.Background()

	second := alertTarget(3)
	second.ID = 2
	second.Name = "Second"

	sampleFor := func(id int64, sec int) *model.MetricSample {
		s := failAt(sec)
		s.MonitorID = id
		return s
	}

	ev.Apply(ctx, second, sampleFor(2, 0))
	ev.Apply(ctx, alertTarget(3), sampleFor(1, 0))

	states := ev.States()
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	if states[0].MonitorID != 1 || states[1].MonitorID != 2 {
		t.Errorf("states must be ordered by monitor id, got %d, %d", states[0].MonitorID, states[1].MonitorID)
	}

	states[0].ConsecutiveFails = 99
	fresh, _ := ev.State(1)
	if fresh.ConsecutiveFails != 1 {
		t.Error("States() must hand out copies")
	}
}

func TestEvaluator_CloseAfterSilentOpen(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 300*time.Second, false, testLogger())
	target := alertTarget(1)
	ctx := context.Background()

	// First outage notifies and sets the cooldown clock
	ev.Apply(ctx, target, failAt(0))
	ev.Apply(ctx, target, okAt(60))

	// Second outage opens silently inside the cooldown
	if events := ev.Apply(ctx, target, failAt(120)); len(events) != 0 {
		t.Fatalf("expected silent open, got %d events", len(events))
	}

	// Recovery still emits the close event for the silent record
	events := ev.Apply(ctx, target, okAt(180))
	if len(events) != 1 || events[0].Kind != model.EventClose {
		t.Fatalf("expected close after silent open, got %v", events)
	}
	if store.resolvedCount() != 2 {
		t.Errorf("expected both outages resolved, got %d resolve calls", store.resolvedCount())
	}
}

func TestEvaluator_EventMessagesCarryMonitorName(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, 300*time.Second, false, testLogger())

	target := alertTarget(1)
	target.Name = "Payments Gateway"
	sample := failAt(0)
	sample.MonitorName = target.Name

	events := ev.Apply(context.Background(), target, sample)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	want := fmt.Sprintf("Monitor '%s' is down. Failed 1 consecutive checks.", target.Name)
	if events[0].Message != want {
		t.Errorf("message = %q, want %q", events[0].Message, want)
	}
	if events[0].MonitorName != target.Name {
		t.Errorf("event monitor name = %q, want %q", events[0].MonitorName, target.Name)
	}
	if events[0].ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("event id must be populated")
	}
}

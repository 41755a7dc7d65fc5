package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"uptime-monitor/internal/model"
)

// Evaluator is the stateful alert machine. One AlertState per target, mutated
// only under its mutex; the in-memory state is authoritative and alerting
// keeps working even when the store is down. All time arithmetic uses the
// sample's CheckedAt, never the wall clock.
type Evaluator struct {
	mu     sync.Mutex
	states map[int64]*model.AlertState

	store    Store
	cooldown time.Duration // minimum gap between open-kind notifications
	repeat   bool          // re-announce a still-failing monitor each cooldown
	logger   zerolog.Logger
}

// NewEvaluator creates the alert machine.
func NewEvaluator(store Store, cooldown time.Duration, repeatAfterCooldown bool, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		states:   make(map[int64]*model.AlertState),
		store:    store,
		cooldown: cooldown,
		repeat:   repeatAfterCooldown,
		logger:   logger.With().Str("component", "evaluator").Logger(),
	}
}

// Apply feeds one sample through the state machine and returns the alert
// events to announce, if any. Alert records are persisted as a side effect;
// persistence failures are logged and never affect the transitions.
func (e *Evaluator) Apply(ctx context.Context, target *model.MonitorTarget, sample *model.MetricSample) []*model.AlertEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.states[target.ID]
	if !ok {
		state = &model.AlertState{MonitorID: target.ID, Status: model.AlertOK}
		e.states[target.ID] = state
	}
	state.LastCheckedAt = sample.CheckedAt

	if sample.Status.IsUp() {
		return e.applySuccess(ctx, target, state, sample)
	}
	return e.applyFailure(ctx, target, state, sample)
}

// applySuccess resets the failure count and closes an open alert.
func (e *Evaluator) applySuccess(ctx context.Context, target *model.MonitorTarget, state *model.AlertState, sample *model.MetricSample) []*model.AlertEvent {
	state.ConsecutiveFails = 0

	if state.Status != model.AlertAlerting {
		return nil
	}

	// First success while alerting closes the alert. Close events are not
	// cooldown-gated and do not move the cooldown clock.
	state.Status = model.AlertOK
	state.OpenAlertID = 0
	state.Notified = false

	if err := e.store.ResolveAlerts(ctx, target.ID); err != nil {
		e.logger.Error().
			Err(err).
			Int64("monitor_id", target.ID).
			Msg("failed to resolve alert records")
	}

	e.logger.Info().
		Int64("monitor_id", target.ID).
		Str("monitor", target.Name).
		Msg("alert closed")

	event := model.NewAlertEvent(model.EventClose, target.ID, target.Name,
		fmt.Sprintf("Monitor '%s' is back up.", target.Name), sample.CheckedAt)
	return []*model.AlertEvent{event}
}

// applyFailure advances the failure count and opens or re-announces an alert.
func (e *Evaluator) applyFailure(ctx context.Context, target *model.MonitorTarget, state *model.AlertState, sample *model.MetricSample) []*model.AlertEvent {
	state.ConsecutiveFails++
	now := sample.CheckedAt

	if state.Status == model.AlertOK {
		if state.ConsecutiveFails < target.Threshold {
			return nil
		}

		// Threshold crossed: the record is created right away, the
		// announcement waits for the cooldown if one is still running.
		state.Status = model.AlertAlerting
		message := fmt.Sprintf("Monitor '%s' is down. Failed %d consecutive checks.",
			target.Name, target.Threshold)

		record := &model.AlertRecord{
			MonitorID:   target.ID,
			MonitorName: target.Name,
			Type:        model.AlertTypeDown,
			Message:     message,
			Status:      model.RecordActive,
			CreatedAt:   now,
		}
		if id, err := e.store.OpenAlert(ctx, record); err != nil {
			e.logger.Error().
				Err(err).
				Int64("monitor_id", target.ID).
				Msg("failed to persist alert record")
		} else {
			state.OpenAlertID = id
		}

		e.logger.Warn().
			Int64("monitor_id", target.ID).
			Str("monitor", target.Name).
			Int("consecutive_failures", state.ConsecutiveFails).
			Msg("alert opened")

		if !e.cooldownElapsed(state, now) {
			state.Notified = false
			e.logger.Info().
				Int64("monitor_id", target.ID).
				Msg("open notification held back by cooldown")
			return nil
		}

		state.LastNotifiedAt = now
		state.Notified = true
		return []*model.AlertEvent{
			model.NewAlertEvent(model.EventOpen, target.ID, target.Name, message, now),
		}
	}

	// Already alerting: a held-back announcement goes out on the first
	// qualifying failure after the cooldown elapses.
	if !state.Notified {
		if !e.cooldownElapsed(state, now) {
			return nil
		}
		state.LastNotifiedAt = now
		state.Notified = true
		message := fmt.Sprintf("Monitor '%s' is down. Failed %d consecutive checks.",
			target.Name, state.ConsecutiveFails)
		return []*model.AlertEvent{
			model.NewAlertEvent(model.EventOpen, target.ID, target.Name, message, now),
		}
	}

	if e.repeat && e.cooldownElapsed(state, now) {
		state.LastNotifiedAt = now
		message := fmt.Sprintf("Monitor '%s' is still down. %d consecutive failed checks.",
			target.Name, state.ConsecutiveFails)
		return []*model.AlertEvent{
			model.NewAlertEvent(model.EventOpen, target.ID, target.Name, message, now),
		}
	}

	return nil
}

// cooldownElapsed reports whether an open-kind notification may go out at the
// given time. The clock starts at the previous open-kind notification; close
// notifications never move it.
func (e *Evaluator) cooldownElapsed(state *model.AlertState, now time.Time) bool {
	if state.LastNotifiedAt.IsZero() {
		return true
	}
	return now.Sub(state.LastNotifiedAt) >= e.cooldown
}

// State returns a copy of one target's alert state.
func (e *Evaluator) State(monitorID int64) (*model.AlertState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.states[monitorID]
	if !ok {
		return nil, false
	}
	return state.Clone(), true
}

// States returns copies of every alert state, ordered by monitor id.
func (e *Evaluator) States() []*model.AlertState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*model.AlertState, 0, len(e.states))
	for _, state := range e.states {
		out = append(out, state.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonitorID < out[j].MonitorID })
	return out
}

// Forget destroys the alert state of a removed target.
func (e *Evaluator) Forget(monitorID int64) {
	e.mu.Lock()
	delete(e.states, monitorID)
	e.mu.Unlock()
}

package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"uptime-monitor/internal/model"
	"uptime-monitor/internal/probe"
)

// maxIdleWait bounds how long the loop sleeps when nothing is due, so a
// stuck signal can never park the scheduler forever.
const maxIdleWait = time.Minute

// flightTable tracks the per-target in-flight flag. The flag outlives
// registry updates: editing a monitor must not let two probes overlap.
type flightTable struct {
	mu      sync.Mutex
	flights map[int64]*atomic.Bool
}

func newFlightTable() *flightTable {
	return &flightTable{flights: make(map[int64]*atomic.Bool)}
}

// get returns the flag for the id, creating it on first sight.
func (t *flightTable) get(id int64) *atomic.Bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	fl, ok := t.flights[id]
	if !ok {
		fl = &atomic.Bool{}
		t.flights[id] = fl
	}
	return fl
}

// drop forgets the flag for a removed target.
func (t *flightTable) drop(id int64) {
	t.mu.Lock()
	delete(t.flights, id)
	t.mu.Unlock()
}

// Scheduler is the single coordination loop. It keeps a per-target next-due
// table, dispatches due probes as bounded goroutines and never blocks on probe
// execution itself.
type Scheduler struct {
	registry *Registry
	prober   probe.Prober
	flights  *flightTable
	results  chan<- *model.MetricSample
	sem      *semaphore.Weighted // global probe concurrency cap
	due      map[int64]time.Time // per-target next-due table
	logger   zerolog.Logger
}

// NewScheduler creates the coordination loop. workers caps the number of
// probes running at once across all targets.
func NewScheduler(registry *Registry, prober probe.Prober, flights *flightTable, results chan<- *model.MetricSample, workers int, logger zerolog.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		registry: registry,
		prober:   prober,
		flights:  flights,
		results:  results,
		sem:      semaphore.NewWeighted(int64(workers)),
		due:      make(map[int64]time.Time),
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// Run drives the loop until the context is canceled. A probe failure is data,
// never a loop fault; only cancellation ends the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info().Msg("scheduler started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
		case <-s.registry.Changes():
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		s.reconcile()
		next := s.dispatchDue(ctx)

		wait := maxIdleWait
		if !next.IsZero() {
			wait = time.Until(next)
			if wait < 0 {
				wait = 0
			}
			if wait > maxIdleWait {
				wait = maxIdleWait
			}
		}
		timer.Reset(wait)
	}
}

// reconcile synchronizes the due table with the registry: enabled targets not
// yet tracked are due immediately (new monitors probe right away), entries for
// removed or disabled targets are dropped.
func (s *Scheduler) reconcile() {
	now := time.Now()
	enabled := make(map[int64]bool)

	for _, target := range s.registry.Snapshot() {
		if !target.Enabled {
			continue
		}
		enabled[target.ID] = true
		if _, ok := s.due[target.ID]; !ok {
			s.due[target.ID] = now
			s.logger.Debug().
				Int64("monitor_id", target.ID).
				Str("monitor", target.Name).
				Msg("monitor scheduled")
		}
	}

	for id := range s.due {
		if !enabled[id] {
			delete(s.due, id)
			s.logger.Debug().Int64("monitor_id", id).Msg("monitor unscheduled")
		}
	}
}

// dispatchDue fires every due target whose in-flight flag can be taken and
// advances its slot. Returns the earliest upcoming due time, zero when the
// table is empty.
func (s *Scheduler) dispatchDue(ctx context.Context) time.Time {
	now := time.Now()
	var earliest time.Time

	for id, at := range s.due {
		if at.After(now) {
			if earliest.IsZero() || at.Before(earliest) {
				earliest = at
			}
			continue
		}

		target, ok := s.registry.Get(id)
		if !ok {
			delete(s.due, id)
			continue
		}

		// Advance from the scheduled time, not from now, so slots do not
		// drift. Slots missed while the loop was delayed are skipped.
		next := at.Add(target.IntervalDuration())
		for !next.After(now) {
			next = next.Add(target.IntervalDuration())
		}
		s.due[id] = next
		if earliest.IsZero() || next.Before(earliest) {
			earliest = next
		}

		fl := s.flights.get(id)
		if !fl.CompareAndSwap(false, true) {
			// Previous probe still running: this slot is skipped, not queued.
			s.logger.Debug().
				Int64("monitor_id", id).
				Str("monitor", target.Name).
				Msg("probe still in flight, slot skipped")
			continue
		}

		go s.dispatch(ctx, target, fl)
	}

	return earliest
}

// dispatch runs one probe under the concurrency cap and delivers the result.
// It owns the in-flight flag until the result is handed to the pipeline.
func (s *Scheduler) dispatch(ctx context.Context, target *model.MonitorTarget, fl *atomic.Bool) {
	defer fl.Store(false)

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return
	}
	sample := runProbe(ctx, s.prober, target, s.logger)
	s.sem.Release(1)

	select {
	case s.results <- sample:
	case <-ctx.Done():
	}
}

// runProbe executes the prober and converts a panic into a failure sample so
// a faulty probe can never take the loop down.
func runProbe(ctx context.Context, prober probe.Prober, target *model.MonitorTarget, logger zerolog.Logger) (sample *model.MetricSample) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Int64("monitor_id", target.ID).
				Str("monitor", target.Name).
				Msg("probe panicked")
			sample = &model.MetricSample{
				MonitorID:   target.ID,
				MonitorName: target.Name,
				Status:      model.StatusFailure,
				Error:       fmt.Sprintf("probe panic: %v", r),
				CheckedAt:   time.Now().UTC(),
			}
		}
	}()

	return prober.Run(ctx, target)
}

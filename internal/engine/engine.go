// Package engine contains the monitoring core: the target registry, the
// scheduling loop, the result pipeline and the alert evaluator.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"uptime-monitor/internal/config"
	"uptime-monitor/internal/model"
	"uptime-monitor/internal/probe"
)

// ErrProbeInFlight is returned by CheckNow when a probe for the target is
// already running.
var ErrProbeInFlight = errors.New("a check for this monitor is already in flight")

// Store is the persistence contract the engine consumes. The pipeline appends
// samples, the evaluator opens and resolves alert records, and the refresh
// loop reloads monitor definitions.
type Store interface {
	LoadTargets(ctx context.Context) ([]*model.MonitorTarget, error)
	AppendSample(ctx context.Context, sample *model.MetricSample) error
	OpenAlert(ctx context.Context, record *model.AlertRecord) (int64, error)
	ResolveAlerts(ctx context.Context, monitorID int64) error
}

// Engine ties the registry, scheduler, pipeline and evaluator together and
// exposes the operations the API layer drives.
type Engine struct {
	registry  *Registry
	scheduler *Scheduler
	pipeline  *Pipeline
	evaluator *Evaluator
	flights   *flightTable
	store     Store
	prober    probe.Prober
	results   chan *model.MetricSample

	refreshInterval time.Duration
	logger          zerolog.Logger
}

// New assembles an engine from its collaborators. The publisher may be nil
// when no notification transport is configured.
func New(cfg *config.Config, store Store, prober probe.Prober, publisher Publisher, logger zerolog.Logger) *Engine {
	registry := NewRegistry()
	flights := newFlightTable()
	results := make(chan *model.MetricSample, cfg.Monitoring.ResultsBuffer)
	evaluator := NewEvaluator(store, cfg.Alerting.Cooldown, cfg.Alerting.RepeatAfterCooldown, logger)

	return &Engine{
		registry:        registry,
		scheduler:       NewScheduler(registry, prober, flights, results, cfg.Monitoring.ProbeWorkers, logger),
		pipeline:        NewPipeline(registry, store, evaluator, publisher, logger),
		evaluator:       evaluator,
		flights:         flights,
		store:           store,
		prober:          prober,
		results:         results,
		refreshInterval: cfg.Monitoring.RefreshInterval,
		logger:          logger.With().Str("component", "engine").Logger(),
	}
}

// Run loads the initial target set and drives the scheduler, the pipeline and
// the periodic registry refresh until the context is canceled. An unreachable
// store at startup is fatal; afterwards refresh failures only log.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.refreshTargets(ctx); err != nil {
		return fmt.Errorf("initial monitor load: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.scheduler.Run(ctx) })
	g.Go(func() error { return e.pipeline.Run(ctx, e.results) })
	g.Go(func() error { return e.refreshLoop(ctx) })
	return g.Wait()
}

// refreshLoop periodically reconciles the registry against the store so
// definitions changed outside this process are picked up.
func (e *Engine) refreshLoop(ctx context.Context) error {
	ticker := time.NewTicker(e.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := e.refreshTargets(ctx); err != nil {
				e.logger.Error().Err(err).Msg("failed to refresh monitors from store")
			}
		}
	}
}

// refreshTargets reloads all monitor definitions and reconciles the registry,
// dropping scheduling and alert state of monitors that disappeared.
func (e *Engine) refreshTargets(ctx context.Context) error {
	targets, err := e.store.LoadTargets(ctx)
	if err != nil {
		return err
	}

	removed := e.registry.Replace(targets)
	for _, id := range removed {
		e.flights.drop(id)
		e.evaluator.Forget(id)
	}

	e.logger.Debug().
		Int("monitors", len(targets)).
		Int("removed", len(removed)).
		Msg("monitor registry refreshed")
	return nil
}

// UpsertTarget validates and installs a definition; scheduling picks it up on
// the next loop wake. New targets get their first probe immediately.
func (e *Engine) UpsertTarget(target *model.MonitorTarget) error {
	return e.registry.Upsert(target)
}

// RemoveTarget cancels all future scheduling for the monitor and destroys its
// alert state. A probe already in flight runs to completion; its result is
// discarded by the pipeline.
func (e *Engine) RemoveTarget(id int64) {
	e.registry.Remove(id)
	e.flights.drop(id)
	e.evaluator.Forget(id)
}

// Targets returns a snapshot of the registered monitor definitions.
func (e *Engine) Targets() []*model.MonitorTarget {
	return e.registry.Snapshot()
}

// AlertStates returns a copy of every monitor's alert state.
func (e *Engine) AlertStates() []*model.AlertState {
	return e.evaluator.States()
}

// AlertState returns a copy of one monitor's alert state.
func (e *Engine) AlertState(monitorID int64) (*model.AlertState, bool) {
	return e.evaluator.State(monitorID)
}

// CheckNow probes the target immediately, outside its schedule. It takes the
// same in-flight flag as the scheduler, so a manual check can never overlap a
// scheduled probe; the result enters the regular pipeline and is returned to
// the caller.
func (e *Engine) CheckNow(ctx context.Context, target *model.MonitorTarget) (*model.MetricSample, error) {
	fl := e.flights.get(target.ID)
	if !fl.CompareAndSwap(false, true) {
		return nil, ErrProbeInFlight
	}
	defer fl.Store(false)

	sample := runProbe(ctx, e.prober, target, e.logger)

	select {
	case e.results <- sample:
	case <-ctx.Done():
		e.logger.Warn().
			Int64("monitor_id", target.ID).
			Msg("manual check result not recorded, shutting down")
	}
	return sample, nil
}

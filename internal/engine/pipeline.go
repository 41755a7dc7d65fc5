package engine

import (
	"context"

	"github.com/rs/zerolog"

	"uptime-monitor/internal/model"
)

// Publisher hands alert events to the notification layer. Publishing must not
// block result handling.
type Publisher interface {
	Publish(event *model.AlertEvent)
}

// NopPublisher discards events. Used when no notification transport is
// enabled.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(*model.AlertEvent) {}

// Pipeline consumes probe results. Exactly one consumer goroutine runs, so
// results are handled in dispatch order; combined with the per-target
// in-flight flag this serializes handling per target and keeps the alert
// timeline monotonic.
type Pipeline struct {
	registry  *Registry
	store     Store
	evaluator *Evaluator
	publisher Publisher
	logger    zerolog.Logger
}

// NewPipeline creates the result consumer.
func NewPipeline(registry *Registry, store Store, evaluator *Evaluator, publisher Publisher, logger zerolog.Logger) *Pipeline {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Pipeline{
		registry:  registry,
		store:     store,
		evaluator: evaluator,
		publisher: publisher,
		logger:    logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run consumes results until the context is canceled.
func (p *Pipeline) Run(ctx context.Context, results <-chan *model.MetricSample) error {
	p.logger.Info().Msg("result pipeline started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("result pipeline stopped")
			return ctx.Err()
		case sample := <-results:
			p.handle(ctx, sample)
		}
	}
}

// handle records one sample and feeds it to the alert machine. Results for
// monitors removed while the probe was in flight are discarded. A persistence
// failure is logged and never blocks evaluation.
func (p *Pipeline) handle(ctx context.Context, sample *model.MetricSample) {
	target, ok := p.registry.Get(sample.MonitorID)
	if !ok {
		p.logger.Debug().
			Int64("monitor_id", sample.MonitorID).
			Msg("discarding result for removed monitor")
		return
	}

	if err := p.store.AppendSample(ctx, sample); err != nil {
		p.logger.Error().
			Err(err).
			Int64("monitor_id", sample.MonitorID).
			Str("monitor", sample.MonitorName).
			Msg("failed to persist sample")
	}

	for _, event := range p.evaluator.Apply(ctx, target, sample) {
		p.publisher.Publish(event)
	}
}

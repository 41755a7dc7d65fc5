package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"uptime-monitor/internal/model"
)

// sendTimeout bounds a single transport delivery so one slow webhook or SMTP
// server cannot stall the queue.
const sendTimeout = 30 * time.Second

// Dispatcher queues alert events and fans them out to every registered
// transport. Publish never blocks the caller: when the queue is full the
// event is dropped and logged.
type Dispatcher struct {
	registry *Registry
	events   chan *model.AlertEvent
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher with a bounded event queue.
func NewDispatcher(registry *Registry, buffer int, logger zerolog.Logger) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	return &Dispatcher{
		registry: registry,
		events:   make(chan *model.AlertEvent, buffer),
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Publish enqueues an event for delivery without blocking the evaluator.
func (d *Dispatcher) Publish(event *model.AlertEvent) {
	select {
	case d.events <- event:
	default:
		d.logger.Warn().
			Str("event_id", event.ID.String()).
			Str("monitor", event.MonitorName).
			Msg("notification queue full, event dropped")
	}
}

// Run consumes the queue until ctx is canceled, delivering each event to all
// transports in turn. Transport failures are logged and never retried.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info().Strs("notifiers", d.registry.Names()).Msg("notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-d.events:
			d.deliver(ctx, event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event *model.AlertEvent) {
	for _, n := range d.registry.All() {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := n.Send(sendCtx, event)
		cancel()

		if err != nil {
			d.logger.Error().Err(err).
				Str("notifier", n.Name()).
				Str("event_id", event.ID.String()).
				Str("monitor", event.MonitorName).
				Msg("notification failed")
			continue
		}
		d.logger.Info().
			Str("notifier", n.Name()).
			Str("kind", string(event.Kind)).
			Str("monitor", event.MonitorName).
			Msg("notification sent")
	}
}

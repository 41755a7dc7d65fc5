package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"uptime-monitor/internal/config"
)

// Janitor prunes aged metric samples on a fixed schedule so the metrics
// table does not grow without bound. Pruning failures are logged and retried
// on the next sweep; they never affect the monitoring pipeline.
type Janitor struct {
	store    *Store
	maxAge   time.Duration
	interval time.Duration
	logger   zerolog.Logger
}

// NewJanitor creates a janitor from the retention configuration.
func NewJanitor(store *Store, cfg *config.RetentionConfig, logger zerolog.Logger) *Janitor {
	return &Janitor{
		store:    store,
		maxAge:   cfg.MaxAge,
		interval: cfg.SweepInterval,
		logger:   logger.With().Str("component", "janitor").Logger(),
	}
}

// Run sweeps once at startup and then on every interval tick until the
// context is canceled.
func (j *Janitor) Run(ctx context.Context) error {
	j.logger.Info().
		Dur("max_age", j.maxAge).
		Dur("sweep_interval", j.interval).
		Msg("retention janitor started")

	j.Sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("retention janitor stopped")
			return ctx.Err()
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep deletes every sample older than the retention window.
func (j *Janitor) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.maxAge)

	deleted, err := j.store.PruneSamples(ctx, cutoff)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to prune metric samples")
		return
	}
	if deleted > 0 {
		j.logger.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("aged metric samples pruned")
	}
}

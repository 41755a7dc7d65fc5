// Package probe executes health checks against monitor targets.
//
// A prober never returns an error past its boundary: every outcome, including
// timeouts and connection failures, is folded into the returned sample so the
// scheduler can treat probe results as data.
package probe

import (
	"context"

	"github.com/rs/zerolog"

	"uptime-monitor/internal/model"
)

// Prober runs a single check against a target and reports the outcome.
type Prober interface {
	Run(ctx context.Context, target *model.MonitorTarget) *model.MetricSample
}

// Router dispatches a target to the prober matching its kind.
type Router struct {
	http   Prober
	system Prober
}

// NewRouter creates a router covering all supported target kinds.
func NewRouter(logger zerolog.Logger) *Router {
	return &Router{
		http:   NewHTTPProber(logger),
		system: NewSystemProber(logger),
	}
}

// Run executes the check with the prober for the target's kind.
func (r *Router) Run(ctx context.Context, target *model.MonitorTarget) *model.MetricSample {
	if target.Kind == model.KindSystem {
		return r.system.Run(ctx, target)
	}
	return r.http.Run(ctx, target)
}

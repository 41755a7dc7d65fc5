package engine

import (
	"sync"

	"uptime-monitor/internal/model"
)

// Registry holds the current monitor definitions the scheduler works from.
// Targets are stored as immutable snapshots: every read hands out a clone and
// every update replaces the whole value, so a half-applied edit can never be
// observed.
type Registry struct {
	mu      sync.RWMutex
	targets map[int64]*model.MonitorTarget
	changed chan struct{} // coalesced change signal for the scheduler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[int64]*model.MonitorTarget),
		changed: make(chan struct{}, 1),
	}
}

// Upsert validates and installs a target definition. On validation failure the
// previous definition, if any, stays in effect and the error carries the
// per-field details.
func (r *Registry) Upsert(target *model.MonitorTarget) error {
	if err := target.Validate(); err != nil {
		return err
	}

	clone := target.Clone()
	r.mu.Lock()
	r.targets[clone.ID] = clone
	r.mu.Unlock()

	r.notify()
	return nil
}

// Remove excises a target. Returns false when the id was not registered.
func (r *Registry) Remove(id int64) bool {
	r.mu.Lock()
	_, ok := r.targets[id]
	delete(r.targets, id)
	r.mu.Unlock()

	if ok {
		r.notify()
	}
	return ok
}

// Get returns a clone of the target with the given id.
func (r *Registry) Get(id int64) (*model.MonitorTarget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target, ok := r.targets[id]
	if !ok {
		return nil, false
	}
	return target.Clone(), true
}

// Has reports whether the id is currently registered. The pipeline uses this
// as the tombstone check: results for ids no longer present are discarded.
func (r *Registry) Has(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.targets[id]
	return ok
}

// Snapshot returns clones of all registered targets.
func (r *Registry) Snapshot() []*model.MonitorTarget {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.MonitorTarget, 0, len(r.targets))
	for _, target := range r.targets {
		out = append(out, target.Clone())
	}
	return out
}

// Replace reconciles the registry against a full list, typically loaded from
// the store: everything in the list is installed, everything absent is
// removed. Returns the ids that were removed so the caller can drop their
// scheduling and alert state. Entries carry store-validated definitions, so
// no re-validation happens here.
func (r *Registry) Replace(targets []*model.MonitorTarget) []int64 {
	next := make(map[int64]*model.MonitorTarget, len(targets))
	for _, target := range targets {
		next[target.ID] = target.Clone()
	}

	r.mu.Lock()
	var removed []int64
	for id := range r.targets {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
		}
	}
	r.targets = next
	r.mu.Unlock()

	r.notify()
	return removed
}

// Changes exposes the coalesced change signal.
func (r *Registry) Changes() <-chan struct{} {
	return r.changed
}

// notify wakes the scheduler without ever blocking the caller.
func (r *Registry) notify() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

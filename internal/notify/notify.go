// Package notify delivers alert events to the configured notification
// transports. It defines the Notifier interface, a registry of enabled
// transports, and the dispatcher that fans events out to them.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"uptime-monitor/internal/model"
)

// Notifier sends one alert event over a single transport.
type Notifier interface {
	// Name identifies the transport in logs and registry lookups.
	Name() string
	// Send delivers the event. The dispatcher bounds ctx with a send timeout.
	Send(ctx context.Context, event *model.AlertEvent) error
}

// Registry manages the enabled notification transports.
type Registry struct {
	notifiers map[string]Notifier
}

// NewRegistry creates an empty transport registry.
func NewRegistry() *Registry {
	return &Registry{notifiers: make(map[string]Notifier)}
}

// Register adds a transport under its Name.
func (r *Registry) Register(n Notifier) {
	r.notifiers[strings.ToLower(n.Name())] = n
}

// Get returns a transport by name. Names are case-insensitive.
func (r *Registry) Get(name string) (Notifier, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))

	n, ok := r.notifiers[normalized]
	if !ok {
		supported := r.Names()
		return nil, fmt.Errorf("unknown notifier %q, registered notifiers: %s",
			name, strings.Join(supported, ", "))
	}
	return n, nil
}

// Has checks whether a transport is registered. Names are case-insensitive.
func (r *Registry) Has(name string) bool {
	_, ok := r.notifiers[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names returns the registered transport names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.notifiers))
	for name := range r.notifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered transports ordered by name.
func (r *Registry) All() []Notifier {
	all := make([]Notifier, 0, len(r.notifiers))
	for _, name := range r.Names() {
		all = append(all, r.notifiers[name])
	}
	return all
}

// alertLabel maps an event kind to the alert type wording used in
// notification texts.
func alertLabel(kind model.EventKind) string {
	if kind == model.EventClose {
		return "up"
	}
	return "down"
}

// alertColor maps an event kind to the accent color used by the richer
// transports.
func alertColor(kind model.EventKind) string {
	if kind == model.EventOpen {
		return "#d32f2f"
	}
	return "#ffa000"
}

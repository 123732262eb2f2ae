package widget

import (
	"context"
	"sync"
	"time"

	"pincheck/pkg/domain"
	dErrors "pincheck/pkg/domain-errors"
)

// ActiveGauge reports how many widget instances are live.
type ActiveGauge interface {
	SetWidgetsActive(n int)
}

// EvictionCounter counts widgets dropped to stay within capacity.
type EvictionCounter interface {
	AddWidgetsEvicted(n int)
}

// Registry keeps live widget instances in memory, keyed by WidgetID.
// Instances are interaction state only; nothing survives a restart.
type Registry struct {
	lookuper Lookuper
	opts     []Option
	gauge    ActiveGauge
	capacity int

	mu      sync.RWMutex
	widgets map[domain.WidgetID]*Widget
}

// NewRegistry builds widgets with lookuper and opts on every Create.
func NewRegistry(lookuper Lookuper, gauge ActiveGauge, opts ...Option) *Registry {
	return &Registry{
		lookuper: lookuper,
		opts:     opts,
		gauge:    gauge,
		widgets:  make(map[domain.WidgetID]*Widget),
	}
}

// SetCapacity bounds the number of live widgets. Zero or less means no bound.
// Call it before the registry is shared.
func (r *Registry) SetCapacity(n int) {
	r.capacity = n
}

// Create starts a fresh widget in StateIdle. At capacity the least recently
// touched widget is dropped first, preferring widgets with no lookup in flight.
func (r *Registry) Create(_ context.Context) *Widget {
	w := New(domain.NewWidgetID(), r.lookuper, r.opts...)

	r.mu.Lock()
	evicted := 0
	for r.capacity > 0 && len(r.widgets) >= r.capacity {
		delete(r.widgets, r.oldestLocked())
		evicted++
	}
	r.widgets[w.ID()] = w
	n := len(r.widgets)
	r.mu.Unlock()

	if evicted > 0 {
		if c, ok := r.gauge.(EvictionCounter); ok {
			c.AddWidgetsEvicted(evicted)
		}
	}
	r.report(n)
	return w
}

// oldestLocked picks the eviction victim. The map must be non-empty.
func (r *Registry) oldestLocked() domain.WidgetID {
	var (
		victim     domain.WidgetID
		victimAt   time.Time
		victimBusy = true
		found      bool
	)
	for id, w := range r.widgets {
		busy := w.Busy()
		at := w.LastTouched()
		switch {
		case !found,
			victimBusy && !busy,
			victimBusy == busy && at.Before(victimAt):
			victim, victimAt, victimBusy, found = id, at, busy, true
		}
	}
	return victim
}

func (r *Registry) Get(_ context.Context, id domain.WidgetID) (*Widget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.widgets[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "widget not found")
	}
	return w, nil
}

// Len returns the number of live widgets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.widgets)
}

// EvictIdle removes widgets untouched for longer than ttl. Widgets with a
// lookup in flight are kept regardless of age.
func (r *Registry) EvictIdle(_ context.Context, now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	evicted := 0
	for id, w := range r.widgets {
		if w.Busy() {
			continue
		}
		if now.Sub(w.LastTouched()) > ttl {
			delete(r.widgets, id)
			evicted++
		}
	}
	n := len(r.widgets)
	r.mu.Unlock()

	r.report(n)
	return evicted
}

func (r *Registry) report(n int) {
	if r.gauge != nil {
		r.gauge.SetWidgetsActive(n)
	}
}

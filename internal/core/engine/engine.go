package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/geofence"
)

// Listener is notified with every newly published state.
type Listener func(s *State)

// Config controls the log bound, the pruning window and the clock.
type Config struct {
	Capacity int
	Window   time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Engine owns the session state. Writers are serialized; readers take a
// Snapshot, which is never modified after it is published.
type Engine struct {
	mu        sync.Mutex
	state     atomic.Pointer[State]
	listeners []Listener
	now       func() time.Time
	log       zerolog.Logger
}

// New creates an engine with an empty log and no reference data.
func New(cfg Config, log zerolog.Logger) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	e := &Engine{now: clock, log: log}
	e.state.Store(NewState(cfg.Capacity, cfg.Window))
	return e
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() *State {
	return e.state.Load()
}

// Subscribe registers a listener called after each published transition,
// in publish order. Listeners run on the writer's goroutine.
func (e *Engine) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// publish must be called with mu held.
func (e *Engine) publish(prev, next *State) {
	if next == prev {
		return
	}
	e.state.Store(next)
	for _, l := range e.listeners {
		l(next)
	}
}

// Ingest classifies and logs a batch, then recomputes projections once.
func (e *Engine) Ingest(batch []domain.TrackedEvent) IngestReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.state.Load()
	next, report := Ingest(prev, batch, e.now())
	e.publish(prev, next)

	e.log.Debug().
		Int("received", report.Received).
		Int("admitted", report.Admitted).
		Int("malformed", report.Malformed).
		Int("duplicates", report.Duplicates).
		Int("evicted", report.Evicted).
		Int("log_size", next.Len()).
		Msg("batch ingested")
	return report
}

// PruneOldEvents removes events older than the window ending at now.
func (e *Engine) PruneOldEvents(now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.state.Load()
	next, removed := PruneOldEvents(prev, now.UnixMilli())
	e.publish(prev, next)

	if removed > 0 {
		e.log.Debug().Int("removed", removed).Int("log_size", next.Len()).Msg("old events pruned")
	}
	return removed
}

// SetReference replaces locations, legs and the geofence index, and
// recomputes projections. Zones in ref are informational; idx is what the
// classifier uses.
func (e *Engine) SetReference(ref domain.ReferenceData, idx *geofence.Index) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.state.Load()
	e.publish(prev, WithReference(prev, ref.Locations, ref.Legs, idx))

	e.log.Info().
		Int("locations", len(ref.Locations)).
		Int("legs", len(ref.Legs)).
		Int("zones", idx.Len()).
		Msg("reference data applied")
}

// UpsertShipments merges shipment overrides and recomputes projections.
func (e *Engine) UpsertShipments(rows []domain.ShipmentOverride) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.state.Load()
	e.publish(prev, WithOverrides(prev, rows))
}

// Package engine holds the event-state core of the dashboard: the bounded
// event log, per-entity zone memory and the shipment projections derived from
// them.
//
// A State is an immutable value. Transitions (Ingest, PruneOldEvents,
// WithReference, WithOverrides) are pure functions returning a new State with
// projections fully recomputed; Engine is the only place a State is replaced.
package engine

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/geofence"
)

// DefaultCapacity is the reference event log bound.
const DefaultCapacity = 1000

// DefaultWindow is the rolling window used by PruneOldEvents.
const DefaultWindow = 24 * time.Hour

// State is a complete, read-only snapshot of the engine.
type State struct {
	// Version increases with every transition that changes the state.
	Version uint64

	Capacity int
	Window   time.Duration

	Index     *geofence.Index
	Locations []domain.Location
	Legs      []domain.Leg
	Overrides map[string]domain.ShipmentOverride

	events   []domain.AnnotatedEvent
	ids      map[string]struct{}
	lastZone map[string]string

	projections map[string]domain.ShipmentProjection
}

// NewState returns an empty state. Non-positive arguments select the defaults.
func NewState(capacity int, window time.Duration) *State {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &State{
		Capacity:    capacity,
		Window:      window,
		Overrides:   map[string]domain.ShipmentOverride{},
		ids:         map[string]struct{}{},
		lastZone:    map[string]string{},
		projections: map[string]domain.ShipmentProjection{},
	}
}

// clone copies the mutable containers so a transition never touches the
// receiver. Reference slices are shared; they are replaced, never mutated.
func (s *State) clone() *State {
	next := *s
	next.events = slices.Clone(s.events)
	next.ids = maps.Clone(s.ids)
	next.lastZone = maps.Clone(s.lastZone)
	next.Overrides = maps.Clone(s.Overrides)
	return &next
}

// seal recomputes projections and bumps the version.
func (s *State) seal() *State {
	s.projections = DeriveProjections(s.events, s.Locations, s.Legs, s.Overrides)
	s.Version++
	return s
}

// Len is the number of logged events.
func (s *State) Len() int { return len(s.events) }

// Has reports whether an event id is in the log.
func (s *State) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Events returns the log in arrival order. The slice is a copy.
func (s *State) Events() []domain.AnnotatedEvent {
	return slices.Clone(s.events)
}

// LastZone returns the remembered zone for a tracking key, "" meaning none.
func (s *State) LastZone(key string) (string, bool) {
	z, ok := s.lastZone[key]
	return z, ok
}

// Projection returns the projection of a shipment.
func (s *State) Projection(shipmentNo string) (domain.ShipmentProjection, bool) {
	p, ok := s.projections[shipmentNo]
	return p, ok
}

// ProjectionCount is the number of shipments with a projection.
func (s *State) ProjectionCount() int { return len(s.projections) }

// Projections returns every projection sorted by shipment number.
func (s *State) Projections() []domain.ShipmentProjection {
	out := make([]domain.ShipmentProjection, 0, len(s.projections))
	for _, p := range s.projections {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShipmentNo < out[j].ShipmentNo })
	return out
}

// EventsCountByLocation counts logged events at or after sinceMS whose
// metadata names the location.
func (s *State) EventsCountByLocation(locationID string, sinceMS int64) int {
	n := 0
	for _, e := range s.events {
		if e.TimestampMS < sinceMS {
			continue
		}
		if e.MetaString("location_id") == locationID {
			n++
		}
	}
	return n
}

// WithReference replaces reference data and the geofence index wholesale.
func WithReference(s *State, locations []domain.Location, legs []domain.Leg, idx *geofence.Index) *State {
	next := s.clone()
	next.Locations = locations
	next.Legs = legs
	next.Index = idx
	return next.seal()
}

// WithOverrides merges shipment override rows by shipment number. Rows
// without a shipment number are ignored.
func WithOverrides(s *State, rows []domain.ShipmentOverride) *State {
	next := s.clone()
	for _, r := range rows {
		if r.ShipmentNo == "" {
			continue
		}
		prev := next.Overrides[r.ShipmentNo]
		if r.SpeedKPH != nil {
			prev.SpeedKPH = r.SpeedKPH
		}
		prev.ShipmentNo = r.ShipmentNo
		next.Overrides[r.ShipmentNo] = prev
	}
	return next.seal()
}

package overlay

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

const defaultMemoSize = 64

type heatKey struct {
	version uint64
	filter  HeatFilter
}

type etaKey struct {
	version uint64
	nowMS   int64
}

// Aggregator memoizes overlay results per engine state version, so repeated
// render ticks over an unchanged log do not recompute. Returned slices are
// shared between callers and must be treated as read-only.
type Aggregator struct {
	heat *lru.Cache[heatKey, []HeatPoint]
	eta  *lru.Cache[etaKey, []EtaWedge]
}

// NewAggregator creates an Aggregator holding up to size entries per overlay.
func NewAggregator(size int) (*Aggregator, error) {
	if size <= 0 {
		size = defaultMemoSize
	}
	heat, err := lru.New[heatKey, []HeatPoint](size)
	if err != nil {
		return nil, err
	}
	eta, err := lru.New[etaKey, []EtaWedge](size)
	if err != nil {
		return nil, err
	}
	return &Aggregator{heat: heat, eta: eta}, nil
}

// HeatPoints returns BuildHeatPoints(events(), f), computed once per
// (version, f). events is only called on a miss.
func (a *Aggregator) HeatPoints(version uint64, f HeatFilter, events func() []domain.AnnotatedEvent) []HeatPoint {
	key := heatKey{version: version, filter: f}
	if pts, ok := a.heat.Get(key); ok {
		return pts
	}
	pts := BuildHeatPoints(events(), f)
	a.heat.Add(key, pts)
	return pts
}

// EtaWedges returns ComputeEtaWedges(shipments(), nowMS), computed once per
// (version, nowMS). shipments is only called on a miss.
func (a *Aggregator) EtaWedges(version uint64, nowMS int64, shipments func() []domain.ShipmentProjection) []EtaWedge {
	key := etaKey{version: version, nowMS: nowMS}
	if w, ok := a.eta.Get(key); ok {
		return w
	}
	w := ComputeEtaWedges(shipments(), nowMS)
	a.eta.Add(key, w)
	return w
}

// Purge drops every memoized result.
func (a *Aggregator) Purge() {
	a.heat.Purge()
	a.eta.Purge()
}

// Package geofence answers "which zone contains this point" over a fixed
// collection of polygonal zones.
//
// Every zone gets a bounding box at build time so most points are rejected
// without an exact containment test. Overlapping zones resolve to the first
// zone in input order.
package geofence

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

type entry struct {
	zone  domain.GeofenceZone
	bound orb.Bound
	// hasBound is false when the zone has no finite vertex at all.
	hasBound bool
}

// Index is an immutable, ordered collection of zones with precomputed bounds.
type Index struct {
	entries []entry
}

// Build indexes zones in the given order. It fails only when a zone has no id
// or its geometry is not a Polygon or MultiPolygon. Non-finite vertices are
// skipped while computing bounds.
func Build(zones []domain.GeofenceZone) (*Index, error) {
	idx := &Index{entries: make([]entry, 0, len(zones))}
	for i, z := range zones {
		if z.ID == "" {
			return nil, fmt.Errorf("build geofence index: zone %d: %w: missing id", i, domain.ErrMalformedGeofence)
		}
		switch z.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, fmt.Errorf("build geofence index: zone %q: %w: unsupported geometry %T", z.ID, domain.ErrMalformedGeofence, z.Geometry)
		}
		b, ok := finiteBound(z.Geometry)
		idx.entries = append(idx.entries, entry{zone: z, bound: b, hasBound: ok})
	}
	return idx, nil
}

// Len returns the number of indexed zones.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Zones returns the indexed zones in input order.
func (idx *Index) Zones() []domain.GeofenceZone {
	if idx == nil {
		return nil
	}
	out := make([]domain.GeofenceZone, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = e.zone
	}
	return out
}

// Locate returns the first zone, in input order, that contains p. A nil or
// empty index never matches.
func (idx *Index) Locate(p orb.Point) (domain.ZoneRef, bool) {
	if idx == nil {
		return domain.ZoneRef{}, false
	}
	for _, e := range idx.entries {
		if !e.hasBound || !e.bound.Contains(p) {
			continue
		}
		if contains(e.zone.Geometry, p) {
			return domain.ZoneRef{ID: e.zone.ID, Kind: e.zone.Kind}, true
		}
	}
	return domain.ZoneRef{}, false
}

func contains(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	}
	return false
}

// finiteBound merges the bounds of every ring of every polygon part,
// ignoring vertices with NaN or infinite coordinates.
func finiteBound(g orb.Geometry) (orb.Bound, bool) {
	var polys []orb.Polygon
	switch geom := g.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{geom}
	case orb.MultiPolygon:
		polys = geom
	}

	var b orb.Bound
	found := false
	for _, poly := range polys {
		for _, ring := range poly {
			for _, pt := range ring {
				if !finite(pt[0]) || !finite(pt[1]) {
					continue
				}
				if !found {
					b = orb.Bound{Min: pt, Max: pt}
					found = true
					continue
				}
				b = b.Extend(pt)
			}
		}
	}
	return b, found
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

package geofence

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func TestLocate_FirstZoneWinsOnOverlap(t *testing.T) {
	idx, err := Build([]domain.GeofenceZone{
		{ID: "YARD-A", Kind: domain.ZoneMOSB, Geometry: square(54.0, 24.0, 54.2, 24.2)},
		{ID: "YARD-B", Kind: domain.ZoneSite, Geometry: square(54.1, 24.1, 54.3, 24.3)},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	ref, ok := idx.Locate(orb.Point{54.15, 24.15})
	if !ok {
		t.Fatal("expected a zone")
	}
	if ref.ID != "YARD-A" || ref.Kind != domain.ZoneMOSB {
		t.Errorf("expected YARD-A/MOSB, got %+v", ref)
	}

	ref, ok = idx.Locate(orb.Point{54.25, 24.25})
	if !ok || ref.ID != "YARD-B" {
		t.Errorf("expected YARD-B, got %+v ok=%v", ref, ok)
	}
}

func TestLocate_Outside(t *testing.T) {
	idx, err := Build([]domain.GeofenceZone{
		{ID: "PORT-1", Kind: domain.ZonePort, Geometry: square(0, 0, 1, 1)},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := idx.Locate(orb.Point{2, 2}); ok {
		t.Error("expected no zone outside the polygon")
	}
}

func TestLocate_NilAndEmptyIndex(t *testing.T) {
	var idx *Index
	if _, ok := idx.Locate(orb.Point{0, 0}); ok {
		t.Error("nil index must not match")
	}

	empty, err := Build(nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := empty.Locate(orb.Point{0, 0}); ok {
		t.Error("empty index must not match")
	}
	if empty.Len() != 0 {
		t.Errorf("expected 0 zones, got %d", empty.Len())
	}
}

func TestLocate_BoundRejectsBeforeExactTest(t *testing.T) {
	// L-shaped polygon: the bound contains (0.75, 0.75) but the polygon does not.
	l := orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 0.5}, {0.5, 0.5}, {0.5, 1}, {0, 1}, {0, 0}}}
	idx, err := Build([]domain.GeofenceZone{{ID: "WH-L", Kind: domain.ZoneWH, Geometry: l}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := idx.Locate(orb.Point{0.75, 0.75}); ok {
		t.Error("point in the notch must not match")
	}
	if _, ok := idx.Locate(orb.Point{0.25, 0.75}); !ok {
		t.Error("point in the arm must match")
	}
}

func TestLocate_MultiPolygon(t *testing.T) {
	mp := orb.MultiPolygon{square(0, 0, 1, 1), square(10, 10, 11, 11)}
	idx, err := Build([]domain.GeofenceZone{{ID: "BERTH-X", Kind: domain.ZoneBerth, Geometry: mp}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ref, ok := idx.Locate(orb.Point{10.5, 10.5}); !ok || ref.ID != "BERTH-X" {
		t.Errorf("expected second part to match, got %+v ok=%v", ref, ok)
	}
	if _, ok := idx.Locate(orb.Point{5, 5}); ok {
		t.Error("gap between parts must not match")
	}
}

func TestBuild_SkipsNonFiniteVertices(t *testing.T) {
	poly := orb.Polygon{orb.Ring{
		{0, 0}, {2, 0}, {math.NaN(), 5}, {2, 2}, {0, 2}, {0, 0},
	}}
	b, ok := finiteBound(poly)
	if !ok {
		t.Fatal("expected a bound from the finite vertices")
	}
	if b.Min != (orb.Point{0, 0}) || b.Max != (orb.Point{2, 2}) {
		t.Errorf("unexpected bound %+v", b)
	}

	if _, err := Build([]domain.GeofenceZone{{ID: "Z", Kind: domain.ZoneSite, Geometry: poly}}); err != nil {
		t.Errorf("non-finite vertex must not fail the build: %v", err)
	}
}

func TestBuild_AllNonFiniteNeverMatches(t *testing.T) {
	poly := orb.Polygon{orb.Ring{{math.Inf(1), 0}, {math.NaN(), 1}, {math.Inf(-1), 2}}}
	idx, err := Build([]domain.GeofenceZone{{ID: "BROKEN", Geometry: poly}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := idx.Locate(orb.Point{0, 1}); ok {
		t.Error("zone without finite vertices must never match")
	}
}

func TestBuild_RejectsMalformedZones(t *testing.T) {
	cases := []struct {
		name string
		zone domain.GeofenceZone
	}{
		{"missing id", domain.GeofenceZone{Geometry: square(0, 0, 1, 1)}},
		{"nil geometry", domain.GeofenceZone{ID: "Z"}},
		{"point geometry", domain.GeofenceZone{ID: "Z", Geometry: orb.Point{1, 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build([]domain.GeofenceZone{tc.zone})
			if !errors.Is(err, domain.ErrMalformedGeofence) {
				t.Errorf("expected ErrMalformedGeofence, got %v", err)
			}
		})
	}
}

func TestFeatureCollectionRoundTrip(t *testing.T) {
	raw := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"id": "MOSB_ESNAAD", "kind": "MOSB", "name": "Esnaad"},
			 "geometry": {"type": "Polygon", "coordinates": [[[54.4,24.3],[54.5,24.3],[54.5,24.4],[54.4,24.4],[54.4,24.3]]]}}
		]
	}`)
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	zones, err := FromFeatureCollection(fc)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(zones) != 1 || zones[0].ID != "MOSB_ESNAAD" || zones[0].Kind != domain.ZoneMOSB || zones[0].Name != "Esnaad" {
		t.Fatalf("unexpected zones: %+v", zones)
	}

	back := ToFeatureCollection(zones)
	if len(back.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(back.Features))
	}
	if back.Features[0].Properties.MustString("id", "") != "MOSB_ESNAAD" {
		t.Errorf("id property lost: %+v", back.Features[0].Properties)
	}
}

package overlay

import (
	"math"
	"reflect"
	"testing"

	"github.com/paulmach/orb"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

func projection(no string, pos *orb.Point, to orb.Point, speed float64, status domain.ShipmentStatus) domain.ShipmentProjection {
	return domain.ShipmentProjection{
		ShipmentNo:      no,
		Status:          status,
		CurrentPosition: pos,
		SpeedKPH:        speed,
		Legs:            []domain.ShipmentLeg{{LegID: no + "-L1", To: domain.LegEndpoint{Position: to}}},
	}
}

func haversineM(a, b orb.Point) float64 {
	phi1, phi2 := deg2rad(a.Lat()), deg2rad(b.Lat())
	dPhi := phi2 - phi1
	dLambda := deg2rad(b.Lon() - a.Lon())
	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadiusM * math.Asin(math.Sqrt(h))
}

func TestComputeEtaWedges_Deterministic(t *testing.T) {
	pos := orb.Point{54.0, 24.0}
	shipments := []domain.ShipmentProjection{
		projection("SHPT-1", &pos, orb.Point{54.1, 24.1}, 40, domain.StatusInTransit),
	}

	first := ComputeEtaWedges(shipments, 1_700_000_000_000)
	second := ComputeEtaWedges(shipments, 1_700_000_000_000)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("wedges differ between identical invocations")
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 wedge, got %d", len(first))
	}

	w := first[0]
	if w.UncertaintyM < 200 || w.UncertaintyM > 15000 {
		t.Errorf("radius %v outside [200,15000]", w.UncertaintyM)
	}
	if math.Abs(w.UncertaintyM-10000) > 1e-6 {
		t.Errorf("expected 40 km/h over 15 min = 10000 m, got %v", w.UncertaintyM)
	}
	if w.BearingDeg <= 0 || w.BearingDeg >= 90 {
		t.Errorf("expected north-east bearing, got %v", w.BearingDeg)
	}
	if w.ElevationM != 450 {
		t.Errorf("expected elevation 450, got %v", w.ElevationM)
	}
	if w.ID != "eta-SHPT-1" {
		t.Errorf("unexpected id %q", w.ID)
	}

	if len(w.Polygon) != wedgeSteps+2 {
		t.Fatalf("expected %d vertices, got %d", wedgeSteps+2, len(w.Polygon))
	}
	if w.Polygon[0] != pos || w.Polygon[len(w.Polygon)-1] != pos {
		t.Error("wedge must start and end at the current position")
	}
	for i, v := range w.Polygon[1 : len(w.Polygon)-1] {
		d := haversineM(pos, v)
		if math.Abs(d-w.UncertaintyM) > 1e-3 {
			t.Errorf("vertex %d at %v m, want %v m", i, d, w.UncertaintyM)
		}
	}
	first1 := InitialBearing(pos, w.Polygon[1])
	if math.Abs(first1-(w.BearingDeg-wedgeSpreadDeg)) > 1e-6 {
		t.Errorf("first arc vertex bearing %v, want %v", first1, w.BearingDeg-wedgeSpreadDeg)
	}
}

func TestComputeEtaWedges_RadiusAndElevationClamp(t *testing.T) {
	pos := orb.Point{54.0, 24.0}
	to := orb.Point{55.0, 25.0}

	fast := ComputeEtaWedges([]domain.ShipmentProjection{projection("AIR", &pos, to, 800, domain.StatusDelayed)}, 0)
	if fast[0].UncertaintyM != 15000 {
		t.Errorf("expected radius capped at 15000, got %v", fast[0].UncertaintyM)
	}
	if fast[0].ElevationM != 900 {
		t.Errorf("expected DELAYED elevation 900, got %v", fast[0].ElevationM)
	}

	still := ComputeEtaWedges([]domain.ShipmentProjection{projection("STILL", &pos, to, 0, domain.StatusArrived)}, 0)
	if still[0].UncertaintyM != 200 {
		t.Errorf("expected radius floored at 200, got %v", still[0].UncertaintyM)
	}
	if still[0].ElevationM != 300 {
		t.Errorf("expected elevation 300, got %v", still[0].ElevationM)
	}
}

func TestComputeEtaWedges_SkipsIncompleteShipments(t *testing.T) {
	pos := orb.Point{54.0, 24.0}
	noLegs := domain.ShipmentProjection{ShipmentNo: "NO-LEGS", CurrentPosition: &pos, SpeedKPH: 60}
	noPos := projection("NO-POS", nil, orb.Point{54.1, 24.1}, 60, domain.StatusInTransit)

	if got := ComputeEtaWedges([]domain.ShipmentProjection{noLegs, noPos}, 0); len(got) != 0 {
		t.Errorf("expected no wedges, got %d", len(got))
	}
}

func TestInitialBearing_Normalized(t *testing.T) {
	origin := orb.Point{54.0, 24.0}
	cases := []struct {
		to   orb.Point
		want float64
	}{
		{orb.Point{54.0, 25.0}, 0},
		{orb.Point{54.0, 23.0}, 180},
	}
	for _, tc := range cases {
		if got := InitialBearing(origin, tc.to); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("bearing to %v = %v, want %v", tc.to, got, tc.want)
		}
	}
	west := InitialBearing(origin, orb.Point{53.0, 24.0})
	if west < 180 || west >= 360 {
		t.Errorf("westward bearing %v not in [180,360)", west)
	}
}

func TestDestination_WrapsLongitude(t *testing.T) {
	p := Destination(orb.Point{179.99, 0}, 90, 10000)
	if p.Lon() > 180 || p.Lon() < -180 {
		t.Errorf("longitude %v not normalized", p.Lon())
	}
	if p.Lon() > 0 {
		t.Errorf("expected wrap to negative longitude, got %v", p.Lon())
	}
}

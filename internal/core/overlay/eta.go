package overlay

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

// EarthRadiusM is the spherical earth radius used for wedge geometry.
const EarthRadiusM = 6371000.0

const (
	wedgeSpreadDeg = 20.0
	wedgeSteps     = 9

	minRadiusM    = 200.0
	maxRadiusM    = 15000.0
	minElevationM = 200.0
	maxElevationM = 2500.0
)

// EtaWedge is a fan-shaped polygon around the heading of a shipment whose
// radius reflects positional uncertainty.
type EtaWedge struct {
	ID           string    `json:"id"`
	ShipmentNo   string    `json:"shpt_no"`
	Position     orb.Point `json:"position"`
	BearingDeg   float64   `json:"bearing_deg"`
	UncertaintyM float64   `json:"uncertainty_m"`
	Polygon      orb.Ring  `json:"polygon"`
	ElevationM   float64   `json:"elevation_m"`
}

// uncertaintyMinutes maps shipment status to the time horizon of the wedge.
func uncertaintyMinutes(s domain.ShipmentStatus) float64 {
	switch s {
	case domain.StatusDelayed:
		return 30
	case domain.StatusInTransit, "":
		return 15
	default:
		return 10
	}
}

// ComputeEtaWedges builds one wedge per shipment that has a current position
// and at least one leg, heading to the first leg's destination. The result is
// a pure function of its inputs; nowMS is accepted so callers can key caches
// on render time.
func ComputeEtaWedges(shipments []domain.ShipmentProjection, nowMS int64) []EtaWedge {
	out := make([]EtaWedge, 0, len(shipments))
	for _, s := range shipments {
		if s.CurrentPosition == nil || len(s.Legs) == 0 {
			continue
		}
		pos := *s.CurrentPosition
		target := s.Legs[0].To.Position
		brg := InitialBearing(pos, target)

		speed := s.SpeedKPH
		if math.IsNaN(speed) || math.IsInf(speed, 0) {
			speed = domain.DefaultSpeedKPH
		}
		speedMPS := speed * 1000 / 3600

		minutes := uncertaintyMinutes(s.Status)
		radius := clamp(speedMPS*minutes*60, minRadiusM, maxRadiusM)

		out = append(out, EtaWedge{
			ID:           "eta-" + s.ShipmentNo,
			ShipmentNo:   s.ShipmentNo,
			Position:     pos,
			BearingDeg:   brg,
			UncertaintyM: radius,
			Polygon:      WedgePolygon(pos, brg, radius, wedgeSpreadDeg, wedgeSteps),
			ElevationM:   clamp(minutes*30, minElevationM, maxElevationM),
		})
	}
	return out
}

// InitialBearing is the great-circle initial bearing from one point to
// another, normalized to [0,360).
func InitialBearing(from, to orb.Point) float64 {
	b := math.Mod(geo.Bearing(from, to)+360, 360)
	if b >= 360 {
		b -= 360
	}
	return b
}

// Destination returns the point reached by travelling distanceM metres from
// p along the given initial bearing on a sphere of radius EarthRadiusM.
func Destination(p orb.Point, bearingDeg, distanceM float64) orb.Point {
	phi1 := deg2rad(p.Lat())
	lambda1 := deg2rad(p.Lon())
	theta := deg2rad(bearingDeg)
	delta := distanceM / EarthRadiusM

	sinPhi2 := math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta)
	phi2 := math.Asin(sinPhi2)

	y := math.Sin(theta) * math.Sin(delta) * math.Cos(phi1)
	x := math.Cos(delta) - math.Sin(phi1)*math.Sin(phi2)
	lambda2 := lambda1 + math.Atan2(y, x)

	return orb.Point{math.Mod(rad2deg(lambda2)+540, 360) - 180, rad2deg(phi2)}
}

// WedgePolygon sweeps steps vertices across bearing±spreadDeg at radiusM and
// closes the fan back at the origin.
func WedgePolygon(origin orb.Point, bearingDeg, radiusM, spreadDeg float64, steps int) orb.Ring {
	ring := make(orb.Ring, 0, steps+2)
	ring = append(ring, origin)

	start := bearingDeg - spreadDeg
	end := bearingDeg + spreadDeg
	for i := 0; i < steps; i++ {
		t := 0.0
		if steps > 1 {
			t = float64(i) / float64(steps-1)
		}
		ring = append(ring, Destination(origin, start+(end-start)*t, radiusM))
	}
	return append(ring, origin)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

package engine

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

// DeriveProjections folds the log into one projection per shipment. The
// latest event of a shipment is the last admitted one, regardless of its
// timestamp. Leg endpoints missing from locations resolve to [0,0].
func DeriveProjections(
	events []domain.AnnotatedEvent,
	locations []domain.Location,
	legs []domain.Leg,
	overrides map[string]domain.ShipmentOverride,
) map[string]domain.ShipmentProjection {
	latest := make(map[string]domain.AnnotatedEvent)
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.ShipmentNo == "" {
			continue
		}
		if _, ok := latest[e.ShipmentNo]; !ok {
			latest[e.ShipmentNo] = e
		}
	}

	out := make(map[string]domain.ShipmentProjection, len(latest))
	if len(latest) == 0 {
		return out
	}

	locByID := make(map[string]domain.Location, len(locations))
	for _, l := range locations {
		locByID[l.LocationID] = l
	}
	legsByShipment := make(map[string][]domain.Leg)
	for _, l := range legs {
		if _, ok := latest[l.ShipmentNo]; ok {
			legsByShipment[l.ShipmentNo] = append(legsByShipment[l.ShipmentNo], l)
		}
	}

	for no, e := range latest {
		shipmentLegs := make([]domain.ShipmentLeg, 0, len(legsByShipment[no]))
		for _, l := range legsByShipment[no] {
			shipmentLegs = append(shipmentLegs, domain.ShipmentLeg{
				LegID:      l.LegID,
				Mode:       l.Mode,
				From:       endpoint(locByID, l.FromLocationID),
				To:         endpoint(locByID, l.ToLocationID),
				SpeedKPH:   l.Mode.SpeedKPH(),
				PlannedETA: l.PlannedETA,
			})
		}

		speed := domain.DefaultSpeedKPH
		if len(shipmentLegs) > 0 {
			speed = shipmentLegs[0].SpeedKPH
		}
		if o, ok := overrides[no]; ok && o.SpeedKPH != nil {
			speed = *o.SpeedKPH
		}

		status := domain.ShipmentStatus(e.MetaString("status"))
		if status == "" {
			status = domain.StatusInTransit
		}

		pos := e.Point()
		out[no] = domain.ShipmentProjection{
			ShipmentNo:      no,
			Status:          status,
			CurrentPosition: &pos,
			SpeedKPH:        speed,
			Legs:            shipmentLegs,
			UpdatedAt:       time.UnixMilli(e.TimestampMS).UTC(),
		}
	}
	return out
}

func endpoint(locs map[string]domain.Location, id string) domain.LegEndpoint {
	l, ok := locs[id]
	if !ok {
		return domain.LegEndpoint{Position: orb.Point{0, 0}}
	}
	return domain.LegEndpoint{Name: l.Name, Position: l.Point()}
}

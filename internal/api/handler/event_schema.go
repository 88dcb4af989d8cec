package handler

import (
	"github.com/paulmach/orb"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

// trackedEventRequest accepts the feed shape, position as [lon, lat], and
// the flat lat/lon form. position wins when both are sent.
type trackedEventRequest struct {
	ID         string           `json:"id"         validate:"required"`
	Timestamp  domain.EventTime `json:"ts"         swaggertype:"string"`
	Position   *orb.Point       `json:"position"   swaggertype:"array,number"`
	Lat        *float64         `json:"lat"`
	Lon        *float64         `json:"lon"`
	ShipmentNo string           `json:"shpt_no"`
	TrackerID  string           `json:"tracker_id"`
	Status     string           `json:"status"     validate:"omitempty,oneof=PLANNED IN_TRANSIT ARRIVED DELAYED HOLD"`
	LocationID string           `json:"location_id"`
	Meta       map[string]any   `json:"meta"`
}

type eventBatchRequest struct {
	Events []trackedEventRequest `json:"events" validate:"required,min=1,max=5000"`
}

// point resolves the event position. It fails when no position was sent or
// the coordinates are outside WGS84 bounds.
func (r trackedEventRequest) point() (orb.Point, bool) {
	var p orb.Point
	switch {
	case r.Position != nil:
		p = *r.Position
	case r.Lat != nil && r.Lon != nil:
		p = orb.Point{*r.Lon, *r.Lat}
	default:
		return orb.Point{}, false
	}
	if p.Lon() < -180 || p.Lon() > 180 || p.Lat() < -90 || p.Lat() > 90 {
		return orb.Point{}, false
	}
	return p, true
}

type eventQuery struct {
	Since      string `query:"since"`
	EventType  string `query:"event_type" validate:"omitempty,oneof=enter exit move unknown all"`
	ZoneID     string `query:"zone_id"`
	ShipmentNo string `query:"shpt_no"`
	Limit      int    `query:"limit"      validate:"gte=0,lte=10000"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
	Dropped int    `json:"dropped,omitempty"`
}

type eventListResponse struct {
	Events []domain.AnnotatedEvent `json:"events"`
	Count  int                     `json:"count"`
}

package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// ShipmentStatus is the operational status carried by live events.
type ShipmentStatus string

const (
	StatusPlanned   ShipmentStatus = "PLANNED"
	StatusInTransit ShipmentStatus = "IN_TRANSIT"
	StatusArrived   ShipmentStatus = "ARRIVED"
	StatusDelayed   ShipmentStatus = "DELAYED"
	StatusHold      ShipmentStatus = "HOLD"
)

// TransportMode is the mode of a planned leg.
type TransportMode string

const (
	ModeRoad TransportMode = "ROAD"
	ModeSea  TransportMode = "SEA"
	ModeAir  TransportMode = "AIR"
)

// DefaultSpeedKPH is used when a shipment has no legs and no override.
const DefaultSpeedKPH = 40.0

// SpeedKPH returns the default cruising speed for the mode. Unknown modes are
// treated as road transport.
func (m TransportMode) SpeedKPH() float64 {
	switch m {
	case ModeSea:
		return 25
	case ModeAir:
		return 800
	default:
		return 60
	}
}

// Location is a reference site (yard, port, berth...).
type Location struct {
	LocationID string   `json:"location_id" bson:"_id"`
	Type       ZoneKind `json:"type" bson:"type"`
	Name       string   `json:"name" bson:"name"`
	Lat        float64  `json:"lat" bson:"lat"`
	Lon        float64  `json:"lon" bson:"lon"`
}

// Point returns the location as a lon/lat point.
func (l Location) Point() orb.Point {
	return orb.Point{l.Lon, l.Lat}
}

// Leg is a planned movement of a shipment between two locations.
type Leg struct {
	LegID          string        `json:"leg_id" bson:"_id"`
	ShipmentNo     string        `json:"shpt_no" bson:"shpt_no"`
	FromLocationID string        `json:"from_location_id" bson:"from_location_id"`
	ToLocationID   string        `json:"to_location_id" bson:"to_location_id"`
	Mode           TransportMode `json:"mode" bson:"mode"`
	PlannedETD     string        `json:"planned_etd" bson:"planned_etd"`
	PlannedETA     string        `json:"planned_eta" bson:"planned_eta"`
}

// ReferenceData is the read-only data set loaded once per session. A reload
// replaces it wholesale.
type ReferenceData struct {
	Locations []Location
	Legs      []Leg
	Geofences []GeofenceZone
}

// LegEndpoint is a resolved leg origin or destination.
type LegEndpoint struct {
	Name     string    `json:"name,omitempty"`
	Position orb.Point `json:"position"`
}

// ShipmentLeg is a leg with its endpoints resolved against Location records.
type ShipmentLeg struct {
	LegID      string        `json:"leg_id"`
	Mode       TransportMode `json:"mode"`
	From       LegEndpoint   `json:"from"`
	To         LegEndpoint   `json:"to"`
	SpeedKPH   float64       `json:"speed_kph"`
	PlannedETA string        `json:"eta_planned,omitempty"`
}

// ShipmentProjection is the latest-state view of a shipment, derived from the
// event log and reference data.
type ShipmentProjection struct {
	ShipmentNo      string         `json:"shpt_no"`
	Status          ShipmentStatus `json:"status"`
	CurrentPosition *orb.Point     `json:"current_position,omitempty"`
	SpeedKPH        float64        `json:"speed_kph"`
	Legs            []ShipmentLeg  `json:"legs"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ShipmentOverride carries out-of-band shipment attributes pushed by the feed.
type ShipmentOverride struct {
	ShipmentNo string   `json:"shpt_no" validate:"required"`
	SpeedKPH   *float64 `json:"speed_kph,omitempty" validate:"omitempty,gt=0"`
}

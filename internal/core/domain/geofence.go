package domain

import "github.com/paulmach/orb"

// ZoneKind classifies a geofenced area.
type ZoneKind string

const (
	ZoneMOSB  ZoneKind = "MOSB"
	ZoneSite  ZoneKind = "SITE"
	ZoneWH    ZoneKind = "WH"
	ZonePort  ZoneKind = "PORT"
	ZoneBerth ZoneKind = "BERTH"
)

// GeofenceZone is a named polygonal area. Geometry is an orb.Polygon or
// orb.MultiPolygon in lon/lat order.
type GeofenceZone struct {
	ID       string
	Kind     ZoneKind
	Name     string
	Geometry orb.Geometry
}

// ZoneRef identifies the zone that contains a point.
type ZoneRef struct {
	ID   string   `json:"zone_id"`
	Kind ZoneKind `json:"zone_kind"`
}

package geofence

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

// FromFeatureCollection converts a GeoJSON collection whose features carry
// {id, kind, name?} properties into zones, preserving feature order.
func FromFeatureCollection(fc *geojson.FeatureCollection) ([]domain.GeofenceZone, error) {
	if fc == nil {
		return nil, nil
	}
	zones := make([]domain.GeofenceZone, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f == nil {
			return nil, fmt.Errorf("feature %d: %w: null feature", i, domain.ErrMalformedGeofence)
		}
		id := f.Properties.MustString("id", "")
		if id == "" {
			if s, ok := f.ID.(string); ok {
				id = s
			}
		}
		zones = append(zones, domain.GeofenceZone{
			ID:       id,
			Kind:     domain.ZoneKind(f.Properties.MustString("kind", "")),
			Name:     f.Properties.MustString("name", ""),
			Geometry: f.Geometry,
		})
	}
	return zones, nil
}

// ToFeatureCollection renders zones back to GeoJSON for the map layer.
func ToFeatureCollection(zones []domain.GeofenceZone) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		f := geojson.NewFeature(z.Geometry)
		f.Properties["id"] = z.ID
		f.Properties["kind"] = string(z.Kind)
		if z.Name != "" {
			f.Properties["name"] = z.Name
		}
		fc.Append(f)
	}
	return fc
}

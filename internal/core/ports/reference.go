package ports

import (
	"context"

	"github.com/paulmach/orb/geojson"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

// ReferenceSource loads the full reference data set (locations, legs,
// geofences). Both the primary store and the file fallback implement it.
type ReferenceSource interface {
	LoadReference(ctx context.Context) (*domain.ReferenceData, error)
}

// ReferenceCache is a read-through cache in front of the primary source.
// Get reports a miss with (nil, false, nil).
type ReferenceCache interface {
	Get(ctx context.Context) (*domain.ReferenceData, bool, error)
	Set(ctx context.Context, ref *domain.ReferenceData) error
	Invalidate(ctx context.Context) error
}

// ReferenceService loads reference data and hands it to the engine.
type ReferenceService interface {
	// Load applies reference data, preferring cache, then primary, then fallback.
	Load(ctx context.Context) (*ReferenceSummary, error)
	// Reload drops the cached copy and loads again.
	Reload(ctx context.Context) (*ReferenceSummary, error)
	// Geofences returns the applied geofence zones as GeoJSON.
	Geofences() *geojson.FeatureCollection
}

// ReferenceSummary describes an applied reference data set.
type ReferenceSummary struct {
	Source    string `json:"source"`
	Locations int    `json:"locations"`
	Legs      int    `json:"legs"`
	Geofences int    `json:"geofences"`
}

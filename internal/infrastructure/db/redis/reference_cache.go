package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/redis/go-redis/v9"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/geofence"
)

const (
	referenceKey    = "reference:v1"
	defaultCacheTTL = 5 * time.Minute
)

// cachedReference is the JSON document stored under referenceKey.
type cachedReference struct {
	Locations []domain.Location          `json:"locations"`
	Legs      []domain.Leg               `json:"legs"`
	Geofences *geojson.FeatureCollection `json:"geofences"`
}

// ReferenceCache keeps the last reference data set loaded from the primary
// store. Key format: reference:v1
type ReferenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReferenceCache wraps the given Redis client. A non-positive ttl selects
// five minutes.
func NewReferenceCache(client *redis.Client, ttl time.Duration) *ReferenceCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &ReferenceCache{client: client, ttl: ttl}
}

// Get returns the cached data set, or ok=false on a miss.
func (c *ReferenceCache) Get(ctx context.Context) (*domain.ReferenceData, bool, error) {
	raw, err := c.client.Get(ctx, referenceKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reference cache get: %w", err)
	}
	ref, err := decodeReference(raw)
	if err != nil {
		return nil, false, err
	}
	return ref, true, nil
}

// Set stores ref for the configured TTL.
func (c *ReferenceCache) Set(ctx context.Context, ref *domain.ReferenceData) error {
	raw, err := encodeReference(ref)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, referenceKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("reference cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached data set.
func (c *ReferenceCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, referenceKey).Err(); err != nil {
		return fmt.Errorf("reference cache del: %w", err)
	}
	return nil
}

func encodeReference(ref *domain.ReferenceData) ([]byte, error) {
	raw, err := json.Marshal(cachedReference{
		Locations: ref.Locations,
		Legs:      ref.Legs,
		Geofences: geofence.ToFeatureCollection(ref.Geofences),
	})
	if err != nil {
		return nil, fmt.Errorf("reference cache encode: %w", err)
	}
	return raw, nil
}

func decodeReference(raw []byte) (*domain.ReferenceData, error) {
	var doc cachedReference
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("reference cache decode: %w", err)
	}
	zones, err := geofence.FromFeatureCollection(doc.Geofences)
	if err != nil {
		return nil, fmt.Errorf("reference cache decode: %w", err)
	}
	return &domain.ReferenceData{
		Locations: doc.Locations,
		Legs:      doc.Legs,
		Geofences: zones,
	}, nil
}

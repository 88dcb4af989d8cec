package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/engine"
	"github.com/mosb/logistics-dashboard/internal/core/geofence"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
)

const (
	sourceCache    = "cache"
	sourcePrimary  = "primary"
	sourceFallback = "fallback"
)

type referenceService struct {
	primary  ports.ReferenceSource
	cache    ports.ReferenceCache
	fallback ports.ReferenceSource
	engine   *engine.Engine
	log      zerolog.Logger

	mu    sync.RWMutex
	zones []domain.GeofenceZone
}

// NewReferenceService returns a ReferenceService. primary, cache and fallback
// are optional; a nil collaborator is skipped.
func NewReferenceService(
	primary ports.ReferenceSource,
	cache ports.ReferenceCache,
	fallback ports.ReferenceSource,
	eng *engine.Engine,
	log zerolog.Logger,
) ports.ReferenceService {
	return &referenceService{
		primary:  primary,
		cache:    cache,
		fallback: fallback,
		engine:   eng,
		log:      log,
	}
}

// Load tries the cache, then the primary store (filling the cache), then the
// fallback source. The first data set whose geofences index cleanly wins.
func (s *referenceService) Load(ctx context.Context) (*ports.ReferenceSummary, error) {
	var lastErr error

	if s.cache != nil {
		ref, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("reference cache read failed")
		case ok:
			sum, err := s.apply(ref, sourceCache)
			if err == nil {
				return sum, nil
			}
			s.log.Warn().Err(err).Msg("cached reference data rejected")
		}
	}

	if s.primary != nil {
		ref, err := s.primary.LoadReference(ctx)
		if err == nil {
			sum, applyErr := s.apply(ref, sourcePrimary)
			if applyErr == nil {
				s.fill(ctx, ref)
				return sum, nil
			}
			err = applyErr
		}
		s.log.Warn().Err(err).Msg("primary reference load failed")
		lastErr = err
	}

	if s.fallback != nil {
		ref, err := s.fallback.LoadReference(ctx)
		if err == nil {
			sum, applyErr := s.apply(ref, sourceFallback)
			if applyErr == nil {
				return sum, nil
			}
			err = applyErr
		}
		s.log.Warn().Err(err).Msg("fallback reference load failed")
		lastErr = err
	}

	if lastErr == nil {
		return nil, domain.ErrReferenceUnavailable
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrReferenceUnavailable, lastErr)
}

// Reload invalidates the cache before loading.
func (s *referenceService) Reload(ctx context.Context) (*ports.ReferenceSummary, error) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("reference cache invalidation failed")
		}
	}
	return s.Load(ctx)
}

func (s *referenceService) Geofences() *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return geofence.ToFeatureCollection(s.zones)
}

func (s *referenceService) apply(ref *domain.ReferenceData, source string) (*ports.ReferenceSummary, error) {
	if ref == nil {
		return nil, fmt.Errorf("%s: empty reference data", source)
	}
	idx, err := geofence.Build(ref.Geofences)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	s.engine.SetReference(*ref, idx)

	s.mu.Lock()
	s.zones = ref.Geofences
	s.mu.Unlock()

	sum := &ports.ReferenceSummary{
		Source:    source,
		Locations: len(ref.Locations),
		Legs:      len(ref.Legs),
		Geofences: len(ref.Geofences),
	}
	s.log.Info().
		Str("source", source).
		Int("locations", sum.Locations).
		Int("legs", sum.Legs).
		Int("geofences", sum.Geofences).
		Msg("reference data loaded")
	return sum, nil
}

func (s *referenceService) fill(ctx context.Context, ref *domain.ReferenceData) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, ref); err != nil {
		s.log.Warn().Err(err).Msg("reference cache write failed")
	}
}

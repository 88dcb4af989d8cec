// Package status keeps the latest occupancy reading per location. Pushes
// arrive out of band and possibly out of order; a push only replaces the
// stored reading when its embedded timestamp moves forward.
package status

import (
	"fmt"
	"time"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

// DefaultSkewTolerance is how far ahead of the wall clock a push may be.
const DefaultSkewTolerance = 5 * time.Second

// Merge decides whether next may replace prev. prev is nil when the location
// has no reading yet; the first reading is accepted as is. A stored reading
// whose timestamp cannot be parsed never blocks a newer one.
func Merge(prev *domain.LocationStatus, next domain.LocationStatus, now time.Time, tolerance time.Duration) error {
	if next.LocationID == "" {
		return domain.ErrMissingLocationID
	}
	if prev == nil {
		return nil
	}

	nextTS, ok := domain.ParseCalendarTime(next.LastUpdated)
	if !ok {
		return fmt.Errorf("location %s: %w", next.LocationID, domain.ErrInvalidStatusTimestamp)
	}
	if prevTS, ok := domain.ParseCalendarTime(prev.LastUpdated); ok && nextTS.Before(prevTS) {
		return fmt.Errorf("location %s: %w", next.LocationID, domain.ErrStaleStatus)
	}
	if nextTS.After(now.Add(tolerance)) {
		return fmt.Errorf("location %s: %w", next.LocationID, domain.ErrFutureStatus)
	}
	return nil
}

// DeriveStatusCode buckets an occupancy rate.
func DeriveStatusCode(occupancy float64) domain.StatusCode {
	switch {
	case occupancy >= 0.9:
		return domain.StatusCodeCritical
	case occupancy >= 0.7:
		return domain.StatusCodeWarning
	default:
		return domain.StatusCodeOK
	}
}

// normalize fills a missing status code from the occupancy rate.
func normalize(s domain.LocationStatus) domain.LocationStatus {
	if s.StatusCode == "" {
		s.StatusCode = DeriveStatusCode(s.OccupancyRate)
	}
	return s
}

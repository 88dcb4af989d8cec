package metrics

import (
	"errors"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/engine"
)

// ObserveIngest records the outcome counts of one batch.
func ObserveIngest(r engine.IngestReport) {
	EventsIngestedTotal.WithLabelValues("admitted").Add(float64(r.Admitted))
	EventsIngestedTotal.WithLabelValues("malformed").Add(float64(r.Malformed))
	EventsIngestedTotal.WithLabelValues("duplicate").Add(float64(r.Duplicates))
	EventsIngestedTotal.WithLabelValues("evicted").Add(float64(r.Evicted))
}

// ObserveState is an engine.Listener that mirrors state gauges.
func ObserveState(s *engine.State) {
	EventLogSize.Set(float64(s.Len()))
	ShipmentsTracked.Set(float64(s.ProjectionCount()))
	StateVersion.Set(float64(s.Version))
}

// ObserveStatusPush labels a status merge result.
func ObserveStatusPush(err error) {
	StatusPushesTotal.WithLabelValues(StatusResult(err)).Inc()
}

// StatusResult maps a merge error to its metric label.
func StatusResult(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, domain.ErrStaleStatus):
		return "stale"
	case errors.Is(err, domain.ErrFutureStatus):
		return "future"
	default:
		return "invalid"
	}
}

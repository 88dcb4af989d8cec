package engine

import (
	"math"
	"time"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/overlay"
)

// IngestReport summarizes what happened to a batch.
type IngestReport struct {
	Received   int
	Admitted   int
	Malformed  int
	Duplicates int
	Evicted    int
}

// Classify maps the remembered and the current zone of an entity to a
// transition. "" means outside every zone. Any inside-to-inside step is a
// move, including staying in the same zone.
func Classify(prevZone, newZone string) domain.EventType {
	switch {
	case prevZone == "" && newZone != "":
		return domain.EventEnter
	case prevZone != "" && newZone == "":
		return domain.EventExit
	case prevZone != "" && newZone != "":
		return domain.EventMove
	default:
		return domain.EventUnknown
	}
}

// TrackingKey identifies the moving entity an event belongs to: tracker id,
// else shipment number, else the event id itself.
func TrackingKey(e domain.TrackedEvent) string {
	switch {
	case e.TrackerID != "":
		return e.TrackerID
	case e.ShipmentNo != "":
		return e.ShipmentNo
	default:
		return e.ID
	}
}

func wellFormed(e domain.TrackedEvent) bool {
	if e.ID == "" || e.Position == nil {
		return false
	}
	for _, c := range e.Position {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Ingest annotates a batch in order and appends it to the log. Malformed and
// already-logged events are dropped. When the log exceeds capacity the oldest
// admitted entry is evicted. Projections are recomputed once per batch.
// now is the fallback time for unparsable timestamps.
func Ingest(s *State, batch []domain.TrackedEvent, now time.Time) (*State, IngestReport) {
	report := IngestReport{Received: len(batch)}
	next := s.clone()

	for _, e := range batch {
		if !wellFormed(e) {
			report.Malformed++
			continue
		}
		if _, seen := next.ids[e.ID]; seen {
			report.Duplicates++
			continue
		}

		key := TrackingKey(e)
		prevZone := next.lastZone[key]
		zone, _ := next.Index.Locate(*e.Position)
		typ := Classify(prevZone, zone.ID)
		next.lastZone[key] = zone.ID

		next.events = append(next.events, domain.AnnotatedEvent{
			TrackedEvent: e,
			TimestampMS:  e.Timestamp.MillisOr(now),
			ZoneID:       zone.ID,
			ZoneKind:     zone.Kind,
			Type:         typ,
			Weight:       overlay.HeatWeight(e.MetaString("status"), typ),
		})
		next.ids[e.ID] = struct{}{}
		report.Admitted++

		if len(next.events) > next.Capacity {
			oldest := next.events[0]
			next.events = next.events[1:]
			delete(next.ids, oldest.ID)
			report.Evicted++
		}
	}

	if report.Admitted == 0 {
		return s, report
	}
	return next.seal(), report
}

// PruneOldEvents drops events older than the rolling window ending at nowMS.
// Zone memory is kept. Pruning an already-pruned state returns it unchanged.
func PruneOldEvents(s *State, nowMS int64) (*State, int) {
	since := nowMS - s.Window.Milliseconds()

	kept := make([]domain.AnnotatedEvent, 0, len(s.events))
	for _, e := range s.events {
		if e.TimestampMS >= since {
			kept = append(kept, e)
		}
	}
	removed := len(s.events) - len(kept)
	if removed == 0 {
		return s, 0
	}

	next := s.clone()
	next.events = kept
	next.ids = make(map[string]struct{}, len(kept))
	for _, e := range kept {
		next.ids[e.ID] = struct{}{}
	}
	return next.seal(), removed
}

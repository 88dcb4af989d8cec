package overlay

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

// FilterAll disables the event type or zone filter.
const FilterAll = "all"

const (
	minHeatWeight = 1
	maxHeatWeight = 255
)

// HeatFilter selects which logged events contribute to the heatmap.
// Empty EventType or ZoneID behave like FilterAll.
type HeatFilter struct {
	SinceMS   int64
	EventType string
	ZoneID    string
}

// HeatPoint is a weighted position for the heatmap layer.
type HeatPoint struct {
	Position orb.Point `json:"position"`
	Weight   int       `json:"weight"`
}

// HeatWeight scores an event by the status it carries and its zone
// transition, clamped to [1,255].
func HeatWeight(status string, typ domain.EventType) int {
	var w float64
	switch domain.ShipmentStatus(status) {
	case domain.StatusDelayed:
		w = 5
	case domain.StatusHold:
		w = 3
	case domain.StatusInTransit:
		w = 2
	default:
		w = 1
	}

	switch typ {
	case domain.EventEnter:
		w *= 1.5
	case domain.EventExit:
		w *= 1.2
	}
	return clampRound(w, minHeatWeight, maxHeatWeight)
}

// BuildHeatPoints filters events and weights them. Output keeps input order.
func BuildHeatPoints(events []domain.AnnotatedEvent, f HeatFilter) []HeatPoint {
	eventType := f.EventType
	if eventType == "" {
		eventType = FilterAll
	}
	zoneID := f.ZoneID
	if zoneID == "" {
		zoneID = FilterAll
	}

	out := make([]HeatPoint, 0, len(events))
	for _, e := range events {
		if e.TimestampMS < f.SinceMS {
			continue
		}
		if eventType != FilterAll && string(e.Type) != eventType {
			continue
		}
		if zoneID != FilterAll && e.ZoneID != zoneID {
			continue
		}
		out = append(out, HeatPoint{
			Position: e.Point(),
			Weight:   HeatWeight(e.MetaString("status"), e.Type),
		})
	}
	return out
}

// clampRound rounds half up, then clamps to [lo,hi].
func clampRound(v float64, lo, hi int) int {
	r := int(math.Floor(v + 0.5))
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}

// Package feed is the live-feed transport: it keeps a websocket open to the
// upstream event source, turns every frame into a typed Message and forwards
// the content to the dashboard.
package feed

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

// Kind discriminates a parsed feed message.
type Kind string

const (
	KindEvents    Kind = "events"
	KindShipments Kind = "shipments"
	KindStatus    Kind = "location_status"
	KindPing      Kind = "ping"
	KindHello     Kind = "hello"
	KindUnknown   Kind = "unknown"
)

// Message is one decoded frame. Only the field matching Kind is set.
type Message struct {
	Kind      Kind
	Events    []domain.TrackedEvent
	Shipments []domain.ShipmentOverride
	Status    *domain.LocationStatus
}

type envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Data      json.RawMessage `json:"data"`
	Events    json.RawMessage `json:"events"`
	Shipments json.RawMessage `json:"shipments"`
}

// legacyEvent is the flat single-event payload of {"type":"event"} frames.
type legacyEvent struct {
	EventID    any    `json:"event_id"`
	TS         any    `json:"ts"`
	Lat        any    `json:"lat"`
	Lon        any    `json:"lon"`
	ShipmentNo string `json:"shpt_no"`
	TrackerID  string `json:"tracker_id"`
	Status     string `json:"status"`
	LocationID string `json:"location_id"`
	Remark     string `json:"remark"`
}

// Parse decodes a raw frame. It never fails: anything it cannot interpret
// is KindUnknown, and elements of a batch that do not decode are skipped.
func Parse(raw []byte) Message {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Message{Kind: KindUnknown}
	}

	if env.Type == "event" && present(env.Payload) {
		if e, ok := convertLegacy(env.Payload); ok {
			return Message{Kind: KindEvents, Events: []domain.TrackedEvent{e}}
		}
	}

	switch env.Type {
	case "ping":
		return Message{Kind: KindPing}
	case "hello":
		return Message{Kind: KindHello}
	case "location_status":
		var s domain.LocationStatus
		if present(env.Payload) && json.Unmarshal(env.Payload, &s) == nil {
			return Message{Kind: KindStatus, Status: &s}
		}
	}

	if items, ok := rawArray(env.Events); ok {
		events := make([]domain.TrackedEvent, 0, len(items))
		for _, it := range items {
			var e domain.TrackedEvent
			if json.Unmarshal(it, &e) == nil {
				events = append(events, e)
			}
		}
		return Message{Kind: KindEvents, Events: events}
	}

	if items, ok := rawArray(env.Shipments); ok {
		rows := make([]domain.ShipmentOverride, 0, len(items))
		for _, it := range items {
			var r domain.ShipmentOverride
			if json.Unmarshal(it, &r) == nil {
				rows = append(rows, r)
			}
		}
		return Message{Kind: KindShipments, Shipments: rows}
	}

	if env.Type == "shipment" && present(env.Data) {
		var r domain.ShipmentOverride
		if json.Unmarshal(env.Data, &r) == nil {
			return Message{Kind: KindShipments, Shipments: []domain.ShipmentOverride{r}}
		}
	}

	return Message{Kind: KindUnknown}
}

func convertLegacy(raw json.RawMessage) (domain.TrackedEvent, bool) {
	var le legacyEvent
	if err := json.Unmarshal(raw, &le); err != nil {
		return domain.TrackedEvent{}, false
	}
	id := scalarString(le.EventID)
	if id == "" {
		return domain.TrackedEvent{}, false
	}

	e := domain.TrackedEvent{
		ID:         id,
		Position:   &orb.Point{toFloat(le.Lon), toFloat(le.Lat)},
		ShipmentNo: le.ShipmentNo,
		TrackerID:  le.TrackerID,
		Meta: map[string]any{
			"status":      le.Status,
			"location_id": le.LocationID,
			"remark":      le.Remark,
		},
	}
	switch ts := le.TS.(type) {
	case float64:
		e.Timestamp = domain.EventTime{Millis: ts, Numeric: true}
	case string:
		e.Timestamp = domain.TextTime(ts)
	}
	return e, true
}

func present(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

func rawArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	if !present(raw) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// toFloat coerces a number or numeric string; anything else is 0.
func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

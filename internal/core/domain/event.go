package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// EventType is the zone transition assigned to an event at ingestion.
type EventType string

const (
	EventEnter   EventType = "enter"
	EventExit    EventType = "exit"
	EventMove    EventType = "move"
	EventUnknown EventType = "unknown"
)

// EventTime is the wire timestamp of a live event. Feeds send either epoch
// milliseconds or a calendar string.
type EventTime struct {
	Millis  float64
	Numeric bool
	Text    string
}

// UnixMillis builds a numeric EventTime.
func UnixMillis(ms int64) EventTime {
	return EventTime{Millis: float64(ms), Numeric: true}
}

// TextTime builds a string EventTime.
func TextTime(s string) EventTime {
	return EventTime{Text: s}
}

// UnmarshalJSON accepts a number or a string. Any other JSON value yields the
// zero EventTime, which resolves to ingestion time.
func (t *EventTime) UnmarshalJSON(b []byte) error {
	*t = EventTime{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			t.Text = s
		}
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err == nil {
			t.Millis = f
			t.Numeric = true
		}
	}
	return nil
}

// MarshalJSON writes the value back in the form it arrived in.
func (t EventTime) MarshalJSON() ([]byte, error) {
	if t.Numeric {
		return json.Marshal(t.Millis)
	}
	return json.Marshal(t.Text)
}

// calendarLayouts are tried in order for string timestamps. Layouts without a
// zone are read as UTC.
var calendarLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseCalendarTime parses the calendar formats live feeds are known to send.
func ParseCalendarTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range calendarLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// MillisOr normalizes the timestamp to epoch milliseconds, falling back to
// now when it cannot be interpreted.
func (t EventTime) MillisOr(now time.Time) int64 {
	if t.Numeric {
		if math.IsNaN(t.Millis) || math.IsInf(t.Millis, 0) {
			return now.UnixMilli()
		}
		return int64(t.Millis)
	}
	if ts, ok := ParseCalendarTime(t.Text); ok {
		return ts.UnixMilli()
	}
	return now.UnixMilli()
}

// TrackedEvent is a raw position/status event as delivered by the feed.
type TrackedEvent struct {
	ID         string         `json:"id"`
	Timestamp  EventTime      `json:"ts"`
	Position   *orb.Point     `json:"position"`
	ShipmentNo string         `json:"shpt_no,omitempty"`
	TrackerID  string         `json:"tracker_id,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// MetaString returns a string metadata value, or "" when absent.
func (e TrackedEvent) MetaString(key string) string {
	if e.Meta == nil {
		return ""
	}
	s, _ := e.Meta[key].(string)
	return s
}

// AnnotatedEvent is a TrackedEvent frozen at ingestion together with its
// zone classification. It is never mutated after it enters the log.
type AnnotatedEvent struct {
	TrackedEvent
	TimestampMS int64     `json:"ts_ms"`
	ZoneID      string    `json:"zone_id,omitempty"`
	ZoneKind    ZoneKind  `json:"zone_kind,omitempty"`
	Type        EventType `json:"event_type"`
	Weight      int       `json:"weight"`
}

// Point returns the event position. Annotated events always carry one.
func (e AnnotatedEvent) Point() orb.Point {
	if e.Position == nil {
		return orb.Point{}
	}
	return *e.Position
}

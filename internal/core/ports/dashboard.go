package ports

import (
	"context"
	"time"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/engine"
	"github.com/mosb/logistics-dashboard/internal/core/overlay"
)

// EventQuery filters the annotated event list. Zero values mean "all".
type EventQuery struct {
	SinceMS    int64
	EventType  string
	ZoneID     string
	ShipmentNo string
	// Limit keeps the newest Limit events.
	Limit int
}

// HeatmapQuery selects the heatmap window and filters. Hours <= 0 selects
// the engine window.
type HeatmapQuery struct {
	Hours     float64
	EventType string
	ZoneID    string
}

// EventQueue accepts raw events for batched ingestion.
type EventQueue interface {
	Enqueue(events ...domain.TrackedEvent) error
}

// DashboardService is the read/write surface over the engine, the status
// board and the overlay aggregators.
type DashboardService interface {
	IngestEvents(events []domain.TrackedEvent) engine.IngestReport
	Events(q EventQuery) []domain.AnnotatedEvent
	Shipments() []domain.ShipmentProjection
	Shipment(shipmentNo string) (domain.ShipmentProjection, error)
	UpsertShipments(rows []domain.ShipmentOverride)

	HeatPoints(q HeatmapQuery) []overlay.HeatPoint
	EtaWedges(now time.Time) []overlay.EtaWedge

	LocationStatuses() []domain.LocationStatus
	UpsertLocationStatus(s domain.LocationStatus) (domain.LocationStatus, error)
	ReplaceLocationStatuses(items []domain.LocationStatus) int

	EventsCountByLocation(locationID string, since time.Time) int
	Prune(now time.Time) int
	RunMaintenance(ctx context.Context, interval time.Duration)
}

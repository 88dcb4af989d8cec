package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"

	"github.com/mosb/logistics-dashboard/internal/api/metrics"
	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
)

// EventHandler handles live event ingestion and the annotated event log.
type EventHandler struct {
	queue   ports.EventQueue
	service ports.DashboardService
}

// NewEventHandler creates an EventHandler. Ingested events go through queue so
// HTTP and feed traffic share one batching path.
func NewEventHandler(queue ports.EventQueue, service ports.DashboardService) *EventHandler {
	return &EventHandler{queue: queue, service: service}
}

// Receive handles POST /api/events and enqueues a batch of events. Events
// without an id, a usable position or with an unknown status are dropped
// one by one; the rest of the batch is accepted. A batch where nothing is
// usable is rejected.
//
// @Summary      Ingest live tracking events
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      eventBatchRequest  true  "Batch of events"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /api/events [post]
func (h *EventHandler) Receive(c echo.Context) error {
	var req eventBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	events := make([]domain.TrackedEvent, 0, len(req.Events))
	for _, r := range req.Events {
		if err := c.Validate(&r); err != nil {
			continue
		}
		p, ok := r.point()
		if !ok {
			continue
		}
		events = append(events, toTrackedEvent(r, p))
	}
	dropped := len(req.Events) - len(events)
	if dropped > 0 {
		metrics.EventsIngestedTotal.WithLabelValues("rejected").Add(float64(dropped))
	}
	if len(events) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "no valid events in batch")
	}
	if err := h.queue.Enqueue(events...); err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "events accepted",
		Count:   len(events),
		Dropped: dropped,
	})
}

// List handles GET /api/events.
//
// @Summary      List zone-annotated events
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        since       query     string  false  "RFC3339 lower bound on event time"
// @Param        event_type  query     string  false  "enter, exit, move, unknown or all"
// @Param        zone_id     query     string  false  "Zone id or all"
// @Param        shpt_no     query     string  false  "Shipment number"
// @Param        limit       query     int     false  "Keep only the newest N events"
// @Success      200         {object}  eventListResponse
// @Failure      400         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Router       /api/events [get]
func (h *EventHandler) List(c echo.Context) error {
	var q eventQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	query := ports.EventQuery{
		EventType:  q.EventType,
		ZoneID:     q.ZoneID,
		ShipmentNo: q.ShipmentNo,
		Limit:      q.Limit,
	}
	if q.Since != "" {
		since, err := time.Parse(time.RFC3339, q.Since)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "since must be an RFC3339 timestamp")
		}
		query.SinceMS = since.UnixMilli()
	}

	events := h.service.Events(query)
	return c.JSON(http.StatusOK, eventListResponse{Events: events, Count: len(events)})
}

// toTrackedEvent maps the HTTP request onto the feed event shape. Status and
// location id travel in meta like they do on the live feed.
func toTrackedEvent(r trackedEventRequest, p orb.Point) domain.TrackedEvent {
	meta := make(map[string]any, len(r.Meta)+2)
	for k, v := range r.Meta {
		meta[k] = v
	}
	if r.Status != "" {
		meta["status"] = r.Status
	}
	if r.LocationID != "" {
		meta["location_id"] = r.LocationID
	}
	if len(meta) == 0 {
		meta = nil
	}

	return domain.TrackedEvent{
		ID:         r.ID,
		Timestamp:  r.Timestamp,
		Position:   &p,
		ShipmentNo: r.ShipmentNo,
		TrackerID:  r.TrackerID,
		Meta:       meta,
	}
}

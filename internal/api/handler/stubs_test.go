package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb/geojson"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/engine"
	"github.com/mosb/logistics-dashboard/internal/core/overlay"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubQueue struct {
	events []domain.TrackedEvent
	err    error
}

func (q *stubQueue) Enqueue(events ...domain.TrackedEvent) error {
	if q.err != nil {
		return q.err
	}
	q.events = append(q.events, events...)
	return nil
}

type stubDashboard struct {
	events     []domain.AnnotatedEvent
	lastQuery  ports.EventQuery
	shipments  []domain.ShipmentProjection
	overrides  []domain.ShipmentOverride
	heat       []overlay.HeatPoint
	lastHeat   ports.HeatmapQuery
	wedges     []overlay.EtaWedge
	etaNow     time.Time
	statuses   []domain.LocationStatus
	pushErr    error
	replaced   []domain.LocationStatus
	count      int
	countID    string
	countSince time.Time
}

func (d *stubDashboard) IngestEvents(events []domain.TrackedEvent) engine.IngestReport {
	return engine.IngestReport{Admitted: len(events)}
}

func (d *stubDashboard) Events(q ports.EventQuery) []domain.AnnotatedEvent {
	d.lastQuery = q
	return d.events
}

func (d *stubDashboard) Shipments() []domain.ShipmentProjection { return d.shipments }

func (d *stubDashboard) Shipment(no string) (domain.ShipmentProjection, error) {
	for _, p := range d.shipments {
		if p.ShipmentNo == no {
			return p, nil
		}
	}
	return domain.ShipmentProjection{}, domain.ErrShipmentNotFound
}

func (d *stubDashboard) UpsertShipments(rows []domain.ShipmentOverride) {
	d.overrides = append(d.overrides, rows...)
}

func (d *stubDashboard) HeatPoints(q ports.HeatmapQuery) []overlay.HeatPoint {
	d.lastHeat = q
	return d.heat
}

func (d *stubDashboard) EtaWedges(now time.Time) []overlay.EtaWedge {
	d.etaNow = now
	return d.wedges
}

func (d *stubDashboard) LocationStatuses() []domain.LocationStatus { return d.statuses }

func (d *stubDashboard) UpsertLocationStatus(s domain.LocationStatus) (domain.LocationStatus, error) {
	if d.pushErr != nil {
		return domain.LocationStatus{}, d.pushErr
	}
	d.statuses = append(d.statuses, s)
	return s, nil
}

func (d *stubDashboard) ReplaceLocationStatuses(items []domain.LocationStatus) int {
	d.replaced = items
	return len(items)
}

func (d *stubDashboard) EventsCountByLocation(id string, since time.Time) int {
	d.countID, d.countSince = id, since
	return d.count
}

func (d *stubDashboard) Prune(time.Time) int { return 0 }

func (d *stubDashboard) RunMaintenance(context.Context, time.Duration) {}

type stubReference struct {
	sum     *ports.ReferenceSummary
	err     error
	reloads int
}

func (r *stubReference) Load(context.Context) (*ports.ReferenceSummary, error) {
	return r.sum, r.err
}

func (r *stubReference) Reload(context.Context) (*ports.ReferenceSummary, error) {
	r.reloads++
	return r.sum, r.err
}

func (r *stubReference) Geofences() *geojson.FeatureCollection {
	return geojson.NewFeatureCollection()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}

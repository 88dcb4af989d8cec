package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

func TestStatusHandler_Push(t *testing.T) {
	svc := &stubDashboard{}
	h := NewStatusHandler(svc)

	c, rec := newRequest(newEcho(), http.MethodPost, "/api/location-status",
		`{"location_id":"L1","occupancy_rate":0.75,"last_updated":"2025-03-01T12:00:00Z"}`)
	if err := h.Push(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.statuses) != 1 || svc.statuses[0].OccupancyRate != 0.75 {
		t.Errorf("unexpected statuses %+v", svc.statuses)
	}
}

func TestStatusHandler_PushErrorsPropagate(t *testing.T) {
	for _, want := range []error{domain.ErrStaleStatus, domain.ErrFutureStatus, domain.ErrMissingLocationID} {
		svc := &stubDashboard{pushErr: fmt.Errorf("L1: %w", want)}
		c, _ := newRequest(newEcho(), http.MethodPost, "/api/location-status",
			`{"location_id":"L1","occupancy_rate":0.1,"last_updated":"2025-03-01T12:00:00Z"}`)
		if err := NewStatusHandler(svc).Push(c); !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	}
}

func TestStatusHandler_PushValidates(t *testing.T) {
	for name, body := range map[string]string{
		"rate above one": `{"location_id":"L1","occupancy_rate":1.5}`,
		"negative rate":  `{"location_id":"L1","occupancy_rate":-0.1}`,
		"bad code":       `{"location_id":"L1","occupancy_rate":0.1,"status_code":"RED"}`,
	} {
		t.Run(name, func(t *testing.T) {
			svc := &stubDashboard{}
			c, _ := newRequest(newEcho(), http.MethodPost, "/api/location-status", body)
			if got := httpCode(NewStatusHandler(svc).Push(c)); got != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", got)
			}
		})
	}
}

func TestStatusHandler_Replace(t *testing.T) {
	svc := &stubDashboard{}
	c, rec := newRequest(newEcho(), http.MethodPut, "/api/location-status",
		`{"items":[{"location_id":"L1","occupancy_rate":0.2},{"location_id":"L2","occupancy_rate":0.95,"status_code":"CRITICAL"}]}`)

	if err := NewStatusHandler(svc).Replace(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.replaced) != 2 || svc.replaced[1].StatusCode != domain.StatusCodeCritical {
		t.Errorf("unexpected replace %+v", svc.replaced)
	}
}

func TestStatusHandler_EventCount(t *testing.T) {
	svc := &stubDashboard{count: 3}
	h := NewStatusHandler(svc)

	c, rec := newRequest(newEcho(), http.MethodGet, "/api/locations/L1/events/count?since=2025-03-01T00:00:00Z", "")
	c.SetParamNames("location_id")
	c.SetParamValues("L1")
	if err := h.EventCount(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.countID != "L1" || !svc.countSince.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected call id=%s since=%v", svc.countID, svc.countSince)
	}

	c, _ = newRequest(newEcho(), http.MethodGet, "/api/locations/L1/events/count?since=nope", "")
	if got := httpCode(h.EventCount(c)); got != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for bad since, got %d", got)
	}
}

package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/mosb/logistics-dashboard/internal/core/overlay"
)

func TestOverlayHandler_Heatmap(t *testing.T) {
	svc := &stubDashboard{heat: []overlay.HeatPoint{{Weight: 8}}}
	h := NewOverlayHandler(svc)

	c, rec := newRequest(newEcho(), http.MethodGet, "/api/overlays/heatmap?hours=2.5&event_type=enter&zone_id=Z1", "")
	if err := h.Heatmap(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if q := svc.lastHeat; q.Hours != 2.5 || q.EventType != "enter" || q.ZoneID != "Z1" {
		t.Errorf("unexpected query %+v", q)
	}
}

func TestOverlayHandler_HeatmapRejects(t *testing.T) {
	for _, target := range []string{
		"/api/overlays/heatmap?hours=-1",
		"/api/overlays/heatmap?event_type=teleport",
	} {
		c, _ := newRequest(newEcho(), http.MethodGet, target, "")
		if got := httpCode(NewOverlayHandler(&stubDashboard{}).Heatmap(c)); got != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d", target, got)
		}
	}
	c, _ := newRequest(newEcho(), http.MethodGet, "/api/overlays/heatmap?hours=abc", "")
	if got := httpCode(NewOverlayHandler(&stubDashboard{}).Heatmap(c)); got != http.StatusBadRequest {
		t.Errorf("non-numeric hours: expected 400, got %d", got)
	}
}

func TestOverlayHandler_EtaTruncatesClock(t *testing.T) {
	svc := &stubDashboard{}
	h := NewOverlayHandler(svc)
	h.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 750_000_000, time.UTC) }

	c, rec := newRequest(newEcho(), http.MethodGet, "/api/overlays/eta", "")
	if err := h.Eta(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC); !svc.etaNow.Equal(want) {
		t.Errorf("expected %v, got %v", want, svc.etaNow)
	}
}

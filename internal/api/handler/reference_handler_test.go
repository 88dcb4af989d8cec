package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
)

func TestReferenceHandler_Geofences(t *testing.T) {
	h := NewReferenceHandler(&stubReference{}, zerolog.Nop())
	c, rec := newRequest(newEcho(), http.MethodGet, "/api/geofences", "")

	if err := h.Geofences(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["type"] != "FeatureCollection" {
		t.Errorf("expected a FeatureCollection, got %v", body["type"])
	}
}

func TestReferenceHandler_Reload(t *testing.T) {
	ref := &stubReference{sum: &ports.ReferenceSummary{Source: "primary", Locations: 2}}
	h := NewReferenceHandler(ref, zerolog.Nop())
	c, rec := newRequest(newEcho(), http.MethodPost, "/api/reference/reload", "")
	c.Set("username", "ops-lead")

	if err := h.Reload(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || ref.reloads != 1 {
		t.Fatalf("expected one reload and 200, got %d (%d reloads)", rec.Code, ref.reloads)
	}
}

func TestReferenceHandler_ReloadUnavailable(t *testing.T) {
	ref := &stubReference{err: domain.ErrReferenceUnavailable}
	c, _ := newRequest(newEcho(), http.MethodPost, "/api/reference/reload", "")

	if err := NewReferenceHandler(ref, zerolog.Nop()).Reload(c); !errors.Is(err, domain.ErrReferenceUnavailable) {
		t.Fatalf("expected ErrReferenceUnavailable, got %v", err)
	}
}

package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/engine"
	"github.com/mosb/logistics-dashboard/internal/core/status"
)

func TestHealth_Liveness(t *testing.T) {
	c, rec := newRequest(newEcho(), http.MethodGet, "/health", "")
	if err := NewHealthHandler().Liveness(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d err=%v", rec.Code, err)
	}
}

func TestHealth_ReadinessWithDisabledDependencies(t *testing.T) {
	eng := engine.New(engine.Config{}, zerolog.Nop())
	board := status.NewBoard(0, time.Now)
	board.Replace([]domain.LocationStatus{{LocationID: "L1"}})
	h := NewHealthDependenciesHandler(nil, nil, eng, board)
	c, rec := newRequest(newEcho(), http.MethodGet, "/health/ready", "")

	if err := h.Readiness(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Dependencies["mongodb"].Status != "disabled" || resp.Dependencies["redis"].Status != "disabled" {
		t.Errorf("unexpected dependencies %+v", resp.Dependencies)
	}
	if resp.Engine == nil || resp.Engine.Events != 0 || resp.Engine.Locations != 1 {
		t.Errorf("unexpected engine status %+v", resp.Engine)
	}
}

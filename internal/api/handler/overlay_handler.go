package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mosb/logistics-dashboard/internal/core/overlay"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
)

// OverlayHandler serves the heatmap and ETA wedge layers.
type OverlayHandler struct {
	service ports.DashboardService
	now     func() time.Time
}

func NewOverlayHandler(service ports.DashboardService) *OverlayHandler {
	return &OverlayHandler{service: service, now: time.Now}
}

type heatmapQuery struct {
	Hours     float64 `query:"hours"      validate:"gte=0,lte=720"`
	EventType string  `query:"event_type" validate:"omitempty,oneof=enter exit move unknown all"`
	ZoneID    string  `query:"zone_id"`
}

type heatmapResponse struct {
	Points []overlay.HeatPoint `json:"points"`
	Count  int                 `json:"count"`
}

type etaResponse struct {
	Wedges      []overlay.EtaWedge `json:"wedges"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Heatmap handles GET /api/overlays/heatmap.
//
// @Summary      Weighted heatmap points
// @Tags         overlays
// @Produce      json
// @Security     BearerAuth
// @Param        hours       query     number  false  "Window in hours (default: rolling window)"
// @Param        event_type  query     string  false  "enter, exit, move, unknown or all"
// @Param        zone_id     query     string  false  "Zone id or all"
// @Success      200         {object}  heatmapResponse
// @Failure      400         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Router       /api/overlays/heatmap [get]
func (h *OverlayHandler) Heatmap(c echo.Context) error {
	var q heatmapQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	pts := h.service.HeatPoints(ports.HeatmapQuery{
		Hours:     q.Hours,
		EventType: q.EventType,
		ZoneID:    q.ZoneID,
	})
	return c.JSON(http.StatusOK, heatmapResponse{Points: pts, Count: len(pts)})
}

// Eta handles GET /api/overlays/eta. The clock is truncated to the second so
// polls within the same second share a memoized result.
//
// @Summary      ETA uncertainty wedges
// @Tags         overlays
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  etaResponse
// @Router       /api/overlays/eta [get]
func (h *OverlayHandler) Eta(c echo.Context) error {
	now := h.now().Truncate(time.Second)
	return c.JSON(http.StatusOK, etaResponse{
		Wedges:      h.service.EtaWedges(now),
		GeneratedAt: now.UTC(),
	})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mosb/logistics-dashboard/internal/api/metrics"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
)

// ReferenceHandler serves geofences and triggers reference reloads.
type ReferenceHandler struct {
	service ports.ReferenceService
	log     zerolog.Logger
}

func NewReferenceHandler(service ports.ReferenceService, log zerolog.Logger) *ReferenceHandler {
	return &ReferenceHandler{service: service, log: log}
}

// Geofences handles GET /api/geofences.
//
// @Summary      Geofence zones as a GeoJSON FeatureCollection
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/geofences [get]
func (h *ReferenceHandler) Geofences(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Geofences())
}

// Reload handles POST /api/reference/reload.
//
// @Summary      Reload locations, legs and geofences
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ReferenceSummary
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /api/reference/reload [post]
func (h *ReferenceHandler) Reload(c echo.Context) error {
	h.log.Info().Str("actor", ctxActor(c)).Msg("reference reload requested")

	sum, err := h.service.Reload(c.Request().Context())
	if err != nil {
		metrics.ReferenceLoadsTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.ReferenceLoadsTotal.WithLabelValues(sum.Source).Inc()
	return c.JSON(http.StatusOK, sum)
}

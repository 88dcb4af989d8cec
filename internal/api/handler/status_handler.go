package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mosb/logistics-dashboard/internal/api/metrics"
	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
)

// StatusHandler serves the location status board and the per-location
// event counters.
type StatusHandler struct {
	service ports.DashboardService
}

func NewStatusHandler(service ports.DashboardService) *StatusHandler {
	return &StatusHandler{service: service}
}

// List handles GET /api/location-status.
//
// @Summary      Current location status board
// @Tags         location-status
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statusListResponse
// @Router       /api/location-status [get]
func (h *StatusHandler) List(c echo.Context) error {
	items := h.service.LocationStatuses()
	return c.JSON(http.StatusOK, statusListResponse{Items: items, Count: len(items)})
}

// Push handles POST /api/location-status. The push is kept only when it is
// newer than the stored reading and not too far in the future.
//
// @Summary      Push one location status reading
// @Tags         location-status
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      locationStatusRequest  true  "Status reading"
// @Success      200   {object}  domain.LocationStatus
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/location-status [post]
func (h *StatusHandler) Push(c echo.Context) error {
	var req locationStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	merged, err := h.service.UpsertLocationStatus(req.toDomain())
	metrics.ObserveStatusPush(err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, merged)
}

// Replace handles PUT /api/location-status and swaps the whole board.
//
// @Summary      Replace the location status board
// @Tags         location-status
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      replaceStatusRequest  true  "Full board"
// @Success      200   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/location-status [put]
func (h *StatusHandler) Replace(c echo.Context) error {
	var req replaceStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	items := make([]domain.LocationStatus, 0, len(req.Items))
	for _, r := range req.Items {
		items = append(items, r.toDomain())
	}
	kept := h.service.ReplaceLocationStatuses(items)

	return c.JSON(http.StatusOK, acceptedResponse{Message: "location status replaced", Count: kept})
}

// EventCount handles GET /api/locations/:location_id/events/count.
//
// @Summary      Count events tagged with a location
// @Tags         location-status
// @Produce      json
// @Security     BearerAuth
// @Param        location_id  path      string  true   "Location id"
// @Param        since        query     string  false  "RFC3339 lower bound on event time"
// @Success      200          {object}  locationCountResponse
// @Failure      422          {object}  errorResponse
// @Router       /api/locations/{location_id}/events/count [get]
func (h *StatusHandler) EventCount(c echo.Context) error {
	var since time.Time
	if err := echo.QueryParamsBinder(c).Time("since", &since, time.RFC3339).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "since must be an RFC3339 timestamp")
	}

	locationID := c.Param("location_id")
	resp := locationCountResponse{
		LocationID: locationID,
		Count:      h.service.EventsCountByLocation(locationID, since),
	}
	if !since.IsZero() {
		resp.Since = since.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

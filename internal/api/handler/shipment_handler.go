package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
)

// ShipmentHandler serves shipment projections and accepts shipment overrides.
type ShipmentHandler struct {
	service ports.DashboardService
}

func NewShipmentHandler(service ports.DashboardService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// --- Request / Response types ---

type shipmentOverrideRequest struct {
	ShipmentNo string   `json:"shpt_no"   validate:"required"`
	SpeedKPH   *float64 `json:"speed_kph" validate:"omitempty,gt=0,lte=2000"`
}

type upsertShipmentsRequest struct {
	Shipments []shipmentOverrideRequest `json:"shipments" validate:"required,min=1,dive"`
}

type shipmentListResponse struct {
	Shipments []domain.ShipmentProjection `json:"shipments"`
	Count     int                         `json:"count"`
}

// List handles GET /api/shipments.
//
// @Summary      List shipment projections
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  shipmentListResponse
// @Router       /api/shipments [get]
func (h *ShipmentHandler) List(c echo.Context) error {
	ps := h.service.Shipments()
	return c.JSON(http.StatusOK, shipmentListResponse{Shipments: ps, Count: len(ps)})
}

// Get handles GET /api/shipments/:shpt_no.
//
// @Summary      Get the projection of one shipment
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        shpt_no  path      string  true  "Shipment number"
// @Success      200      {object}  domain.ShipmentProjection
// @Failure      404      {object}  errorResponse
// @Router       /api/shipments/{shpt_no} [get]
func (h *ShipmentHandler) Get(c echo.Context) error {
	p, err := h.service.Shipment(c.Param("shpt_no"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Upsert handles POST /api/shipments and merges shipment overrides.
//
// @Summary      Upsert shipment overrides
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      upsertShipmentsRequest  true  "Shipment overrides"
// @Success      200   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/shipments [post]
func (h *ShipmentHandler) Upsert(c echo.Context) error {
	var req upsertShipmentsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	rows := make([]domain.ShipmentOverride, 0, len(req.Shipments))
	for _, r := range req.Shipments {
		rows = append(rows, domain.ShipmentOverride{ShipmentNo: r.ShipmentNo, SpeedKPH: r.SpeedKPH})
	}
	h.service.UpsertShipments(rows)

	return c.JSON(http.StatusOK, acceptedResponse{Message: "shipments updated", Count: len(rows)})
}

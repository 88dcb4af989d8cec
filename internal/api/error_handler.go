package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/infrastructure/queue"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrShipmentNotFound):
		return http.StatusNotFound, "shipment not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrStaleStatus):
		return http.StatusConflict, domain.ErrStaleStatus.Error()
	case errors.Is(err, domain.ErrFutureStatus),
		errors.Is(err, domain.ErrInvalidStatusTimestamp),
		errors.Is(err, domain.ErrMissingLocationID),
		errors.Is(err, domain.ErrMalformedGeofence):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrReferenceUnavailable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("reference data unavailable")
		return http.StatusServiceUnavailable, domain.ErrReferenceUnavailable.Error()
	case errors.Is(err, queue.ErrStopped):
		return http.StatusServiceUnavailable, "ingestion is shutting down"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/mosb/logistics-dashboard/internal/api/middleware"
)

// ctxActor returns the username injected by the Auth middleware, or
// "anonymous" when the API runs without authentication.
func ctxActor(c echo.Context) string {
	if username, _ := c.Get(middleware.CtxUsername).(string); username != "" {
		return username
	}
	return "anonymous"
}

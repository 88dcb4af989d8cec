package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

// RBAC lets the request through only when the role set by Auth is one of
// allowedRoles.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if _, ok := allowed[role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

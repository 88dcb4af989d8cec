package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by Auth.
const (
	CtxUsername = "username"
	CtxRole     = "role"
)

// Claims is the token payload issued by the auth service.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates an HS256 bearer token and injects its subject and role into
// the context. Tokens are issued elsewhere; expiry is enforced when present.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := &Claims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing role")
			}

			c.Set(CtxUsername, claims.Subject)
			c.Set(CtxRole, strings.ToUpper(claims.Role))

			return next(c)
		}
	}
}

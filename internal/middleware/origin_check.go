package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// OriginCheckMiddleware rejects cross-origin browser callers whose Origin is
// not on the allow-list. Requests without an Origin header (server-to-server,
// curl) pass through. An empty allow-list permits everything.
func OriginCheckMiddleware(allowedOrigins []string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin == "" || len(allowed) == 0 || allowed[origin] {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, "Origin not allowed")
		}
	}
}

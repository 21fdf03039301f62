package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Requested-With"
	corsMaxAge       = "86400"
)

// CORS answers preflight requests itself and decorates every other response.
// An empty origin list, or one containing "*", allows any origin.
func CORS(origins []string) echo.MiddlewareFunc {
	allowOrigin := "*"
	if len(origins) > 0 && !slices.Contains(origins, "*") {
		allowOrigin = strings.Join(origins, ",")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, allowOrigin)
			h.Set(echo.HeaderAccessControlAllowMethods, corsAllowMethods)
			h.Set(echo.HeaderAccessControlAllowHeaders, corsAllowHeaders)

			if c.Request().Method == http.MethodOptions {
				h.Set(echo.HeaderAccessControlMaxAge, corsMaxAge)
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}

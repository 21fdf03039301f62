package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/api/reqctx"
	"github.com/tsmart/voyage-api/internal/api/response"
	"github.com/tsmart/voyage-api/internal/core/domain"
)

// RequireRole enforces the role hierarchy CUSTOMER < MANAGER < ADMIN against
// the RequestContext set by Authenticate.
func RequireRole(required domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rc, ok := reqctx.RequestContext(c)
			if !ok {
				return response.Unauthorized("Authentication token required")
			}
			if !rc.Role.AtLeast(required) {
				return response.Forbidden("Insufficient permissions")
			}
			return next(c)
		}
	}
}

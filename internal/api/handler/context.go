package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/api/reqctx"
	"github.com/tsmart/voyage-api/internal/api/response"
	"github.com/tsmart/voyage-api/internal/core/domain"
)

// caller returns the identity stored by the auth middleware. Its absence means
// the route was registered without auth, which is answered as 401.
func caller(c echo.Context) (*domain.RequestContext, error) {
	rc, ok := reqctx.RequestContext(c)
	if !ok || rc.UserID == "" {
		return nil, response.Unauthorized("Authentication token required")
	}
	return rc, nil
}

// payload returns the body validated by middleware.Validate[T]. A missing
// payload is a wiring bug and surfaces as 400.
func payload[T any](c echo.Context) (*T, error) {
	p, ok := reqctx.Payload[T](c)
	if !ok {
		return nil, response.BadRequest("Invalid request data")
	}
	return p, nil
}

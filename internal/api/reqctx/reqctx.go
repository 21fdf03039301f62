// Package reqctx holds the per-request values middleware hands to handlers.
package reqctx

import (
	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/core/domain"
)

const (
	keyRequestID      = "request_id"
	keyRequestContext = "request_context"
	keyPayload        = "payload"
)

// SetRequestID stores the request identifier for the envelope and logs.
func SetRequestID(c echo.Context, id string) {
	c.Set(keyRequestID, id)
}

// RequestID returns the identifier set by the logging middleware, falling back
// to the response header when the middleware did not run.
func RequestID(c echo.Context) string {
	if id, ok := c.Get(keyRequestID).(string); ok && id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func SetRequestContext(c echo.Context, rc *domain.RequestContext) {
	c.Set(keyRequestContext, rc)
}

// RequestContext returns the caller identity built by the auth middleware.
func RequestContext(c echo.Context) (*domain.RequestContext, bool) {
	rc, ok := c.Get(keyRequestContext).(*domain.RequestContext)
	return rc, ok && rc != nil
}

// SetPayload stores a validated request payload.
func SetPayload(c echo.Context, v any) {
	c.Set(keyPayload, v)
}

// Payload returns the validated payload of type T stored by the validation
// middleware.
func Payload[T any](c echo.Context) (*T, bool) {
	v, ok := c.Get(keyPayload).(*T)
	return v, ok && v != nil
}

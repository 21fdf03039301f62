package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tsmart/voyage-api/internal/api/reqctx"
)

const maxRequestIDLen = 128

// Logging assigns the request identifier and logs one line per request with
// method, path, status and duration. Handler errors are rendered here so the
// logged status is the one the client receives.
//
// An inbound X-Request-ID is reused when it looks sane; otherwise a UUID is
// generated. The id is echoed in the response header, stored for the
// envelope meta and attached to the request-scoped logger (zerolog.Ctx).
func Logging(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			res := c.Response()

			id := req.Header.Get(echo.HeaderXRequestID)
			if !validRequestID(id) {
				id = uuid.NewString()
			}
			res.Header().Set(echo.HeaderXRequestID, id)
			reqctx.SetRequestID(c, id)

			l := log.With().Str("request_id", id).Logger()
			c.SetRequest(req.WithContext(l.WithContext(req.Context())))

			if err := next(c); err != nil {
				c.Error(err)
			}

			status := res.Status
			ev := l.Info()
			switch {
			case status >= 500:
				ev = l.Error()
			case status >= 400:
				ev = l.Warn()
			}
			ev.Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Str("ip", c.RealIP()).
				Msg("request")
			return nil
		}
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}

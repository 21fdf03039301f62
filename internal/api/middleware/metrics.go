package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/pkg/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route template. It must run
// outside Logging so the status it reads is the rendered one.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = unmatchedRoute
			}
			method := c.Request().Method
			metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			return err
		}
	}
}

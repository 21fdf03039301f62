package middleware

import "github.com/labstack/echo/v4"

// Compose chains middleware so the first one listed runs outermost:
// Compose(a, b, c)(h) is a(b(c(h))).
func Compose(mws ...echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(h echo.HandlerFunc) echo.HandlerFunc {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}

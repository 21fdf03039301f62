package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/api/reqctx"
	"github.com/tsmart/voyage-api/internal/api/response"
	"github.com/tsmart/voyage-api/internal/core/domain"
)

var binder = &echo.DefaultBinder{}

// Validate binds the query string (GET) or JSON body (other methods) into a
// new T, runs the echo validator on it and stores it for the handler, which
// reads it back with reqctx.Payload[T].
//
// Schema failures answer 400 VALIDATION_ERROR with the failing fields; a
// payload that cannot be parsed answers 400 "Invalid request data".
func Validate[T any]() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			payload := new(T)

			var err error
			if c.Request().Method == http.MethodGet {
				err = binder.BindQueryParams(c, payload)
			} else {
				err = binder.BindBody(c, payload)
			}
			if err != nil {
				return response.BadRequest("Invalid request data")
			}

			if err := c.Validate(payload); err != nil {
				var ve *domain.ValidationError
				if errors.As(err, &ve) {
					return response.ValidationFailed(ve.Fields, ve.Message)
				}
				return response.BadRequest("Invalid request data")
			}

			reqctx.SetPayload(c, payload)
			return next(c)
		}
	}
}

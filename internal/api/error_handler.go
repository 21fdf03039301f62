package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tsmart/voyage-api/internal/api/response"
	"github.com/tsmart/voyage-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and envelope code.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the standard envelope through the shared Formatter.
func NewHTTPErrorHandler(resp *response.Formatter, log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		apiErr := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(apiErr.Status)
			return
		}
		_ = resp.Error(c, apiErr)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) *response.APIError {
	var apiErr *response.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return response.ValidationFailed(verr.Fields, "")
	}

	// Echo's own errors (router 404/405, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fromHTTPError(he, c)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return response.Conflict("User with this email already exists", nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return response.Unauthorized("Invalid email or password")
	case errors.Is(err, domain.ErrInvalidRefreshToken):
		return response.Unauthorized("Invalid refresh token")
	case errors.Is(err, domain.ErrInvalidToken):
		return response.Unauthorized("Invalid authentication token")
	case errors.Is(err, domain.ErrUserInactive):
		return response.Unauthorized("User not found or inactive")
	case errors.Is(err, domain.ErrIncorrectPassword):
		return response.BadRequest("Current password is incorrect")
	case errors.Is(err, domain.ErrYachtHasActiveCharters):
		return response.BadRequest("Cannot delete yacht with active charters")
	case errors.Is(err, domain.ErrUserNotFound):
		return response.NotFound("User", "")
	case errors.Is(err, domain.ErrYachtNotFound):
		return response.NotFound("Yacht", "")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound("", "")
	case errors.Is(err, domain.ErrConflict):
		return response.Conflict("Resource already exists", nil)
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden("")
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return response.Internal("")
}

func fromHTTPError(he *echo.HTTPError, c echo.Context) *response.APIError {
	switch he.Code {
	case http.StatusNotFound:
		return &response.APIError{
			Status:  http.StatusNotFound,
			Code:    response.CodeNotFound,
			Message: fmt.Sprintf("Route %s %s not found", c.Request().Method, c.Request().URL.Path),
		}
	case http.StatusMethodNotAllowed:
		return &response.APIError{
			Status:  http.StatusMethodNotAllowed,
			Code:    response.CodeMethodNotAllowed,
			Message: fmt.Sprintf("Method %s not allowed", c.Request().Method),
		}
	case http.StatusUnauthorized:
		return response.Unauthorized("")
	case http.StatusForbidden:
		return response.Forbidden("")
	case http.StatusTooManyRequests:
		return response.TooManyRequests("")
	}

	msg := fmt.Sprintf("%v", he.Message)
	if he.Code >= http.StatusInternalServerError {
		return &response.APIError{Status: he.Code, Code: response.CodeInternal, Message: http.StatusText(he.Code)}
	}
	return &response.APIError{Status: he.Code, Code: response.CodeBadRequest, Message: msg}
}

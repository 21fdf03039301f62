package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/api/reqctx"
	"github.com/tsmart/voyage-api/internal/api/response"
	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
)

// Auth authenticates the bearer token and then requires requiredRole or a
// more privileged one.
func Auth(verifier ports.TokenVerifier, requiredRole domain.Role) echo.MiddlewareFunc {
	return Compose(Authenticate(verifier), RequireRole(requiredRole))
}

// Authenticate verifies the bearer access token and stores the caller's
// RequestContext for handlers.
func Authenticate(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return response.Unauthorized("Authentication token required")
			}

			payload, err := verifier.VerifyToken(token)
			if err != nil || payload == nil {
				return response.Unauthorized("Invalid authentication token")
			}

			reqctx.SetRequestContext(c, &domain.RequestContext{
				UserID:    payload.Subject,
				Role:      payload.Role,
				RequestID: reqctx.RequestID(c),
				Timestamp: time.Now().UTC(),
				UserAgent: c.Request().UserAgent(),
				IP:        c.RealIP(),
			})
			return next(c)
		}
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

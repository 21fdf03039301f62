package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/api/reqctx"
	"github.com/tsmart/voyage-api/internal/core/domain"
)

func TestRequireRole_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	reqctx.SetRequestContext(c, &domain.RequestContext{UserID: "u", Role: domain.RoleAdmin})

	called := false
	handler := RequireRole(domain.RoleManager)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	reqctx.SetRequestContext(c, &domain.RequestContext{UserID: "u", Role: domain.RoleUser})

	handler := RequireRole(domain.RoleManager)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if got := apiStatus(t, handler(c)); got != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", got)
	}
}

func TestRequireRole_WithoutAuthentication(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	handler := RequireRole(domain.RoleCustomer)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if got := apiStatus(t, handler(c)); got != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", got)
	}
}

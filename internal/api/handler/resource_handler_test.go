package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/api/middleware"
	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
	"github.com/tsmart/voyage-api/internal/core/service"
	"github.com/tsmart/voyage-api/internal/infrastructure/datastore/memory"
	"github.com/tsmart/voyage-api/pkg/logger"
)

func testGuard(v ports.TokenVerifier) Guard {
	return func(required domain.Role) echo.MiddlewareFunc {
		return middleware.Auth(v, required)
	}
}

// roleVerifier accepts the role name itself as a bearer token.
type roleVerifier struct{}

func (roleVerifier) VerifyToken(token string) (*domain.TokenPayload, error) {
	role, ok := domain.ParseRole(token)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return &domain.TokenPayload{Subject: "u-" + token, Role: role, Type: domain.TokenAccess}, nil
}

type resourceServer struct {
	e     *echo.Echo
	store *memory.Store
}

func newResourceServer(t *testing.T) *resourceServer {
	t.Helper()
	store := memory.New()
	resp := newFormatter()
	guard := testGuard(roleVerifier{})

	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = renderErrors(resp)

	NewYachtHandler(service.NewYachtService(store, logger.Nop()), resp).Routes(e.Group("/api/yachts"), guard, Access{
		OpList:   Public,
		OpGet:    Public,
		OpCreate: domain.RoleManager,
		OpUpdate: domain.RoleManager,
		OpDelete: domain.RoleAdmin,
	})
	NewUserHandler(service.NewUserService(store, logger.Nop()), resp).Routes(e.Group("/api/users"), guard, Access{
		OpList:   domain.RoleAdmin,
		OpUpdate: domain.RoleAdmin,
	})
	return &resourceServer{e: e, store: store}
}

func (s *resourceServer) do(t *testing.T, method, target, body, role string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if role != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+role)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	if rec.Body.Len() == 0 {
		return rec, nil
	}
	return rec, decodeEnvelope(t, rec)
}

const yachtBody = `{"name":"Blue Pearl","type":"Motor","capacity":12,"length":24.5,"year":2019,"pricePerDay":3500,"location":"Cesme"}`

func TestYachtRoutes_CreateRequiresManager(t *testing.T) {
	s := newResourceServer(t)

	if rec, _ := s.do(t, http.MethodPost, "/api/yachts", yachtBody, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec, _ := s.do(t, http.MethodPost, "/api/yachts", yachtBody, "CUSTOMER"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec, env := s.do(t, http.MethodPost, "/api/yachts", yachtBody, "MANAGER")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if env["message"] != "Yacht created successfully" {
		t.Fatalf("unexpected message: %v", env["message"])
	}
	data := env["data"].(map[string]any)
	if data["currency"] != "USD" || data["isAvailable"] != true {
		t.Fatalf("defaults not applied: %+v", data)
	}
	if features, ok := data["features"].([]any); !ok || len(features) != 0 {
		t.Fatalf("expected empty features, got %v", data["features"])
	}
	if data["id"] == "" || data["createdAt"] == nil {
		t.Fatalf("expected stored id and timestamps: %+v", data)
	}
}

func TestYachtRoutes_CreateValidation(t *testing.T) {
	s := newResourceServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/yachts", `{"name":"","capacity":80,"currency":"GBP"}`, "ADMIN")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	errBody := env["error"].(map[string]any)
	if errBody["code"] != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error: %+v", errBody)
	}
	fields := errBody["details"].(map[string]any)["errors"].([]any)
	names := map[string]bool{}
	for _, f := range fields {
		names[f.(map[string]any)["field"].(string)] = true
	}
	for _, want := range []string{"name", "capacity", "currency", "location"} {
		if !names[want] {
			t.Fatalf("expected %q among failing fields, got %v", want, names)
		}
	}
}

func TestYachtRoutes_ListIsPublicAndPaged(t *testing.T) {
	s := newResourceServer(t)
	for i := 0; i < 3; i++ {
		if rec, _ := s.do(t, http.MethodPost, "/api/yachts", yachtBody, "MANAGER"); rec.Code != http.StatusCreated {
			t.Fatalf("seed: %d", rec.Code)
		}
	}
	if rec, _ := s.do(t, http.MethodPost, "/api/yachts", strings.Replace(yachtBody, "Cesme", "Bodrum", 1), "MANAGER"); rec.Code != http.StatusCreated {
		t.Fatalf("seed: %d", rec.Code)
	}

	rec, env := s.do(t, http.MethodGet, "/api/yachts?page=1&limit=2&location=Cesme", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := len(env["data"].([]any)); got != 2 {
		t.Fatalf("expected 2 rows, got %d", got)
	}
	p := env["pagination"].(map[string]any)
	if p["total"] != float64(3) || p["totalPages"] != float64(2) || p["hasNext"] != true || p["hasPrev"] != false {
		t.Fatalf("unexpected pagination: %+v", p)
	}

	if rec, _ := s.do(t, http.MethodGet, "/api/yachts?limit=500", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit over 100, got %d", rec.Code)
	}
	if rec, _ := s.do(t, http.MethodGet, "/api/yachts?page=9223372036854775807&limit=100", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an out-of-range page, got %d", rec.Code)
	}
	if rec, _ := s.do(t, http.MethodGet, "/api/yachts?page=1000000&limit=100", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for the last allowed page, got %d", rec.Code)
	}
}

func TestYachtRoutes_EmptyListIsArray(t *testing.T) {
	s := newResourceServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/yachts", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rows, ok := env["data"].([]any); !ok || len(rows) != 0 {
		t.Fatalf("expected empty array, got %v", env["data"])
	}
}

func TestYachtRoutes_GetUpdateDelete(t *testing.T) {
	s := newResourceServer(t)
	_, env := s.do(t, http.MethodPost, "/api/yachts", yachtBody, "MANAGER")
	id := env["data"].(map[string]any)["id"].(string)

	rec, env := s.do(t, http.MethodGet, "/api/yachts/"+id, "", "")
	if rec.Code != http.StatusOK || env["data"].(map[string]any)["name"] != "Blue Pearl" {
		t.Fatalf("get: %d %v", rec.Code, env)
	}

	rec, env = s.do(t, http.MethodGet, "/api/yachts/does-not-exist", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := env["error"].(map[string]any)["message"]; msg != "Yacht with ID does-not-exist not found" {
		t.Fatalf("unexpected message: %v", msg)
	}

	if rec, _ := s.do(t, http.MethodGet, "/api/yachts/bad$id", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}

	if rec, _ := s.do(t, http.MethodPut, "/api/yachts/"+id, `{}`, "MANAGER"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", rec.Code)
	}

	rec, env = s.do(t, http.MethodPut, "/api/yachts/"+id, `{"pricePerDay":4200}`, "MANAGER")
	if rec.Code != http.StatusOK || env["data"].(map[string]any)["pricePerDay"] != float64(4200) {
		t.Fatalf("update: %d %v", rec.Code, env)
	}

	if rec, _ := s.do(t, http.MethodDelete, "/api/yachts/"+id, "", "MANAGER"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager delete, got %d", rec.Code)
	}
	rec, env = s.do(t, http.MethodDelete, "/api/yachts/"+id, "", "ADMIN")
	if rec.Code != http.StatusOK || env["message"] != "Yacht deleted successfully" {
		t.Fatalf("delete: %d %v", rec.Code, env)
	}
	if rec, _ := s.do(t, http.MethodDelete, "/api/yachts/"+id, "", "ADMIN"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestUserRoutes_HidePasswordHash(t *testing.T) {
	s := newResourceServer(t)
	u, err := s.store.Create(t.Context(), domain.TableUsers, ports.Record{
		"email":    "ops@example.com",
		"password": "$2a$12$hash",
		"role":     "CUSTOMER",
		"isActive": true,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	id := u["id"].(string)

	if rec, _ := s.do(t, http.MethodGet, "/api/users", "", "MANAGER"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager, got %d", rec.Code)
	}

	rec, env := s.do(t, http.MethodGet, "/api/users?role=CUSTOMER", "", "ADMIN")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rows := env["data"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected 1 user, got %d", len(rows))
	}
	if _, leaked := rows[0].(map[string]any)["password"]; leaked {
		t.Fatalf("password hash leaked in list")
	}

	rec, env = s.do(t, http.MethodPatch, "/api/users/"+id, `{"role":"MANAGER"}`, "ADMIN")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := env["data"].(map[string]any)
	if data["role"] != "MANAGER" {
		t.Fatalf("role not updated: %+v", data)
	}
	if _, leaked := data["password"]; leaked {
		t.Fatalf("password hash leaked in update")
	}

	if rec, _ := s.do(t, http.MethodPatch, "/api/users/"+id, `{"role":"ROOT"}`, "ADMIN"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", rec.Code)
	}
}

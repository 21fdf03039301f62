package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsmart/voyage-api/internal/api/reqctx"
	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/pkg/logger"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, &Pagination{Page: 2, Limit: 10, Total: 25, TotalPages: 3, HasNext: true, HasPrev: true}, NewPagination(2, 10, 25))
	assert.Equal(t, &Pagination{Page: 1, Limit: 10, Total: 5, TotalPages: 1}, NewPagination(1, 10, 5))
	assert.Equal(t, &Pagination{Page: 1, Limit: 10}, NewPagination(1, 10, 0))
	assert.Equal(t, 0, NewPagination(1, 0, 7).TotalPages)
}

func TestParseFilters(t *testing.T) {
	values := url.Values{
		"isAvailable": {"true"},
		"capacity":    {"12"},
		"price":       {"99.5"},
		"pricePerDay": {"2500000"},
		"location":    {"Cesme"},
		"empty":       {""},
		"ignored":     {"x"},
	}
	got := ParseFilters(values, []string{"isAvailable", "capacity", "price", "pricePerDay", "location", "empty", "missing"})
	assert.Equal(t, map[string]any{
		"isAvailable": true,
		"capacity":    float64(12),
		"price":       99.5,
		"pricePerDay": float64(2500000),
		"location":    "Cesme",
	}, got)
}

func TestFormatter_SuccessEnvelope(t *testing.T) {
	f := NewFormatter("v2", logger.Nop())
	f.now = func() time.Time { return time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC) }
	c, rec := newContext()
	reqctx.SetRequestID(c, "req-1")

	require.NoError(t, f.Success(c, []string{"a"}, "ok", NewPagination(1, 10, 1)))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "error")
	assert.Equal(t, []any{"a"}, body["data"])
	meta := body["meta"].(map[string]any)
	assert.Equal(t, "v2", meta["version"])
	assert.Equal(t, "req-1", meta["requestId"])
	assert.Equal(t, "2026-06-01T09:30:00.000Z", meta["timestamp"])
	assert.NotNil(t, body["pagination"])
}

func TestFormatter_StatusHelpers(t *testing.T) {
	f := NewFormatter("", logger.Nop())

	cases := []struct {
		name   string
		call   func(echo.Context) error
		status int
		msg    string
	}{
		{"created", func(c echo.Context) error { return f.Created(c, map[string]any{"id": "1"}, "") }, http.StatusCreated, "Resource created successfully"},
		{"updated", func(c echo.Context) error { return f.Updated(c, map[string]any{"id": "1"}, "") }, http.StatusOK, "Resource updated successfully"},
		{"deleted", func(c echo.Context) error { return f.Deleted(c, "") }, http.StatusOK, "Resource deleted successfully"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext()
			require.NoError(t, tc.call(c))
			assert.Equal(t, tc.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, true, body["success"])
			assert.Equal(t, tc.msg, body["message"])
			assert.Equal(t, "v1", body["meta"].(map[string]any)["version"])
		})
	}

	c, rec := newContext()
	require.NoError(t, f.NoContent(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestFormatter_ErrorHelpers(t *testing.T) {
	f := NewFormatter("v1", logger.Nop())

	cases := []struct {
		name   string
		call   func(echo.Context) error
		status int
		code   string
		msg    string
	}{
		{"validation", func(c echo.Context) error {
			return f.ValidationError(c, []domain.FieldError{{Field: "email", Message: "email is required", Code: "required"}}, "")
		}, http.StatusBadRequest, CodeValidation, "Validation failed"},
		{"bad request", func(c echo.Context) error { return f.BadRequest(c, "Invalid request data") }, http.StatusBadRequest, CodeBadRequest, "Invalid request data"},
		{"unauthorized", func(c echo.Context) error { return f.Unauthorized(c, "") }, http.StatusUnauthorized, CodeUnauthorized, "Authentication required"},
		{"forbidden", func(c echo.Context) error { return f.Forbidden(c, "") }, http.StatusForbidden, CodeForbidden, "Insufficient permissions"},
		{"not found", func(c echo.Context) error { return f.NotFound(c, "Yacht", "y-1") }, http.StatusNotFound, CodeNotFound, "Yacht with ID y-1 not found"},
		{"conflict", func(c echo.Context) error { return f.Conflict(c, "exists", nil) }, http.StatusConflict, CodeConflict, "exists"},
		{"too many", func(c echo.Context) error { return f.TooManyRequests(c, "") }, http.StatusTooManyRequests, CodeRateLimit, "Too many requests"},
		{"internal", func(c echo.Context) error { return f.InternalError(c, "") }, http.StatusInternalServerError, CodeInternal, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext()
			require.NoError(t, tc.call(c))
			assert.Equal(t, tc.status, rec.Code)

			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotContains(t, body, "data")
			assert.Equal(t, tc.msg, body["message"])
			e := body["error"].(map[string]any)
			assert.Equal(t, tc.code, e["code"])
			assert.Equal(t, tc.msg, e["message"])
		})
	}
}

func TestValidationFailed_Details(t *testing.T) {
	e := ValidationFailed(nil, "")
	b, err := json.Marshal(e.Details)
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":[]}`, string(b))
}

func TestNotFound_WithoutID(t *testing.T) {
	e := NotFound("", "")
	assert.Equal(t, "Resource not found", e.Message)
	assert.Equal(t, map[string]any{"resource": "Resource"}, e.Details)
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler(newFormatter())
	c, rec := newPayloadContext(http.MethodGet, "/health", nil)

	if err := h.Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if rec.Code != http.StatusOK || data["status"] != "ok" {
		t.Fatalf("unexpected response: %d %v", rec.Code, data)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := pingFunc(func(ctx context.Context) error {
		if _, has := ctx.Deadline(); !has {
			t.Fatalf("ping must run under a deadline")
		}
		return nil
	})
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	h := NewHealthHandler(newFormatter(), Dependency{Name: "supabase", Pinger: ok})
	c, rec := newPayloadContext(http.MethodGet, "/health/ready", nil)
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	h = NewHealthHandler(newFormatter(), Dependency{Name: "supabase", Pinger: ok}, Dependency{Name: "redis", Pinger: down})
	c, _ = newPayloadContext(http.MethodGet, "/health/ready", nil)
	err := h.Readiness(c)
	if status := apiErrorStatus(t, err); status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", status)
	}
}

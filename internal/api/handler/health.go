package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/api/response"
)

const readinessTimeout = 3 * time.Second

// Pinger is implemented by every backing service the API depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names a Pinger in the readiness report.
type Dependency struct {
	Name   string
	Pinger Pinger
}

// HealthHandler serves GET /health (liveness) and GET /health/ready (readiness).
type HealthHandler struct {
	resp *response.Formatter
	deps []Dependency
}

func NewHealthHandler(resp *response.Formatter, deps ...Dependency) *HealthHandler {
	return &HealthHandler{resp: resp, deps: deps}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Liveness confirms the process is alive.
//
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  response.Envelope
// @Router   /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return h.resp.Success(c, map[string]string{"status": "ok"}, "", nil)
}

// Readiness pings every dependency and answers 503 when any of them fails.
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  response.Envelope
// @Failure  503  {object}  response.Envelope
// @Router   /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.deps))
	healthy := true
	for _, d := range h.deps {
		if err := d.Pinger.Ping(ctx); err != nil {
			deps[d.Name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[d.Name] = dependencyStatus{Status: "ok"}
	}

	if !healthy {
		return response.Unavailable("Service dependencies are unhealthy", readinessResponse{
			Status:       "degraded",
			Dependencies: deps,
		})
	}
	return h.resp.Success(c, readinessResponse{Status: "ok", Dependencies: deps}, "", nil)
}

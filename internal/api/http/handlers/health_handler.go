package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
)

// Pinger reports backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	postgres Pinger
	redis    Pinger
}

// NewHealthHandler constructs handler.
func NewHealthHandler(postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{postgres: postgres, redis: redis}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(dto.NewEnvelope("alive", nil))
}

// Ready handles GET /health/ready, pinging both stores.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"postgres": "ok", "redis": "ok"}
	healthy := true

	if h.postgres == nil || h.postgres.Ping(c.Context()) != nil {
		checks["postgres"] = "unreachable"
		healthy = false
	}
	if h.redis == nil || h.redis.Ping(c.Context()) != nil {
		checks["redis"] = "unreachable"
		healthy = false
	}

	if !healthy {
		return c.Status(http.StatusServiceUnavailable).
			JSON(dto.NewEnvelope("not ready", checks))
	}
	return c.JSON(dto.NewEnvelope("ready", checks))
}

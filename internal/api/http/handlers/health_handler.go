package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/persistence"
)

// HealthHandler responds to liveness and readiness checks.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

type backend interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

func checkBackend(ctx context.Context, b backend) (string, bool) {
	if !b.Enabled() {
		return "disabled", true
	}
	if err := b.Ping(ctx); err != nil {
		return err.Error(), false
	}
	return "ok", true
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking the configured backends.
// Backends left unconfigured run in memory and do not affect readiness.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pgStatus, pgOK := checkBackend(ctx, h.postgres)
	redisStatus, redisOK := checkBackend(ctx, h.redis)
	depStatus := fiber.Map{"postgres": pgStatus, "redis": redisStatus}
	ready := pgOK && redisOK

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

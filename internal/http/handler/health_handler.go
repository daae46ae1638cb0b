package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger is anything readiness depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthDeps groups dependencies required by the health endpoints.
type HealthDeps struct {
	Logger      *zap.Logger
	Environment string
	Version     string
	Storage     Pinger
}

// HealthHandler serves liveness and readiness checks.
type HealthHandler struct {
	logger      *zap.Logger
	environment string
	version     string
	storage     Pinger
	now         func() time.Time
}

func NewHealthHandler(deps HealthDeps) *HealthHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		logger:      logger,
		environment: deps.Environment,
		version:     deps.Version,
		storage:     deps.Storage,
		now:         time.Now,
	}
}

func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "ok",
		"timestamp":   h.now().UTC().Format(time.RFC3339Nano),
		"environment": h.environment,
		"version":     h.version,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.storage != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.storage.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  "storage unreachable",
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

package handlers

import (
	"time"

	"recipe-share-api/domain"

	"github.com/gofiber/fiber/v2"
)

// Version is overridden at build time with -ldflags.
var Version = "1.0.0"

type (
	HealthHandler interface {
		Health(c *fiber.Ctx) error
	}

	healthHandler struct {
		appName string
	}
)

func NewHealthHandler(appName string) HealthHandler {
	return &healthHandler{appName: appName}
}

// Health is served bare, without the response envelope.
func (h *healthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(domain.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		App:       h.appName,
		Version:   Version,
	})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/fixtures"
	"github.com/opcopilot/opcopilot/internal/observability"
)

// AdminHandler exposes fixture documents and runtime counters.
type AdminHandler struct {
	loader  *fixtures.Loader
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(loader *fixtures.Loader, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{loader: loader, metrics: metrics}
}

// Fixture handles GET /api/fixtures/:name and returns the raw document.
func (h *AdminHandler) Fixture(c *fiber.Ctx) error {
	doc, notice := h.loader.Document(c.Params("name"))
	return c.JSON(fiber.Map{"data": doc, "notice": notice})
}

// Reload handles POST /api/fixtures/reload.
func (h *AdminHandler) Reload(c *fiber.Ctx) error {
	h.loader.Reload()
	return data(c, fiber.Map{
		"demo_notice":      h.loader.Demo().Notice,
		"templates_notice": h.loader.Templates().Notice,
	})
}

// Metrics handles GET /metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/service"
)

// DashboardHandler serves the dashboard and the top-level pages.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Dashboard handles GET /api/dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	d, err := h.dashboard.Dashboard(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, d)
}

// Page handles GET /api/pages/:page.
func (h *DashboardHandler) Page(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	view, err := h.dashboard.Page(c.UserContext(), user, c.Params("page"))
	if err != nil {
		return err
	}
	return data(c, view)
}

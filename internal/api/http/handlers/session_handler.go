package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/api/dto"
	"github.com/opcopilot/opcopilot/internal/service"
)

// SessionHandler exposes the per-user navigation state.
type SessionHandler struct {
	navigation *service.NavigationService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(navigation *service.NavigationService) *SessionHandler {
	return &SessionHandler{navigation: navigation}
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	sess, err := h.navigation.Current(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, sess)
}

// SetPage handles PUT /api/session/page.
func (h *SessionHandler) SetPage(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SelectPageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	sess, err := h.navigation.SetPage(c.UserContext(), user, req.Page)
	if err != nil {
		return err
	}
	return data(c, sess)
}

// SelectOperation handles PUT /api/session/operation.
func (h *SessionHandler) SelectOperation(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SelectOperationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	sess, err := h.navigation.SelectOperation(c.UserContext(), user, req.OperationID)
	if err != nil {
		return err
	}
	return data(c, sess)
}

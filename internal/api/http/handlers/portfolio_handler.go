package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/api/dto"
	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/repository"
	"github.com/opcopilot/opcopilot/internal/service"
)

// PortfolioHandler exposes operation listing, detail and creation.
type PortfolioHandler struct {
	portfolio *service.PortfolioService
}

// NewPortfolioHandler constructs handler.
func NewPortfolioHandler(portfolio *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio}
}

// List handles GET /api/portfolio?status=&type=&q=.
func (h *PortfolioHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	filter := repository.OperationFilter{
		Status: domain.OperationStatus(strings.ToUpper(c.Query("status"))),
		Type:   domain.OperationType(strings.ToUpper(c.Query("type"))),
		Search: strings.TrimSpace(c.Query("q")),
	}
	ops, err := h.portfolio.List(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":   service.Summarize(ops),
		"notice": h.portfolio.Notice(),
	})
}

// Create handles POST /api/operations.
func (h *PortfolioHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateOperationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	op, phases, err := h.portfolio.Create(c.UserContext(), user, service.CreateOperationInput{
		Name:         req.Name,
		Type:         domain.OperationType(req.Type),
		Municipality: req.Municipality,
		Budget:       req.Budget,
		Units:        req.Units,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ACO:          req.ACO,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ToOperationResponse(op, phases)})
}

// Get handles GET /api/operations/:id.
func (h *PortfolioHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	op, err := h.portfolio.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	phases, err := h.portfolio.Phases(c.UserContext(), user, op.ID)
	if err != nil {
		return err
	}
	return data(c, dto.ToOperationResponse(op, phases))
}

// Timeline handles GET /api/operations/:id/timeline.
func (h *PortfolioHandler) Timeline(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	_, layout, err := h.portfolio.Timeline(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, dto.ToTimelineResponse(layout))
}

// Templates handles GET /api/templates.
func (h *PortfolioHandler) Templates(c *fiber.Ctx) error {
	templates := h.portfolio.Templates()
	return c.JSON(fiber.Map{
		"data":   templates.Types,
		"notice": templates.Notice,
	})
}

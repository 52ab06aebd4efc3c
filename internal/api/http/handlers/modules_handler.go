package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/api/dto"
	"github.com/opcopilot/opcopilot/internal/service"
)

// ModulesHandler exposes the per-operation modules.
type ModulesHandler struct {
	modules *service.ModuleService
}

// NewModulesHandler constructs handler.
func NewModulesHandler(modules *service.ModuleService) *ModulesHandler {
	return &ModulesHandler{modules: modules}
}

// REM handles GET /api/operations/:id/rem.
func (h *ModulesHandler) REM(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	report, err := h.modules.REM(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, report)
}

// Amendments handles GET /api/operations/:id/amendments.
func (h *ModulesHandler) Amendments(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	report, err := h.modules.Amendments(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, report)
}

// CreateAmendment handles POST /api/operations/:id/amendments.
func (h *ModulesHandler) CreateAmendment(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateAmendmentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	amendment, err := h.modules.CreateAmendment(c.UserContext(), user, c.Params("id"), service.AmendmentInput{
		Reason:       req.Reason,
		BudgetImpact: req.BudgetImpact,
		DelayImpact:  req.DelayImpact,
		Description:  req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": amendment})
}

// Notices handles GET /api/operations/:id/notices.
func (h *ModulesHandler) Notices(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	report, err := h.modules.Notices(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, report)
}

// CreateNotice handles POST /api/operations/:id/notices.
func (h *ModulesHandler) CreateNotice(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateNoticeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	notice, err := h.modules.CreateNotice(c.UserContext(), user, c.Params("id"), service.NoticeInput{
		Type:            req.Type,
		Recipient:       req.Recipient,
		Reasons:         req.Reasons,
		ConformityDelay: req.ConformityDelay,
		Details:         req.Details,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": notice})
}

// RemindNotices handles POST /api/operations/:id/notices/remind.
func (h *ModulesHandler) RemindNotices(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	reminded, err := h.modules.RemindPendingNotices(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, fiber.Map{"reminded": reminded, "count": len(reminded)})
}

// Utilities handles GET /api/operations/:id/utilities.
func (h *ModulesHandler) Utilities(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	report, err := h.modules.Utilities(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, report)
}

// RemindUtility handles POST /api/operations/:id/utilities/:provider/remind.
func (h *ModulesHandler) RemindUtility(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	result, err := h.modules.RemindUtility(c.UserContext(), user, c.Params("id"), c.Params("provider"))
	if err != nil {
		return err
	}
	return data(c, result)
}

// Settlement handles GET /api/operations/:id/settlement.
func (h *ModulesHandler) Settlement(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	report, err := h.modules.Settlement(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, report)
}

// Claims handles GET /api/operations/:id/claims.
func (h *ModulesHandler) Claims(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	report, err := h.modules.Claims(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, report)
}

// CreateClaim handles POST /api/operations/:id/claims.
func (h *ModulesHandler) CreateClaim(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	claim, err := h.modules.CreateClaim(c.UserContext(), user, c.Params("id"), service.ClaimInput{
		Unit:        req.Unit,
		Tenant:      req.Tenant,
		Type:        req.Type,
		Urgency:     req.Urgency,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": claim})
}

// Closure handles GET /api/operations/:id/closure.
func (h *ModulesHandler) Closure(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	report, err := h.modules.Closure(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, report)
}

// CheckClosureItem handles PUT /api/operations/:id/closure/items/:index.
func (h *ModulesHandler) CheckClosureItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid checklist index")
	}
	report, err := h.modules.CheckClosureItem(c.UserContext(), user, c.Params("id"), index)
	if err != nil {
		return err
	}
	return data(c, report)
}

// Close handles POST /api/operations/:id/closure.
func (h *ModulesHandler) Close(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	report, err := h.modules.Close(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, report)
}

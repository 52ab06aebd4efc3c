package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/api/dto"
	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/service"
	"github.com/opcopilot/opcopilot/internal/web"
	apperrors "github.com/opcopilot/opcopilot/pkg/util/errorutil"
)

type moduleAction func(ctx context.Context, user *domain.User, operationID string) error

// CreateAmendment handles POST /operations/:id/amendments.
func (h *PagesHandler) CreateAmendment(c *fiber.Ctx) error {
	return h.runModuleAction(c, web.SectionAmendments, func(ctx context.Context, user *domain.User, id string) error {
		var req dto.CreateAmendmentRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidForm()
		}
		_, err := h.modules.CreateAmendment(ctx, user, id, service.AmendmentInput{
			Reason:       req.Reason,
			BudgetImpact: req.BudgetImpact,
			DelayImpact:  req.DelayImpact,
			Description:  req.Description,
		})
		return err
	})
}

// CreateNotice handles POST /operations/:id/notices.
func (h *PagesHandler) CreateNotice(c *fiber.Ctx) error {
	return h.runModuleAction(c, web.SectionNotices, func(ctx context.Context, user *domain.User, id string) error {
		var req dto.CreateNoticeRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidForm()
		}
		_, err := h.modules.CreateNotice(ctx, user, id, service.NoticeInput{
			Type:            req.Type,
			Recipient:       req.Recipient,
			Reasons:         req.Reasons,
			ConformityDelay: req.ConformityDelay,
			Details:         req.Details,
		})
		return err
	})
}

// RemindNotices handles POST /operations/:id/notices/remind.
func (h *PagesHandler) RemindNotices(c *fiber.Ctx) error {
	return h.runModuleAction(c, web.SectionNotices, func(ctx context.Context, user *domain.User, id string) error {
		_, err := h.modules.RemindPendingNotices(ctx, user, id)
		return err
	})
}

// RemindUtility handles POST /operations/:id/utilities/:provider/remind.
func (h *PagesHandler) RemindUtility(c *fiber.Ctx) error {
	return h.runModuleAction(c, web.SectionUtilities, func(ctx context.Context, user *domain.User, id string) error {
		_, err := h.modules.RemindUtility(ctx, user, id, c.Params("provider"))
		return err
	})
}

// CreateClaim handles POST /operations/:id/claims.
func (h *PagesHandler) CreateClaim(c *fiber.Ctx) error {
	return h.runModuleAction(c, web.SectionClaims, func(ctx context.Context, user *domain.User, id string) error {
		var req dto.CreateClaimRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidForm()
		}
		_, err := h.modules.CreateClaim(ctx, user, id, service.ClaimInput{
			Unit:        req.Unit,
			Tenant:      req.Tenant,
			Type:        req.Type,
			Urgency:     req.Urgency,
			Description: req.Description,
		})
		return err
	})
}

// CheckClosureItem handles POST /operations/:id/closure/items/:index.
func (h *PagesHandler) CheckClosureItem(c *fiber.Ctx) error {
	return h.runModuleAction(c, web.SectionClosure, func(ctx context.Context, user *domain.User, id string) error {
		index, err := c.ParamsInt("index")
		if err != nil {
			return apperrors.NewValidationError("invalid checklist index", nil)
		}
		_, err = h.modules.CheckClosureItem(ctx, user, id, index)
		return err
	})
}

// CloseOperation handles POST /operations/:id/closure.
func (h *PagesHandler) CloseOperation(c *fiber.Ctx) error {
	return h.runModuleAction(c, web.SectionClosure, func(ctx context.Context, user *domain.User, id string) error {
		_, err := h.modules.Close(ctx, user, id)
		return err
	})
}

func invalidForm() error {
	return apperrors.NewValidationError("invalid form", nil)
}

// runModuleAction redirects back to the section on success. Validation errors
// and conflicts re-render the operation page with the message in the section;
// anything else goes to the error page.
func (h *PagesHandler) runModuleAction(c *fiber.Ctx, sectionID string, action moduleAction) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	id := c.Params("id")

	if err := action(ctx, user, id); err != nil {
		domainErr := apperrors.ToDomainError(err)
		status := http.StatusUnprocessableEntity
		switch domainErr.Code {
		case apperrors.CodeValidation:
		case apperrors.CodeConflict:
			status = http.StatusConflict
		default:
			return err
		}
		return h.rejectModule(c, user, id, status, sectionID, validationMessage(domainErr))
	}
	return c.Redirect("/operations/"+url.PathEscape(id)+"#"+sectionID, http.StatusSeeOther)
}

func (h *PagesHandler) rejectModule(c *fiber.Ctx, user *domain.User, id string, status int, sectionID, msg string) error {
	ctx := c.UserContext()
	sess, err := h.navigation.SelectOperation(ctx, user, id)
	if err != nil {
		return err
	}
	view, err := h.operationView(ctx, user, id)
	if err != nil {
		return err
	}
	view.Errors = map[string]string{sectionID: msg}
	shell, err := h.shell(ctx, user, sess)
	if err != nil {
		return err
	}
	return renderHTML(c, status, web.Layout(view.Operation.Name, shell, web.OperationPage(view)))
}

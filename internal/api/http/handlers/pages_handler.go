package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/api/dto"
	"github.com/opcopilot/opcopilot/internal/auth"
	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/repository"
	"github.com/opcopilot/opcopilot/internal/service"
	"github.com/opcopilot/opcopilot/internal/web"
	apperrors "github.com/opcopilot/opcopilot/pkg/util/errorutil"
)

// PagesHandler serves the server-rendered HTML screens.
type PagesHandler struct {
	auth       *service.AuthService
	navigation *service.NavigationService
	dashboard  *service.DashboardService
	portfolio  *service.PortfolioService
	modules    *service.ModuleService
	cookie     CookieSettings
}

// PagesDependencies groups the services behind the HTML screens.
type PagesDependencies struct {
	Auth       *service.AuthService
	Navigation *service.NavigationService
	Dashboard  *service.DashboardService
	Portfolio  *service.PortfolioService
	Modules    *service.ModuleService
	Cookie     CookieSettings
}

// NewPagesHandler constructs handler.
func NewPagesHandler(deps PagesDependencies) *PagesHandler {
	return &PagesHandler{
		auth:       deps.Auth,
		navigation: deps.Navigation,
		dashboard:  deps.Dashboard,
		portfolio:  deps.Portfolio,
		modules:    deps.Modules,
		cookie:     deps.Cookie,
	}
}

func renderHTML(c *fiber.Ctx, status int, comp templ.Component) error {
	c.Status(status)
	c.Type("html", "utf-8")
	return comp.Render(c.UserContext(), c.Response().BodyWriter())
}

// LoginForm handles GET /login.
func (h *PagesHandler) LoginForm(c *fiber.Ctx) error {
	return renderHTML(c, http.StatusOK, web.LoginPage(""))
}

// Login handles POST /login.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return renderHTML(c, http.StatusBadRequest, web.LoginPage("Formulaire invalide"))
	}
	_, token, exp, err := h.auth.Login(c.UserContext(), req.Login, req.Password)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		switch domainErr.Code {
		case apperrors.CodeValidation:
			return renderHTML(c, http.StatusBadRequest, web.LoginPage("Identifiant et mot de passe requis"))
		case apperrors.CodeUnauthorized:
			return renderHTML(c, http.StatusUnauthorized, web.LoginPage("Identifiants incorrects"))
		}
		return err
	}
	setSessionCookie(c, h.cookie, token, exp)
	return c.Redirect("/", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *PagesHandler) Logout(c *fiber.Ctx) error {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		if err := h.auth.Logout(c.UserContext(), principal); err != nil {
			return err
		}
	}
	clearSessionCookie(c, h.cookie)
	return c.Redirect("/login", http.StatusSeeOther)
}

// Home handles GET /?page=. A page query moves the session to that page;
// otherwise the session decides what to show.
func (h *PagesHandler) Home(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var sess *domain.Session
	if raw := c.Query("page"); raw != "" {
		sess, err = h.navigation.SetPage(ctx, user, raw)
	} else {
		sess, err = h.navigation.Current(ctx, user)
	}
	if err != nil {
		return err
	}
	if sess.SelectedOperationID != "" {
		return c.Redirect("/operations/"+sess.SelectedOperationID, http.StatusSeeOther)
	}

	view, err := h.dashboard.Page(ctx, user, string(sess.Page))
	if err != nil {
		return err
	}
	shell, err := h.shell(ctx, user, sess)
	if err != nil {
		return err
	}
	return renderHTML(c, http.StatusOK, web.Layout(view.Title, shell, web.PageContent(view)))
}

// Operation handles GET /operations/:id.
func (h *PagesHandler) Operation(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	id := c.Params("id")

	sess, err := h.navigation.SelectOperation(ctx, user, id)
	if err != nil {
		return err
	}
	view, err := h.operationView(ctx, user, id)
	if err != nil {
		return err
	}
	shell, err := h.shell(ctx, user, sess)
	if err != nil {
		return err
	}
	return renderHTML(c, http.StatusOK, web.Layout(view.Operation.Name, shell, web.OperationPage(view)))
}

// CreateOperation handles POST /operations from the new-operation form.
func (h *PagesHandler) CreateOperation(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var req dto.CreateOperationRequest
	if err := c.BodyParser(&req); err != nil {
		return h.rejectCreate(c, user, "Formulaire invalide")
	}
	op, _, err := h.portfolio.Create(ctx, user, service.CreateOperationInput{
		Name:         req.Name,
		Type:         domain.OperationType(req.Type),
		Municipality: req.Municipality,
		Budget:       req.Budget,
		Units:        req.Units,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		if domainErr := apperrors.ToDomainError(err); domainErr.Code == apperrors.CodeValidation {
			return h.rejectCreate(c, user, validationMessage(domainErr))
		}
		return err
	}
	return c.Redirect("/operations/"+op.ID, http.StatusSeeOther)
}

func validationMessage(err *apperrors.DomainError) string {
	if fields, ok := err.Details["fields"].([]string); ok && len(fields) > 0 {
		return err.Message + ": " + strings.Join(fields, ", ")
	}
	return err.Message
}

func (h *PagesHandler) rejectCreate(c *fiber.Ctx, user *domain.User, msg string) error {
	ctx := c.UserContext()
	view, err := h.dashboard.Page(ctx, user, string(domain.PageNewOperation))
	if err != nil {
		return err
	}
	sess, err := h.navigation.Current(ctx, user)
	if err != nil {
		return err
	}
	shell, err := h.shell(ctx, user, sess)
	if err != nil {
		return err
	}
	return renderHTML(c, http.StatusUnprocessableEntity, web.Layout(view.Title, shell, web.NewOperationContent(view.Types, msg)))
}

func (h *PagesHandler) shell(ctx context.Context, user *domain.User, sess *domain.Session) (web.Shell, error) {
	ops, err := h.portfolio.List(ctx, user, repository.OperationFilter{})
	if err != nil {
		return web.Shell{}, err
	}
	return web.Shell{
		User:       user,
		Page:       sess.Page,
		SelectedID: sess.SelectedOperationID,
		Operations: service.Summarize(ops),
	}, nil
}

func (h *PagesHandler) operationView(ctx context.Context, user *domain.User, id string) (web.OperationView, error) {
	var (
		v   web.OperationView
		err error
	)
	if v.Operation, v.Timeline, err = h.portfolio.Timeline(ctx, user, id); err != nil {
		return v, err
	}
	if v.REM, err = h.modules.REM(ctx, user, id); err != nil {
		return v, err
	}
	if v.Amendments, err = h.modules.Amendments(ctx, user, id); err != nil {
		return v, err
	}
	if v.Notices, err = h.modules.Notices(ctx, user, id); err != nil {
		return v, err
	}
	if v.Utilities, err = h.modules.Utilities(ctx, user, id); err != nil {
		return v, err
	}
	if v.Settlement, err = h.modules.Settlement(ctx, user, id); err != nil {
		return v, err
	}
	if v.Claims, err = h.modules.Claims(ctx, user, id); err != nil {
		return v, err
	}
	if v.Closure, err = h.modules.Closure(ctx, user, id); err != nil {
		return v, err
	}
	return v, nil
}

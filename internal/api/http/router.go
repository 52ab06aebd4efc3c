package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/api/http/handlers"
	"github.com/opcopilot/opcopilot/internal/auth"
	"github.com/opcopilot/opcopilot/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Dashboard      *handlers.DashboardHandler
	Session        *handlers.SessionHandler
	Portfolio      *handlers.PortfolioHandler
	Modules        *handlers.ModulesHandler
	Admin          *handlers.AdminHandler
	Pages          *handlers.PagesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Admin.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Get("/me", cfg.Auth.Me)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	api.Get("/dashboard", cfg.Dashboard.Dashboard)
	api.Get("/pages/:page", cfg.Dashboard.Page)
	api.Get("/portfolio", cfg.Portfolio.List)
	api.Get("/templates", cfg.Portfolio.Templates)

	api.Get("/session", cfg.Session.Get)
	api.Put("/session/page", cfg.Session.SetPage)
	api.Put("/session/operation", cfg.Session.SelectOperation)

	api.Post("/operations", cfg.Portfolio.Create)
	ops := api.Group("/operations/:id")
	ops.Get("", cfg.Portfolio.Get)
	ops.Get("/timeline", cfg.Portfolio.Timeline)
	ops.Get("/rem", cfg.Modules.REM)
	ops.Get("/amendments", cfg.Modules.Amendments)
	ops.Post("/amendments", cfg.Modules.CreateAmendment)
	ops.Get("/notices", cfg.Modules.Notices)
	ops.Post("/notices", cfg.Modules.CreateNotice)
	ops.Post("/notices/remind", cfg.Modules.RemindNotices)
	ops.Get("/utilities", cfg.Modules.Utilities)
	ops.Post("/utilities/:provider/remind", cfg.Modules.RemindUtility)
	ops.Get("/settlement", cfg.Modules.Settlement)
	ops.Get("/claims", cfg.Modules.Claims)
	ops.Post("/claims", cfg.Modules.CreateClaim)
	ops.Get("/closure", cfg.Modules.Closure)
	ops.Put("/closure/items/:index", cfg.Modules.CheckClosureItem)
	ops.Post("/closure", cfg.Modules.Close)

	admin := api.Group("/fixtures", auth.RequireRole(domain.UserRoleAdmin))
	admin.Get("/:name", cfg.Admin.Fixture)
	admin.Post("/reload", cfg.Admin.Reload)

	app.Get("/login", htmlErrors, cfg.Pages.LoginForm)
	app.Post("/login", htmlErrors, cfg.Pages.Login)

	page := cfg.AuthMiddleware.HandlePage
	app.Post("/logout", htmlErrors, page, cfg.Pages.Logout)
	app.Get("/", htmlErrors, page, cfg.Pages.Home)
	app.Post("/operations", htmlErrors, page, cfg.Pages.CreateOperation)
	app.Get("/operations/:id", htmlErrors, page, cfg.Pages.Operation)

	app.Post("/operations/:id/amendments", htmlErrors, page, cfg.Pages.CreateAmendment)
	app.Post("/operations/:id/notices", htmlErrors, page, cfg.Pages.CreateNotice)
	app.Post("/operations/:id/notices/remind", htmlErrors, page, cfg.Pages.RemindNotices)
	app.Post("/operations/:id/utilities/:provider/remind", htmlErrors, page, cfg.Pages.RemindUtility)
	app.Post("/operations/:id/claims", htmlErrors, page, cfg.Pages.CreateClaim)
	app.Post("/operations/:id/closure/items/:index", htmlErrors, page, cfg.Pages.CheckClosureItem)
	app.Post("/operations/:id/closure", htmlErrors, page, cfg.Pages.CloseOperation)
}

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/opcopilot/opcopilot/internal/api/http/handlers"
	"github.com/opcopilot/opcopilot/internal/auth"
	"github.com/opcopilot/opcopilot/internal/config"
	"github.com/opcopilot/opcopilot/internal/events"
	"github.com/opcopilot/opcopilot/internal/fixtures"
	"github.com/opcopilot/opcopilot/internal/observability"
	"github.com/opcopilot/opcopilot/internal/persistence"
	"github.com/opcopilot/opcopilot/internal/repository"
	"github.com/opcopilot/opcopilot/internal/service"
)

const cookieName = "opcopilot_session"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{}, logger)
	require.NoError(t, err)
	redis := persistence.NewRedis(ctx, config.RedisConfig{}, logger)

	directory, err := auth.NewDirectory(auth.DemoCredentials, bcrypt.MinCost)
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", 60)
	sessions := repository.NewMemorySessionStore()
	loader := fixtures.NewLoader(filepath.Join("..", "..", "..", "data"), "demo_data.json", "templates_phases.json", logger)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(directory, tokens, sessions, logger)
	portfolio := service.NewPortfolioService(service.PortfolioDependencies{
		Loader:     loader,
		Repo:       repository.NewMemoryOperationRepository(),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	navigation := service.NewNavigationService(sessions, portfolio)
	dashboard := service.NewDashboardService(loader, portfolio)
	modules := service.NewModuleService(service.ModuleDependencies{
		Loader:      loader,
		Portfolio:   portfolio,
		Submissions: repository.NewSubmissionStore(),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	cookie := handlers.CookieSettings{Name: cookieName}

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:    handlers.NewHealthHandler("opcopilot", "test", pg, redis),
		Auth:      handlers.NewAuthHandler(authService, navigation, cookie),
		Dashboard: handlers.NewDashboardHandler(dashboard),
		Session:   handlers.NewSessionHandler(navigation),
		Portfolio: handlers.NewPortfolioHandler(portfolio),
		Modules:   handlers.NewModulesHandler(modules),
		Admin:     handlers.NewAdminHandler(loader, metrics),
		Pages: handlers.NewPagesHandler(handlers.PagesDependencies{
			Auth:       authService,
			Navigation: navigation,
			Dashboard:  dashboard,
			Portfolio:  portfolio,
			Modules:    modules,
			Cookie:     cookie,
		}),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, directory, sessions, cookieName),
	})
	return app
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (*nethttp.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func login(t *testing.T, app *fiber.App, user, password string) string {
	t.Helper()
	resp, env := do(t, app, nethttp.MethodPost, "/auth/login", "", `{"login":"`+user+`","password":"`+password+`"}`)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var payload struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEmpty(t, payload.Auth.Token)
	return payload.Auth.Token
}

func TestHealthWithInMemoryBackends(t *testing.T) {
	app := newTestApp(t)

	resp, _ := do(t, app, nethttp.MethodGet, "/health/live", "", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(nethttp.MethodGet, "/health/ready", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, map[string]any{"postgres": "disabled", "redis": "disabled"}, body["dependencies"])
}

func TestAPIRequiresAuthentication(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, nethttp.MethodGet, "/api/portfolio", "", "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	resp, _ = do(t, app, nethttp.MethodPost, "/auth/login", "", `{"login":"aco1","password":"nope"}`)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

func TestPortfolioScopeAndAccess(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "aco1", "password1")

	resp, env := do(t, app, nethttp.MethodGet, "/api/portfolio", token, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var rows []service.OperationSummary
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "aco1", r.ACO)
	}

	resp, env = do(t, app, nethttp.MethodGet, "/api/operations/3", token, "")
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	resp, env = do(t, app, nethttp.MethodGet, "/api/operations/999/timeline", token, "")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	resp, _ = do(t, app, nethttp.MethodGet, "/api/operations/1/timeline", token, "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestCreateOperation(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "aco2", "password2")

	resp, env := do(t, app, nethttp.MethodPost, "/api/operations", token, `{"nom":"Les Palmiers"}`)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	resp, env = do(t, app, nethttp.MethodPost, "/api/operations", token,
		`{"nom":"Les Palmiers","type":"vefa","commune":"Le Moule","budget_total":1200000,"nb_logements":18,"date_debut":"2025-01-06"}`)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	var created struct {
		ID     string `json:"id"`
		ACO    string `json:"aco"`
		Phases []any  `json:"phases"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "aco2", created.ACO)
	assert.NotEmpty(t, created.Phases)

	resp, env = do(t, app, nethttp.MethodGet, "/api/portfolio", token, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var rows []service.OperationSummary
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 2)
}

func TestClosureFlow(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "aco1", "password1")

	resp, env := do(t, app, nethttp.MethodPost, "/api/operations/1/closure", token, "")
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Len(t, env.Error.Details["pending"], 4)

	resp, _ = do(t, app, nethttp.MethodPut, "/api/operations/1/closure/items/9", token, "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	for _, idx := range []string{"2", "3", "4", "5"} {
		resp, _ = do(t, app, nethttp.MethodPut, "/api/operations/1/closure/items/"+idx, token, "")
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	}

	resp, env = do(t, app, nethttp.MethodPost, "/api/operations/1/closure", token, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var report service.ClosureReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.True(t, report.Closed)

	resp, _ = do(t, app, nethttp.MethodPost, "/api/operations/1/closure", token, "")
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "aco1", "password1")

	resp, _ := do(t, app, nethttp.MethodGet, "/auth/me", token, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, nethttp.MethodPost, "/auth/logout", token, "")
	require.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, app, nethttp.MethodGet, "/auth/me", token, "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

func TestFixturesRequireAdmin(t *testing.T) {
	app := newTestApp(t)

	resp, _ := do(t, app, nethttp.MethodGet, "/api/fixtures/demo_data.json", login(t, app, "aco1", "password1"), "")
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	admin := login(t, app, "admin", "admin")
	resp, env := do(t, app, nethttp.MethodGet, "/api/fixtures/demo_data.json", admin, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.Contains(t, doc, "operations_demo")

	resp, _ = do(t, app, nethttp.MethodGet, "/metrics", "", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestHTMLPages(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	form := url.Values{"login": {"aco1"}, "password": {"wrong"}}
	req := httptest.NewRequest(nethttp.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	form.Set("password", "password1")
	req = httptest.NewRequest(nethttp.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	var session *nethttp.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	get := func(path string) (*nethttp.Response, string) {
		req := httptest.NewRequest(nethttp.MethodGet, path, nil)
		req.AddCookie(session)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(raw)
	}

	resp, body := get("/")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Mon Tableau de Bord")
	assert.Contains(t, body, "ZAC Bellevue")

	resp, body = get("/operations/1")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Timeline - ZAC Bellevue")
	assert.Contains(t, body, "<svg")

	resp, _ = get("/")
	assert.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/operations/1", resp.Header.Get("Location"))

	resp, body = get("/?page=freins")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Freins Actifs")
	assert.Contains(t, body, "Résidence Soleil")

	resp, body = get("/operations/3")
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Erreur 403")

	post := func(path string, form url.Values) (*nethttp.Response, string) {
		req := httptest.NewRequest(nethttp.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(session)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(raw)
	}

	_, body = get("/operations/1")
	assert.Contains(t, body, `action="/operations/1/amendments"`)
	assert.Contains(t, body, "Relancer MED")
	assert.Contains(t, body, "Relancer EDF")

	resp, _ = post("/operations/1/amendments", url.Values{
		"motif": {"Plus-value travaux"}, "impact_budget": {"1000"}, "impact_delai": {"5"}, "description": {"Renfort dalle"},
	})
	require.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/operations/1#avenants", resp.Header.Get("Location"))
	_, body = get("/operations/1")
	assert.Contains(t, body, "AV-004")

	resp, _ = post("/operations/1/notices", url.Values{
		"type": {"MED_SPS"}, "destinataire": {"Bureau Alpha"},
		"motifs": {"Retard dans les études", "Documents manquants"}, "delai_conformite": {"10"},
	})
	require.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	_, body = get("/operations/1")
	assert.Contains(t, body, "Bureau Alpha")

	resp, _ = post("/operations/1/notices/remind", nil)
	assert.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/operations/1#med", resp.Header.Get("Location"))

	resp, _ = post("/operations/1/utilities/EDF/remind", nil)
	assert.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	resp, body = post("/operations/1/utilities/GAZ/remind", nil)
	assert.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "unknown utility provider")

	resp, body = post("/operations/1/claims", url.Values{"logement": {"B204"}})
	assert.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "required fields missing: locataire, description")
	assert.Contains(t, body, "Timeline - ZAC Bellevue")

	resp, _ = post("/operations/1/claims", url.Values{
		"logement": {"B204"}, "locataire": {"M. Ramassamy"}, "type": {"Plomberie"}, "description": {"Fuite sous évier"},
	})
	require.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	_, body = get("/operations/1")
	assert.Contains(t, body, "Fuite sous évier")

	resp, body = post("/operations/1/closure", nil)
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Complétez tous les éléments de la checklist")

	for i := 2; i < 6; i++ {
		resp, _ = post(fmt.Sprintf("/operations/1/closure/items/%d", i), nil)
		require.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	}
	resp, _ = post("/operations/1/closure", nil)
	require.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/operations/1#cloture", resp.Header.Get("Location"))
	_, body = get("/operations/1")
	assert.Contains(t, body, "Opération clôturée")

	resp, body = post("/operations/3/claims", url.Values{"logement": {"A1"}})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "Erreur 403")
}

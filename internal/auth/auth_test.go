package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/opcopilot/opcopilot/internal/domain"
	apperrors "github.com/opcopilot/opcopilot/pkg/util/errorutil"
)

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, id string) (bool, error) {
	return r[id], nil
}

func newDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := NewDirectory(DemoCredentials, bcrypt.MinCost)
	require.NoError(t, err)
	return d
}

func TestDirectoryAuthenticate(t *testing.T) {
	d := newDirectory(t)

	user, err := d.Authenticate("aco1", "password1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleACOSenior, user.Role)

	user, err = d.Authenticate("  ACO2 ", "password2")
	require.NoError(t, err)
	assert.Equal(t, "aco2", user.Login)

	_, err = d.Authenticate("aco1", "password2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = d.Authenticate("nobody", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Len(t, d.Users(), len(DemoCredentials))
	assert.Equal(t, "aco1", d.Users()[0].Login)
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	user := &domain.User{Login: "aco3", Role: domain.UserRoleACO}

	token, exp, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "aco3", claims.Login)
	assert.Equal(t, domain.UserRoleACO, claims.Role)
	assert.NotEmpty(t, claims.ID)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func newApp(m *AuthMiddleware, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	handlers := append([]fiber.Handler{m.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.User.Login)
	})
	app.Get("/me", handlers...)
	app.Get("/page", m.HandlePage, func(c *fiber.Ctx) error { return c.SendString("page") })
	return app
}

func TestAuthMiddleware(t *testing.T) {
	d := newDirectory(t)
	tm := NewTokenManager("secret", 5)
	revoked := revokedSet{}
	m := NewAuthMiddleware(tm, d, revoked, "sess")

	user, _ := d.Lookup("aco1")
	token, _, err := tm.GenerateToken(user)
	require.NoError(t, err)

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := newApp(m).Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "sess", Value: token})
		resp, err := newApp(m).Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing", func(t *testing.T) {
		resp, err := newApp(m).Test(httptest.NewRequest(http.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err := newApp(m).Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("role guard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := newApp(m, RequireRole(domain.UserRoleAdmin)).Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("page redirects to login", func(t *testing.T) {
		resp, err := newApp(m).Test(httptest.NewRequest(http.MethodGet, "/page", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))
	})

	t.Run("revoked token", func(t *testing.T) {
		claims, err := tm.ParseToken(token)
		require.NoError(t, err)
		revoked[claims.ID] = true
		defer delete(revoked, claims.ID)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := newApp(m).Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

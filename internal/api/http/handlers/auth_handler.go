package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/api/dto"
	"github.com/opcopilot/opcopilot/internal/auth"
	"github.com/opcopilot/opcopilot/internal/service"
	apperrors "github.com/opcopilot/opcopilot/pkg/util/errorutil"
)

// CookieSettings controls the session cookie issued at login.
type CookieSettings struct {
	Name   string
	Secure bool
}

// AuthHandler exposes login, logout and identity endpoints.
type AuthHandler struct {
	auth       *service.AuthService
	navigation *service.NavigationService
	cookie     CookieSettings
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, navigation *service.NavigationService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{auth: authService, navigation: navigation, cookie: cookie}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Login, req.Password)
	if err != nil {
		return err
	}
	setSessionCookie(c, h.cookie, token, exp)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.ToUserResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	if err := h.auth.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	clearSessionCookie(c, h.cookie)
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	sess, err := h.navigation.Current(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, fiber.Map{
		"user":    dto.ToUserResponse(user),
		"session": sess,
	})
}

func setSessionCookie(c *fiber.Ctx, settings CookieSettings, token string, exp time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     settings.Name,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   settings.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearSessionCookie(c *fiber.Ctx, settings CookieSettings) {
	setSessionCookie(c, settings, "", time.Unix(0, 0))
}

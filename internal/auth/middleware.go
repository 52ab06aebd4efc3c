package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/domain"
	apperrors "github.com/opcopilot/opcopilot/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User    *domain.User
	TokenID string
	Token   string
}

// RevocationChecker reports whether a token id was revoked by a logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware validates bearer tokens or session cookies and loads principals.
type AuthMiddleware struct {
	tokens     *TokenManager
	directory  *Directory
	revoked    RevocationChecker
	cookieName string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, directory *Directory, revoked RevocationChecker, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, directory: directory, revoked: revoked, cookieName: cookieName}
}

// Handle enforces authentication for protected API routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.authenticate(c)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// HandlePage enforces authentication for HTML routes, redirecting to the login page.
func (m *AuthMiddleware) HandlePage(c *fiber.Ctx) error {
	principal, err := m.authenticate(c)
	if err != nil {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*Principal, error) {
	raw, err := m.extractToken(c)
	if err != nil {
		return nil, err
	}

	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	if m.revoked != nil && claims.ID != "" {
		revoked, err := m.revoked.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if revoked {
			return nil, apperrors.NewUnauthorized("session ended")
		}
	}

	user, ok := m.directory.Lookup(claims.Login)
	if !ok {
		return nil, apperrors.NewUnauthorized("user not found")
	}
	return &Principal{User: user, TokenID: claims.ID, Token: raw}, nil
}

func (m *AuthMiddleware) extractToken(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", apperrors.NewUnauthorized("invalid authorization header")
		}
		return parts[1], nil
	}
	if m.cookieName != "" {
		if cookie := c.Cookies(m.cookieName); cookie != "" {
			return cookie, nil
		}
	}
	return "", apperrors.NewUnauthorized("missing authorization header")
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.User != nil
}

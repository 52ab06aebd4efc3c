package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opcopilot/opcopilot/internal/auth"
	"github.com/opcopilot/opcopilot/internal/domain"
	apperrors "github.com/opcopilot/opcopilot/pkg/util/errorutil"
)

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}
	return principal.User, nil
}

func data(c *fiber.Ctx, payload any) error {
	return c.JSON(fiber.Map{"data": payload})
}

package dto

import (
	"time"

	"github.com/opcopilot/opcopilot/internal/domain"
)

// LoginRequest payload. Form tags serve the HTML login form.
type LoginRequest struct {
	Login    string `json:"login" form:"login"`
	Password string `json:"password" form:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse describes the logged-in case manager.
type UserResponse struct {
	Login          string          `json:"login"`
	DisplayName    string          `json:"display_name"`
	Role           domain.UserRole `json:"role"`
	Sector         string          `json:"sector"`
	OperationCount int             `json:"operation_count"`
}

// ToUserResponse maps a user.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		Login:          u.Login,
		DisplayName:    u.DisplayName,
		Role:           u.Role,
		Sector:         u.Sector,
		OperationCount: u.OperationCount,
	}
}

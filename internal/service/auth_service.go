package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opcopilot/opcopilot/internal/auth"
	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/repository"
	apperrors "github.com/opcopilot/opcopilot/pkg/util/errorutil"
)

// AuthService coordinates login and logout flows.
type AuthService struct {
	directory *auth.Directory
	tokenMgr  *auth.TokenManager
	sessions  repository.SessionStore
	logger    *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(directory *auth.Directory, tokenMgr *auth.TokenManager, sessions repository.SessionStore, logger *zap.Logger) *AuthService {
	return &AuthService{
		directory: directory,
		tokenMgr:  tokenMgr,
		sessions:  sessions,
		logger:    logger,
	}
}

// Login authenticates a case manager and issues a session token. A fresh
// login always lands on the dashboard.
func (s *AuthService) Login(ctx context.Context, login, password string) (*domain.User, string, time.Time, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("login and password required", nil)
	}
	user, err := s.directory.Authenticate(login, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.logger.Info("login rejected", zap.String("login", login))
		return nil, "", time.Time{}, apperrors.NewUnauthorized(err.Error())
	}
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if err := s.sessions.Save(ctx, &domain.Session{Login: user.Login, Page: domain.PageDashboard}); err != nil {
		return nil, "", time.Time{}, err
	}
	s.logger.Info("login", zap.String("login", user.Login))
	return user, token, exp, nil
}

// Logout revokes the presented token and forgets the navigation state.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil || principal.User == nil {
		return apperrors.NewUnauthorized("not authenticated")
	}
	if principal.TokenID != "" {
		if err := s.sessions.Revoke(ctx, principal.TokenID, s.tokenMgr.TTL()); err != nil {
			return err
		}
	}
	if err := s.sessions.Delete(ctx, principal.User.Login); err != nil {
		return err
	}
	s.logger.Info("logout", zap.String("login", principal.User.Login))
	return nil
}

// Users lists the accounts known to the directory.
func (s *AuthService) Users() []domain.User {
	return s.directory.Users()
}

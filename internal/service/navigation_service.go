package service

import (
	"context"
	"strings"

	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/repository"
	apperrors "github.com/opcopilot/opcopilot/pkg/util/errorutil"
)

// NavigationService keeps the current page and selected operation of each user.
type NavigationService struct {
	sessions  repository.SessionStore
	portfolio *PortfolioService
}

// NewNavigationService builds the service.
func NewNavigationService(sessions repository.SessionStore, portfolio *PortfolioService) *NavigationService {
	return &NavigationService{sessions: sessions, portfolio: portfolio}
}

// Current returns the user's navigation state. A selected operation the user
// can no longer open, e.g. one dropped by a fixture reload, is cleared.
func (s *NavigationService) Current(ctx context.Context, user *domain.User) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, user.Login)
	if err != nil || sess.SelectedOperationID == "" {
		return sess, err
	}
	if _, err := s.portfolio.Get(ctx, user, sess.SelectedOperationID); err != nil {
		if !apperrors.HasCode(err, apperrors.CodeNotFound, apperrors.CodeForbidden) {
			return nil, err
		}
		sess.Login = user.Login
		sess.SelectedOperationID = ""
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// SetPage moves the user to a page and leaves the selected operation.
// Unknown keys land on the dashboard.
func (s *NavigationService) SetPage(ctx context.Context, user *domain.User, raw string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, user.Login)
	if err != nil {
		return nil, err
	}
	sess.Login = user.Login
	sess.Page = domain.ResolvePage(strings.TrimSpace(raw))
	sess.SelectedOperationID = ""
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SelectOperation records the operation the user is working on. An empty id
// clears the selection.
func (s *NavigationService) SelectOperation(ctx context.Context, user *domain.User, operationID string) (*domain.Session, error) {
	operationID = strings.TrimSpace(operationID)
	if operationID != "" {
		if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
			return nil, err
		}
	}
	sess, err := s.sessions.Get(ctx, user.Login)
	if err != nil {
		return nil, err
	}
	sess.Login = user.Login
	sess.SelectedOperationID = operationID
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/opcopilot/opcopilot/internal/auth"
	"github.com/opcopilot/opcopilot/internal/config"
	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/events"
	"github.com/opcopilot/opcopilot/internal/repository"
)

func TestAuthServiceLoginLogout(t *testing.T) {
	ctx := context.Background()
	directory, err := auth.NewDirectory(auth.DemoCredentials, bcrypt.MinCost)
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", 30)
	sessions := repository.NewMemorySessionStore()
	svc := NewAuthService(directory, tokens, sessions, zap.NewNop())

	_, _, _, err = svc.Login(ctx, "", "")
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	_, _, _, err = svc.Login(ctx, "aco1", "password2")
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))

	// Navigation state from a previous visit is reset by a new login.
	require.NoError(t, sessions.Save(ctx, &domain.Session{Login: "aco1", Page: domain.PagePlanning}))

	user, token, exp, err := svc.Login(ctx, "ACO1", "password1")
	require.NoError(t, err)
	assert.Equal(t, "aco1", user.Login)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	sess, err := sessions.Get(ctx, "aco1")
	require.NoError(t, err)
	assert.Equal(t, domain.PageDashboard, sess.Page)

	claims, err := tokens.ParseToken(token)
	require.NoError(t, err)

	err = svc.Logout(ctx, &auth.Principal{User: user, TokenID: claims.ID, Token: token})
	require.NoError(t, err)
	revoked, err := sessions.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.Equal(t, "UNAUTHORIZED", errorCode(t, svc.Logout(ctx, nil)))
	assert.Len(t, svc.Users(), len(auth.DemoCredentials))
}

func TestNotificationServiceStubs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	svc := NewNotificationService(zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@example.org",
		WebhookURL: "http://hooks.local/opcopilot",
	})

	ctx := context.Background()
	require.NoError(t, svc.Handle(ctx, events.Event{
		Type:        events.EventNoticeGenerated,
		OperationID: "1",
		Payload:     events.NoticePayload{Reference: "MED-2024-003", Recipient: "BET Structure"},
	}))
	require.NoError(t, svc.Handle(ctx, events.Event{Type: events.EventOperationClosed, OperationID: "1"}))
	require.NoError(t, svc.Handle(ctx, events.Event{Type: "unknown", OperationID: "1"}))

	mails := logs.FilterMessage("sendEmailNotificationStub").All()
	require.Len(t, mails, 2)
	assert.Equal(t, "BET Structure", mails[0].ContextMap()["to"])
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

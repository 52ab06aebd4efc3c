package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/opcopilot/opcopilot/internal/config"
	"github.com/opcopilot/opcopilot/internal/events"
)

// NotificationService handles emitting notifications for domain events.
// Delivery is stubbed: outgoing mails and webhooks are only logged.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// NotificationEvents lists the event types that produce a notification.
// worker.NotificationWorker subscribes to each of them.
var NotificationEvents = []events.EventType{
	events.EventOperationCreated,
	events.EventOperationClosed,
	events.EventAmendmentCreated,
	events.EventNoticeGenerated,
	events.EventNoticeReminded,
	events.EventUtilityReminded,
	events.EventClaimRegistered,
}

// Handle routes one event to its notification. Unknown types are ignored.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventOperationCreated:
		return n.handleOperationCreated(ctx, event)
	case events.EventOperationClosed:
		return n.handleOperationClosed(ctx, event)
	case events.EventAmendmentCreated:
		return n.handleAmendmentCreated(ctx, event)
	case events.EventNoticeGenerated:
		return n.handleNoticeGenerated(ctx, event)
	case events.EventNoticeReminded:
		return n.handleNoticeReminded(ctx, event)
	case events.EventUtilityReminded:
		return n.handleUtilityReminded(ctx, event)
	case events.EventClaimRegistered:
		return n.handleClaimRegistered(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleOperationCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("OperationCreated", zap.String("operation_id", event.OperationID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleOperationClosed(ctx context.Context, event events.Event) error {
	n.logger.Info("OperationClosed", zap.String("operation_id", event.OperationID))
	n.sendEmailNotificationStub(ctx, event, "direction")
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// Amendments go to hierarchical validation.
func (n *NotificationService) handleAmendmentCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("AmendmentCreated", zap.String("operation_id", event.OperationID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event, "validation")
	return nil
}

func (n *NotificationService) handleNoticeGenerated(ctx context.Context, event events.Event) error {
	n.logger.Info("NoticeGenerated", zap.String("operation_id", event.OperationID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event, recipientOf(event))
	return nil
}

func (n *NotificationService) handleNoticeReminded(ctx context.Context, event events.Event) error {
	n.logger.Info("NoticeReminded", zap.String("operation_id", event.OperationID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event, recipientOf(event))
	return nil
}

func (n *NotificationService) handleUtilityReminded(ctx context.Context, event events.Event) error {
	n.logger.Info("UtilityReminded", zap.String("operation_id", event.OperationID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// Claims are forwarded to the case manager and the contractor in charge.
func (n *NotificationService) handleClaimRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("ClaimRegistered", zap.String("operation_id", event.OperationID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event, event.Actor)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func recipientOf(event events.Event) string {
	if p, ok := event.Payload.(events.NoticePayload); ok {
		return p.Recipient
	}
	return ""
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("operation_id", event.OperationID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("operation_id", event.OperationID),
		zap.String("event_type", string(event.Type)))
}

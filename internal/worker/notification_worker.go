package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/opcopilot/opcopilot/internal/events"
	"github.com/opcopilot/opcopilot/internal/service"
)

const defaultQueueSize = 64

// NotificationWorker delivers notifications outside the request that
// published the event. Events arriving while the queue is full are dropped.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	queue         chan events.Event
}

// NewNotificationWorker creates a worker with a queue of the given size.
func NewNotificationWorker(notifications *service.NotificationService, queueSize int, logger *zap.Logger) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		notifications: notifications,
		logger:        logger,
		queue:         make(chan events.Event, queueSize),
	}
}

// Subscribe routes every notification event of d into the queue.
func (w *NotificationWorker) Subscribe(d events.Dispatcher) {
	if w.notifications == nil || d == nil {
		return
	}
	for _, t := range service.NotificationEvents {
		d.Subscribe(t, w.enqueue)
	}
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, event dropped",
			zap.String("event_type", string(event.Type)),
			zap.String("operation_id", event.OperationID))
	}
	return nil
}

// Run delivers queued events until ctx is done. Events still queued at that
// point are delivered before returning.
func (w *NotificationWorker) Run(ctx context.Context) error {
	for {
		select {
		case event := <-w.queue:
			w.deliver(ctx, event)
		case <-ctx.Done():
			for {
				select {
				case event := <-w.queue:
					w.deliver(context.WithoutCancel(ctx), event)
				default:
					return nil
				}
			}
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	if err := w.notifications.Handle(ctx, event); err != nil {
		w.logger.Error("notification failed",
			zap.String("event_type", string(event.Type)),
			zap.String("operation_id", event.OperationID),
			zap.Error(err))
	}
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

// NotificationService reacts to domain events by logging them. It runs
// synchronously on the publishing request; there are no background
// consumers in this service.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService constructs the notifier.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	return &NotificationService{logger: logger}
}

// SubscribeAll registers the notifier for every event this service emits.
func (n *NotificationService) SubscribeAll(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketUpdated,
		events.EventTicketDeleted,
		events.EventUserRegistered,
	} {
		dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(_ context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload),
	)
	return nil
}

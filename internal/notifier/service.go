package notifier

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"hr-realtime/internal/models"
	"hr-realtime/internal/observability"
	"hr-realtime/internal/repositories"
	"hr-realtime/pkg/logger"
)

// ErrInvalid is returned when a producer publishes a notification with
// missing fields or an unknown kind.
var ErrInvalid = errors.New("invalid notification")

// Service is the single publish entry point for every notification producer
// (leave, payroll, task and geofence workflows, and the chat pipeline
// itself).
type Service struct {
	repo   repositories.NotificationRepository
	bus    *Bus
	events observability.Publisher
	log    *logger.Logger
}

// NewService constructs the notification service.
func NewService(repo repositories.NotificationRepository, bus *Bus, events observability.Publisher, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, events: events, log: log}
}

// Notify persists a notification record and republishes it on the in-process
// bus. Persisting succeeds for offline users too; realtime delivery is then
// simply a no-op. The broker mirror is best-effort.
func (s *Service) Notify(ctx context.Context, userID, message, kind string) (models.Notification, error) {
	if userID == "" || message == "" {
		return models.Notification{}, fmt.Errorf("%w: user id and message are required", ErrInvalid)
	}
	if kind == "" {
		kind = models.NotificationInfo
	}
	if !models.ValidNotificationKind(kind) {
		return models.Notification{}, fmt.Errorf("%w: unknown kind %q", ErrInvalid, kind)
	}

	n, err := s.repo.Create(ctx, userID, message, kind)
	if err != nil {
		return models.Notification{}, fmt.Errorf("persist notification: %w", err)
	}

	evt := Event{
		UserID:    n.UserID,
		Message:   n.Message,
		Kind:      n.Kind,
		CreatedAt: n.CreatedAt,
	}
	s.bus.Publish(evt)
	observability.IncNotification(n.Kind)

	if s.events != nil {
		envelope := observability.EventEnvelope{
			EventType: "notifications",
			EventName: n.Kind,
			Payload:   evt,
		}
		if err := s.events.PublishJSON(ctx, observability.RoutingKeyNotifications, envelope, nil); err != nil {
			s.log.Warn("notification mirror publish failed", zap.Error(err))
		}
	}

	return n, nil
}

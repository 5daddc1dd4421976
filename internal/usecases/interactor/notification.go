package interactor

import (
	"context"
	"github.com/google/uuid"
	"github.com/mufasadev/donation-ledger/internal/domain/gateways"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	"github.com/mufasadev/donation-ledger/internal/metrics"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
	"time"
)

// Notifier delivers a one-shot message to a user. Delivery is best effort: failures are
// logged and never reported back to the caller.
type Notifier interface {
	Notify(ctx context.Context, notification models.Notification)
}

type NotificationInteractor struct {
	notifications repositories.NotificationRepository
	publisher     gateways.Publisher
	logger        *zerolog.Logger
}

// NewNotificationInteractor creates a Notifier that stores each notification and then publishes it.
func NewNotificationInteractor(notifications repositories.NotificationRepository, publisher gateways.Publisher) *NotificationInteractor {
	return &NotificationInteractor{
		notifications: notifications,
		publisher:     publisher,
		logger:        log.Component("notifier"),
	}
}

func (n *NotificationInteractor) Notify(ctx context.Context, notification models.Notification) {
	ctx = context.WithoutCancel(ctx)
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	l := n.logger.With().
		Str("notification_id", notification.ID).
		Str("recipient_id", notification.RecipientID).
		Str("type", string(notification.Type)).
		Logger()

	if err := n.notifications.Create(ctx, &notification); err != nil {
		metrics.Notifications.WithLabelValues(string(notification.Type), "store_failed").Inc()
		l.Error().Err(err).Msg("failed to store notification")
		return
	}

	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, &notification); err != nil {
			metrics.Notifications.WithLabelValues(string(notification.Type), "publish_failed").Inc()
			l.Warn().Err(err).Msg("failed to publish notification")
			return
		}
	}

	metrics.Notifications.WithLabelValues(string(notification.Type), "sent").Inc()
	l.Debug().Msg("notification sent")
}

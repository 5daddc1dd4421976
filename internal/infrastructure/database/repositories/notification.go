package repositories

import (
	"context"
	"fmt"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	"github.com/mufasadev/donation-ledger/pkg/postgresql"
)

type NotificationRepositoryImpl struct {
	db postgresql.Client
}

func NewNotificationRepositoryImpl(db postgresql.Client) repositories.NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

// Create stores a notification. Notifications are append-only.
func (r *NotificationRepositoryImpl) Create(ctx context.Context, n *models.Notification) error {
	payload := n.Payload
	if payload == nil {
		payload = map[string]string{}
	}

	_, err := r.db.Exec(ctx, `
INSERT INTO notifications (id, recipient_id, type, message, payload, donation_id, campaign_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID,
		n.RecipientID,
		string(n.Type),
		n.Message,
		payload,
		n.DonationID,
		n.CampaignID,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

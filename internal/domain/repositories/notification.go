package repositories

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

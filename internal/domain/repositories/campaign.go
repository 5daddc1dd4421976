package repositories

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
)

type CampaignRepository interface {
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	ListLedgerDrift(ctx context.Context) ([]models.LedgerDrift, error)
}

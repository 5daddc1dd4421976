package repositories

import (
	"context"
	"fmt"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	"github.com/mufasadev/donation-ledger/pkg/postgresql"
)

type CampaignRepositoryImpl struct {
	db postgresql.Client
}

func NewCampaignRepositoryImpl(db postgresql.Client) repositories.CampaignRepository {
	return &CampaignRepositoryImpl{db: db}
}

func (r *CampaignRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	return noRows(scanCampaign(r.db.QueryRow(ctx, "SELECT "+campaignColumns+" FROM campaigns WHERE id = $1", id)))
}

const ledgerDrift = `
SELECT c.id, c.current_amount, COALESCE(SUM(d.amount) FILTER (WHERE d.status = 'COMPLETED'), 0) AS completed_sum
FROM campaigns c
LEFT JOIN donations d ON d.campaign_id = c.id
GROUP BY c.id, c.current_amount
HAVING c.current_amount <> COALESCE(SUM(d.amount) FILTER (WHERE d.status = 'COMPLETED'), 0)
ORDER BY c.id`

// ListLedgerDrift returns campaigns whose total differs from the sum of their completed donations.
func (r *CampaignRepositoryImpl) ListLedgerDrift(ctx context.Context) ([]models.LedgerDrift, error) {
	rows, err := r.db.Query(ctx, ledgerDrift)
	if err != nil {
		return nil, fmt.Errorf("ledger drift: %w", err)
	}
	defer rows.Close()

	drift := make([]models.LedgerDrift, 0)
	for rows.Next() {
		var d models.LedgerDrift
		if err = rows.Scan(&d.CampaignID, &d.CurrentAmount, &d.CompletedSum); err != nil {
			return nil, err
		}
		drift = append(drift, d)
	}

	return drift, rows.Err()
}

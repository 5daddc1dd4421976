package interactor

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	apperrors "github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
)

// AuditInteractor checks that every campaign total equals the sum of its completed donations.
type AuditInteractor struct {
	campaigns repositories.CampaignRepository
	logger    *zerolog.Logger
}

func NewAuditInteractor(campaigns repositories.CampaignRepository) *AuditInteractor {
	return &AuditInteractor{campaigns: campaigns, logger: log.Component("audit")}
}

func (a *AuditInteractor) Drift(ctx context.Context) ([]models.LedgerDrift, error) {
	drift, err := a.campaigns.ListLedgerDrift(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("audit ledger", err)
	}
	for _, d := range drift {
		a.logger.Error().
			Str("campaign_id", d.CampaignID).
			Str("current_amount", d.CurrentAmount.String()).
			Str("completed_sum", d.CompletedSum.String()).
			Msg("campaign total does not match completed donations")
	}
	return drift, nil
}

package repositories

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"time"
)

// LedgerRepository applies terminal donation outcomes. Each call is one atomic unit: the
// PENDING guard, the donation update, the campaign increment and the goal check either all
// commit or none do.
type LedgerRepository interface {
	// SettleDonation moves a PENDING donation to COMPLETED and credits its campaign.
	// A donation that is already terminal is returned untouched with Applied=false.
	SettleDonation(ctx context.Context, donationID string, settlement models.Settlement) (models.LedgerResult, error)
	// FailDonation moves a PENDING donation to FAILED. The campaign is never touched.
	FailDonation(ctx context.Context, donationID string, failedAt time.Time) (models.LedgerResult, error)
}

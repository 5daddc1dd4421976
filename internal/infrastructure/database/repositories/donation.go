package repositories

import (
	"context"
	"fmt"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	"github.com/mufasadev/donation-ledger/pkg/postgresql"
	"time"
)

type DonationRepositoryImpl struct {
	db postgresql.Client
}

func NewDonationRepositoryImpl(db postgresql.Client) repositories.DonationRepository {
	return &DonationRepositoryImpl{db: db}
}

const insertDonation = `
INSERT INTO donations (id, campaign_id, donor_id, amount, currency, status, authorization_reference,
  charge_reference, message, is_anonymous, processed_at, created_at, updated_at)
VALUES ($1, $2, $3, $4::NUMERIC(12,2), $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// Create inserts a donation. Authorization references are unique.
func (r *DonationRepositoryImpl) Create(ctx context.Context, d *models.Donation) error {
	_, err := r.db.Exec(ctx, insertDonation,
		d.ID,
		d.CampaignID,
		d.DonorID,
		d.Amount,
		d.Currency,
		string(d.Status),
		d.AuthorizationReference,
		d.ChargeReference,
		d.Message,
		d.IsAnonymous,
		d.ProcessedAt,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("duplicate donation: %w", err)
		}
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (r *DonationRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Donation, error) {
	return noRows(scanDonation(r.db.QueryRow(ctx, "SELECT "+donationColumns+" FROM donations WHERE id = $1", id)))
}

func (r *DonationRepositoryImpl) GetByAuthorizationReference(ctx context.Context, reference string) (*models.Donation, error) {
	return noRows(scanDonation(r.db.QueryRow(ctx, "SELECT "+donationColumns+" FROM donations WHERE authorization_reference = $1", reference)))
}

// GetByChargeReference returns the most recent donation for a charge.
func (r *DonationRepositoryImpl) GetByChargeReference(ctx context.Context, reference string) (*models.Donation, error) {
	return noRows(scanDonation(r.db.QueryRow(ctx,
		"SELECT "+donationColumns+" FROM donations WHERE charge_reference = $1 ORDER BY created_at DESC LIMIT 1",
		reference,
	)))
}

// ListStalePending returns PENDING donations created before olderThan. updated_at only moves
// for pending rows when MarkChecked runs, so ordering by it rotates the batch.
func (r *DonationRepositoryImpl) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.Donation, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+donationColumns+`
FROM donations
WHERE status = 'PENDING' AND authorization_reference IS NOT NULL AND created_at < $1
ORDER BY updated_at, created_at
LIMIT $2`, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale donations: %w", err)
	}
	defer rows.Close()

	donations := make([]models.Donation, 0)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, *d)
	}

	return donations, rows.Err()
}

func (r *DonationRepositoryImpl) MarkChecked(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE donations SET updated_at = $2 WHERE id = $1 AND status = 'PENDING'`, id, at)
	if err != nil {
		return fmt.Errorf("mark donation checked: %w", err)
	}
	return nil
}

package repositories

import (
	"errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
)

const deadlockDetected = "40P01"

const donationColumns = `id, campaign_id, donor_id, amount, currency, status, authorization_reference,
  charge_reference, message, is_anonymous, processed_at, created_at, updated_at`

const campaignColumns = `id, owner_id, title, goal_amount, current_amount, currency, status, end_date, created_at, updated_at`

func scanDonation(row pgx.Row) (*models.Donation, error) {
	d := &models.Donation{}
	err := row.Scan(
		&d.ID,
		&d.CampaignID,
		&d.DonorID,
		&d.Amount,
		&d.Currency,
		&d.Status,
		&d.AuthorizationReference,
		&d.ChargeReference,
		&d.Message,
		&d.IsAnonymous,
		&d.ProcessedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	c := &models.Campaign{}
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Title,
		&c.GoalAmount,
		&c.CurrentAmount,
		&c.Currency,
		&c.Status,
		&c.EndDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// noRows turns pgx.ErrNoRows into a nil result, which is how lookups report "not found".
func noRows[T any](v *T, err error) (*T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// isRetryableTxError reports serialization failures and deadlocks, after which the whole
// transaction can be replayed from scratch.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.SQLState() == repositories.SerializationError || pgErr.SQLState() == deadlockDetected)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == repositories.UniqueViolationError
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	"github.com/mufasadev/donation-ledger/internal/metrics"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/mufasadev/donation-ledger/pkg/postgresql"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"time"
)

type LedgerRepositoryImpl struct {
	db         postgresql.Client
	maxRetries int
	logger     *zerolog.Logger
}

// NewLedgerRepositoryImpl creates new instance of LedgerRepositoryImpl.
// maxRetries bounds how often a transaction is replayed after a serialization failure.
func NewLedgerRepositoryImpl(db postgresql.Client, maxRetries int) repositories.LedgerRepository {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &LedgerRepositoryImpl{
		db:         db,
		maxRetries: maxRetries,
		logger:     log.Component("ledger"),
	}
}

// The status predicate is the idempotency guard: under concurrent callers exactly one
// UPDATE matches, the others block on the row lock and then see a non-PENDING row.
const completeDonation = `
UPDATE donations
SET status = 'COMPLETED',
    charge_reference = COALESCE(NULLIF($2, ''), charge_reference),
    processed_at = $3,
    updated_at = $3
WHERE id = $1 AND status = 'PENDING'
RETURNING campaign_id, amount`

const failDonation = `
UPDATE donations
SET status = 'FAILED', processed_at = $2, updated_at = $2
WHERE id = $1 AND status = 'PENDING'`

const creditCampaign = `
UPDATE campaigns
SET current_amount = current_amount + $2::NUMERIC(12,2), updated_at = $3
WHERE id = $1`

const completeCampaign = `
UPDATE campaigns
SET status = 'COMPLETED', updated_at = $2
WHERE id = $1 AND status = 'ACTIVE' AND current_amount >= goal_amount`

// SettleDonation completes a PENDING donation and credits its campaign in one transaction.
func (r *LedgerRepositoryImpl) SettleDonation(ctx context.Context, donationID string, settlement models.Settlement) (models.LedgerResult, error) {
	var result models.LedgerResult
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		result = models.LedgerResult{}

		var campaignID string
		var amount decimal.Decimal
		err := tx.QueryRow(ctx, completeDonation, donationID, settlement.ChargeReference, settlement.ProcessedAt).Scan(&campaignID, &amount)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// already terminal
			return r.snapshot(ctx, tx, donationID, &result)
		case err != nil:
			return fmt.Errorf("complete donation: %w", err)
		}
		result.Applied = true

		tag, err := tx.Exec(ctx, creditCampaign, campaignID, amount, settlement.ProcessedAt)
		if err != nil {
			return fmt.Errorf("credit campaign: %w", err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("credit campaign %s: no rows updated", campaignID)
		}

		tag, err = tx.Exec(ctx, completeCampaign, campaignID, settlement.ProcessedAt)
		if err != nil {
			return fmt.Errorf("complete campaign: %w", err)
		}
		result.CampaignCompleted = tag.RowsAffected() == 1

		return r.snapshot(ctx, tx, donationID, &result)
	})

	return result, err
}

// FailDonation marks a PENDING donation FAILED. Campaign totals are not touched.
func (r *LedgerRepositoryImpl) FailDonation(ctx context.Context, donationID string, failedAt time.Time) (models.LedgerResult, error) {
	var result models.LedgerResult
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		result = models.LedgerResult{}

		tag, err := tx.Exec(ctx, failDonation, donationID, failedAt)
		if err != nil {
			return fmt.Errorf("fail donation: %w", err)
		}
		result.Applied = tag.RowsAffected() == 1

		return r.snapshot(ctx, tx, donationID, &result)
	})

	return result, err
}

// snapshot reads the donation and campaign as this transaction sees them.
func (r *LedgerRepositoryImpl) snapshot(ctx context.Context, tx pgx.Tx, donationID string, result *models.LedgerResult) error {
	d, err := scanDonation(tx.QueryRow(ctx, "SELECT "+donationColumns+" FROM donations WHERE id = $1", donationID))
	if err != nil {
		return fmt.Errorf("read donation %s: %w", donationID, err)
	}
	c, err := scanCampaign(tx.QueryRow(ctx, "SELECT "+campaignColumns+" FROM campaigns WHERE id = $1", d.CampaignID))
	if err != nil {
		return fmt.Errorf("read campaign %s: %w", d.CampaignID, err)
	}

	result.Donation = *d
	result.Campaign = *c
	return nil
}

// inTx runs fn in a READ COMMITTED transaction and replays it on serialization failures
// and deadlocks, up to maxRetries attempts.
func (r *LedgerRepositoryImpl) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		err = r.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryableTxError(err) || ctx.Err() != nil {
			return fmt.Errorf("transaction error: %w", err)
		}

		metrics.LedgerRetries.Inc()
		r.logger.Warn().Err(err).Int("attempt", attempt).Msg("retrying ledger transaction")
	}

	return fmt.Errorf("transaction error after %d attempts: %w", r.maxRetries, err)
}

func (r *LedgerRepositoryImpl) runTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}

	if err = fn(tx); err != nil {
		r.logger.Error().Err(err).Msg("transaction error")
		_ = tx.Rollback(ctx)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return nil
}

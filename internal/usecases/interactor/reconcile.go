package interactor

import (
	"context"
	"fmt"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	apperrors "github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/internal/metrics"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
	"time"
)

const anonymousDonor = "Someone"

// ReconcileInteractor is the single place a confirmation signal turns into a ledger change.
// Both the confirm call and the processor webhook funnel through Reconcile; the PENDING guard
// inside the ledger transaction decides which of them applies the donation.
type ReconcileInteractor struct {
	donations repositories.DonationRepository
	ledger    repositories.LedgerRepository
	users     repositories.UserRepository
	notifier  Notifier
	now       func() time.Time
	logger    *zerolog.Logger
}

func NewReconcileInteractor(donations repositories.DonationRepository, ledger repositories.LedgerRepository, users repositories.UserRepository, notifier Notifier) *ReconcileInteractor {
	return &ReconcileInteractor{
		donations: donations,
		ledger:    ledger,
		users:     users,
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    log.Component("reconciler"),
	}
}

// Reconcile applies the signal's outcome to the donation it references. Repeated or
// concurrent signals for the same reference are safe: only the first one to find the
// donation PENDING changes anything, the rest return the current snapshot.
func (i *ReconcileInteractor) Reconcile(ctx context.Context, signal models.ConfirmationSignal) (*models.LedgerResult, error) {
	l := i.logger.With().
		Str("authorization_ref", signal.AuthorizationReference).
		Str("source", string(signal.Source)).
		Str("outcome", string(signal.Outcome)).
		Logger()

	if signal.Outcome != models.OutcomeSucceeded && signal.Outcome != models.OutcomeFailed {
		return nil, apperrors.NewInvalidInputError("outcome", fmt.Sprintf("unsupported outcome %q", signal.Outcome))
	}

	donation, err := i.donations.GetByAuthorizationReference(ctx, signal.AuthorizationReference)
	if err != nil {
		i.count(signal, "error")
		return nil, apperrors.NewPersistenceError("lookup donation", err)
	}
	if donation == nil {
		i.count(signal, "not_found")
		l.Warn().Msg("confirmation for an unknown authorization reference")
		return nil, apperrors.NewNotFoundError("donation", signal.AuthorizationReference)
	}

	var result models.LedgerResult
	switch signal.Outcome {
	case models.OutcomeFailed:
		result, err = i.ledger.FailDonation(ctx, donation.ID, i.now())
	default:
		result, err = i.ledger.SettleDonation(ctx, donation.ID, models.Settlement{
			ChargeReference: signal.ChargeReference,
			ProcessedAt:     i.now(),
		})
	}
	if err != nil {
		i.count(signal, "error")
		l.Error().Err(err).Str("donation_id", donation.ID).Msg("ledger transaction did not commit")
		if apperrors.Retryable(err) {
			return nil, err
		}
		return nil, apperrors.NewPersistenceError("reconcile donation", err)
	}

	l = l.With().Str("donation_id", result.Donation.ID).Str("campaign_id", result.Campaign.ID).Logger()

	if !result.Applied {
		i.count(signal, "noop")
		i.logNoop(&l, signal, result.Donation.Status)
		return &result, nil
	}

	i.count(signal, "applied")
	if signal.Outcome == models.OutcomeFailed {
		l.Info().Msg("donation failed")
		return &result, nil
	}

	metrics.AmountApplied.WithLabelValues(result.Donation.Currency).Add(result.Donation.Amount.InexactFloat64())
	l.Info().
		Str("amount", result.Donation.Amount.String()).
		Str("campaign_total", result.Campaign.CurrentAmount.String()).
		Bool("campaign_completed", result.CampaignCompleted).
		Msg("donation applied")

	// Only after commit: a notifier failure must never undo the ledger change.
	i.notifyApplied(ctx, &result)
	return &result, nil
}

func (i *ReconcileInteractor) logNoop(l *zerolog.Logger, signal models.ConfirmationSignal, status models.DonationStatus) {
	switch {
	case signal.Outcome == models.OutcomeSucceeded && status == models.DonationFailed:
		l.Error().Msg("succeeded signal for a donation already marked failed, left unchanged")
	case signal.Outcome == models.OutcomeFailed && status == models.DonationCompleted:
		l.Warn().Msg("failed signal for a donation already completed, left unchanged")
	default:
		l.Debug().Str("status", string(status)).Msg("donation already terminal")
	}
}

func (i *ReconcileInteractor) notifyApplied(ctx context.Context, result *models.LedgerResult) {
	donation := result.Donation
	campaign := result.Campaign
	amount := formatAmount(donation.Amount.StringFixed(2), donation.Currency)

	payload := map[string]string{
		"amount":      donation.Amount.StringFixed(2),
		"currency":    donation.Currency,
		"campaignId":  campaign.ID,
		"isAnonymous": fmt.Sprintf("%t", donation.IsAnonymous),
	}
	if donation.Message != nil && *donation.Message != "" {
		payload["message"] = *donation.Message
	}

	i.notifier.Notify(ctx, models.Notification{
		RecipientID: campaign.OwnerID,
		Type:        models.NotificationDonationReceived,
		Message:     fmt.Sprintf("%s donated %s to \"%s\"", i.donorName(ctx, &donation), amount, campaign.Title),
		Payload:     payload,
		DonationID:  &donation.ID,
		CampaignID:  &campaign.ID,
	})

	if !result.CampaignCompleted {
		return
	}

	metrics.CampaignsCompleted.Inc()
	i.notifier.Notify(ctx, models.Notification{
		RecipientID: campaign.OwnerID,
		Type:        models.NotificationCampaignCompleted,
		Message: fmt.Sprintf("\"%s\" reached its goal of %s with %s raised",
			campaign.Title,
			formatAmount(campaign.GoalAmount.StringFixed(2), campaign.Currency),
			formatAmount(campaign.CurrentAmount.StringFixed(2), campaign.Currency)),
		Payload: map[string]string{
			"goalAmount":    campaign.GoalAmount.StringFixed(2),
			"currentAmount": campaign.CurrentAmount.StringFixed(2),
		},
		DonationID: &donation.ID,
		CampaignID: &campaign.ID,
	})
}

// donorName never fails: anonymous or unresolvable donors get a neutral name.
func (i *ReconcileInteractor) donorName(ctx context.Context, donation *models.Donation) string {
	if donation.IsAnonymous || donation.DonorID == nil || i.users == nil {
		return anonymousDonor
	}
	user, err := i.users.GetByID(ctx, *donation.DonorID)
	if err != nil || user == nil || user.Name == "" {
		if err != nil {
			i.logger.Warn().Err(err).Str("donor_id", *donation.DonorID).Msg("failed to resolve donor name")
		}
		return "A supporter"
	}
	return user.Name
}

func (i *ReconcileInteractor) count(signal models.ConfirmationSignal, result string) {
	metrics.Reconciliations.WithLabelValues(string(signal.Source), string(signal.Outcome), result).Inc()
}

func formatAmount(amount, currency string) string {
	return fmt.Sprintf("%s %s", amount, currency)
}

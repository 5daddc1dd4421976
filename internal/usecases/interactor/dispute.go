package interactor

import (
	"context"
	"fmt"
	"github.com/mufasadev/donation-ledger/internal/domain/gateways"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	apperrors "github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/internal/metrics"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
)

// DisputeInteractor turns a processor dispute into an owner notification. Disputes are
// advisory here: donation status and campaign totals are never touched.
type DisputeInteractor struct {
	donations repositories.DonationRepository
	campaigns repositories.CampaignRepository
	notifier  Notifier
	logger    *zerolog.Logger
}

func NewDisputeInteractor(donations repositories.DonationRepository, campaigns repositories.CampaignRepository, notifier Notifier) *DisputeInteractor {
	return &DisputeInteractor{
		donations: donations,
		campaigns: campaigns,
		notifier:  notifier,
		logger:    log.Component("dispute"),
	}
}

// HandleDispute drops disputes for unknown charges without an error; nobody is waiting on them.
func (d *DisputeInteractor) HandleDispute(ctx context.Context, event *gateways.Event) error {
	l := d.logger.With().Str("charge_ref", event.ChargeReference).Str("event_id", event.ID).Logger()

	donation, err := d.donations.GetByChargeReference(ctx, event.ChargeReference)
	if err != nil {
		metrics.Disputes.WithLabelValues("error").Inc()
		return apperrors.NewPersistenceError("lookup donation by charge", err)
	}
	if donation == nil {
		metrics.Disputes.WithLabelValues("unknown_charge").Inc()
		l.Warn().Msg("dispute for an unknown charge, dropped")
		return nil
	}

	campaign, err := d.campaigns.GetByID(ctx, donation.CampaignID)
	if err != nil {
		metrics.Disputes.WithLabelValues("error").Inc()
		return apperrors.NewPersistenceError("lookup campaign", err)
	}
	if campaign == nil {
		metrics.Disputes.WithLabelValues("unknown_campaign").Inc()
		l.Error().Str("donation_id", donation.ID).Str("campaign_id", donation.CampaignID).Msg("disputed donation references a missing campaign")
		return nil
	}

	amount := donation.Amount
	if event.DisputeAmount.IsPositive() {
		amount = event.DisputeAmount
	}
	reason := event.DisputeReason
	if reason == "" {
		reason = "unspecified"
	}

	d.notifier.Notify(ctx, models.Notification{
		RecipientID: campaign.OwnerID,
		Type:        models.NotificationDonationDisputed,
		Message:     fmt.Sprintf("A donation of %s to \"%s\" was disputed (%s)", formatAmount(amount.StringFixed(2), donation.Currency), campaign.Title, reason),
		Payload: map[string]string{
			"chargeReference": event.ChargeReference,
			"reason":          reason,
			"amount":          amount.StringFixed(2),
			"currency":        donation.Currency,
		},
		DonationID: &donation.ID,
		CampaignID: &campaign.ID,
	})

	metrics.Disputes.WithLabelValues("notified").Inc()
	l.Info().Str("donation_id", donation.ID).Str("reason", reason).Msg("dispute recorded")
	return nil
}

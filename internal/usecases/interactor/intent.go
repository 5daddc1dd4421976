package interactor

import (
	"context"
	"github.com/google/uuid"
	"github.com/mufasadev/donation-ledger/internal/domain/gateways"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	apperrors "github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/internal/metrics"
	"github.com/mufasadev/donation-ledger/internal/usecases/dtos"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const maxMessageLength = 500

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// IntentInteractor issues payment intents: one processor authorization and one PENDING donation per call.
type IntentInteractor struct {
	campaigns repositories.CampaignRepository
	donations repositories.DonationRepository
	users     repositories.UserRepository
	processor gateways.PaymentProcessor
	now       func() time.Time
	logger    *zerolog.Logger
}

func NewIntentInteractor(campaigns repositories.CampaignRepository, donations repositories.DonationRepository, users repositories.UserRepository, processor gateways.PaymentProcessor) *IntentInteractor {
	return &IntentInteractor{
		campaigns: campaigns,
		donations: donations,
		users:     users,
		processor: processor,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    log.Component("intent"),
	}
}

func (i *IntentInteractor) CreateIntent(ctx context.Context, campaignID string, dto *dtos.CreateIntentDTO) (*dtos.IntentResponse, error) {
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return nil, invalidIntent("amount", "must be a decimal number")
	}
	if !amount.IsPositive() {
		return nil, invalidIntent("amount", "must be greater than zero")
	}
	if amount.GreaterThan(models.MaxAmount) {
		return nil, invalidIntent("amount", "must be at most "+models.MaxAmount.String())
	}

	currency := strings.ToUpper(strings.TrimSpace(dto.Currency))
	if currency != "" && !currencyPattern.MatchString(currency) {
		return nil, invalidIntent("currency", "must be a 3-letter ISO code")
	}

	if dto.Message != nil && utf8.RuneCountInString(*dto.Message) > maxMessageLength {
		return nil, invalidIntent("message", "must be at most 500 characters")
	}

	var donorID *string
	if !dto.IsAnonymous && dto.DonorID != nil && strings.TrimSpace(*dto.DonorID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*dto.DonorID))
		if err != nil {
			return nil, invalidIntent("donorId", "must be a UUID")
		}
		id := parsed.String()
		donorID = &id
	}

	campaign, err := i.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("lookup campaign", err)
	}
	if campaign == nil {
		metrics.Intents.WithLabelValues("not_found").Inc()
		return nil, apperrors.NewNotFoundError("campaign", campaignID)
	}
	if !campaign.AcceptsDonations(i.now()) {
		metrics.Intents.WithLabelValues("rejected").Inc()
		return nil, apperrors.NewInvalidStateError("campaign is not accepting donations")
	}

	// Donations are credited to the campaign total as-is, so they must share its currency.
	campaignCurrency := strings.ToUpper(campaign.Currency)
	if currency == "" {
		currency = campaignCurrency
	}
	if currency != campaignCurrency {
		return nil, invalidIntent("currency", "must match the campaign currency "+campaignCurrency)
	}

	amount = models.RoundToCurrency(amount, currency)
	if !amount.IsPositive() {
		return nil, invalidIntent("amount", "must be greater than zero")
	}
	if amount.GreaterThan(models.MaxAmount) {
		return nil, invalidIntent("amount", "must be at most "+models.MaxAmount.String())
	}

	if donorID != nil {
		donor, err := i.users.GetByID(ctx, *donorID)
		if err != nil {
			return nil, apperrors.NewPersistenceError("lookup donor", err)
		}
		if donor == nil {
			return nil, invalidIntent("donorId", "unknown donor")
		}
	}

	donation := &models.Donation{
		ID:          uuid.New().String(),
		CampaignID:  campaign.ID,
		Amount:      amount,
		Currency:    currency,
		Status:      models.DonationPending,
		Message:     dto.Message,
		IsAnonymous: dto.IsAnonymous,
		DonorID:     donorID,
	}

	l := i.logger.With().Str("donation_id", donation.ID).Str("campaign_id", campaign.ID).Logger()

	authorization, err := i.processor.CreateAuthorization(ctx, gateways.AuthorizationRequest{
		Amount:     amount,
		Currency:   currency,
		DonationID: donation.ID,
		CampaignID: campaign.ID,
	})
	if err != nil {
		metrics.Intents.WithLabelValues("processor_error").Inc()
		l.Error().Err(err).Msg("payment processor rejected the authorization request")
		var external *apperrors.ExternalServiceError
		if apperrors.As(err, &external) {
			return nil, err
		}
		return nil, apperrors.NewExternalServiceError("payment processor", err)
	}

	donation.AuthorizationReference = &authorization.Reference
	now := i.now()
	donation.CreatedAt = now
	donation.UpdatedAt = now

	if err = i.donations.Create(ctx, donation); err != nil {
		metrics.Intents.WithLabelValues("store_error").Inc()
		l.Error().Err(err).Str("authorization_ref", authorization.Reference).Msg("failed to store pending donation")
		if cancelErr := i.processor.CancelAuthorization(context.WithoutCancel(ctx), authorization.Reference); cancelErr != nil {
			l.Warn().Err(cancelErr).Str("authorization_ref", authorization.Reference).Msg("failed to cancel orphaned authorization")
		}
		return nil, apperrors.NewPersistenceError("store donation", err)
	}

	metrics.Intents.WithLabelValues("created").Inc()
	l.Info().Str("authorization_ref", authorization.Reference).Str("amount", amount.String()).Msg("payment intent created")

	return &dtos.IntentResponse{
		DonationID:             donation.ID,
		AuthorizationReference: authorization.Reference,
		ClientSecret:           authorization.ClientSecret,
		Amount:                 amount,
		Currency:               currency,
	}, nil
}

func invalidIntent(field, message string) error {
	metrics.Intents.WithLabelValues("invalid").Inc()
	return apperrors.NewInvalidInputError(field, message)
}

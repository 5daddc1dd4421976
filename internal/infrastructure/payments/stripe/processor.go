// Package stripe adapts the Stripe API to the payment gateways the ledger depends on.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"github.com/mufasadev/donation-ledger/internal/domain/gateways"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	apperrors "github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"strings"
)

const serviceName = "stripe"

// toMinorUnits converts a major-unit amount to the integer Stripe charges.
func toMinorUnits(amount decimal.Decimal, currency string) int64 {
	exp := models.CurrencyExponent(currency)
	return amount.Shift(exp).Round(0).IntPart()
}

func fromMinorUnits(amount int64, currency string) decimal.Decimal {
	return decimal.New(amount, -models.CurrencyExponent(currency))
}

type Processor struct {
	api    *client.API
	logger *zerolog.Logger
}

// NewProcessor builds a processor on the default Stripe backends.
func NewProcessor(secretKey string) *Processor {
	return NewProcessorWithBackends(secretKey, nil)
}

// NewProcessorWithBackends lets callers point the client at another API host.
func NewProcessorWithBackends(secretKey string, backends *stripego.Backends) *Processor {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &Processor{
		api:    api,
		logger: log.Component("stripe"),
	}
}

// CreateAuthorization opens a PaymentIntent for the donation amount.
func (p *Processor) CreateAuthorization(ctx context.Context, req gateways.AuthorizationRequest) (*gateways.Authorization, error) {
	params := &stripego.PaymentIntentParams{
		Amount:   stripego.Int64(toMinorUnits(req.Amount, req.Currency)),
		Currency: stripego.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("donation_id", req.DonationID)
	params.AddMetadata("campaign_id", req.CampaignID)

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		p.logger.Error().Err(err).Str("donation_id", req.DonationID).Msg("create payment intent")
		return nil, mapError("payment intent", "", err)
	}

	return &gateways.Authorization{
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// GetAuthorization fetches the PaymentIntent and reduces its status to a settlement outcome.
func (p *Processor) GetAuthorization(ctx context.Context, reference string) (*gateways.AuthorizationState, error) {
	params := &stripego.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := p.api.PaymentIntents.Get(reference, params)
	if err != nil {
		return nil, mapError("payment intent", reference, err)
	}

	return authorizationState(pi), nil
}

// CancelAuthorization voids a PaymentIntent that will never be recorded.
func (p *Processor) CancelAuthorization(ctx context.Context, reference string) error {
	params := &stripego.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := p.api.PaymentIntents.Cancel(reference, params); err != nil {
		return mapError("payment intent", reference, err)
	}
	return nil
}

func authorizationState(pi *stripego.PaymentIntent) *gateways.AuthorizationState {
	state := &gateways.AuthorizationState{RawStatus: string(pi.Status)}
	if pi.LatestCharge != nil {
		state.ChargeReference = pi.LatestCharge.ID
	}

	switch pi.Status {
	case stripego.PaymentIntentStatusSucceeded:
		state.Settled = true
		state.Outcome = models.OutcomeSucceeded
	case stripego.PaymentIntentStatusCanceled:
		state.Settled = true
		state.Outcome = models.OutcomeFailed
	}

	return state
}

// mapError keeps "no such object" apart from transport and API failures.
func mapError(entity, reference string, err error) error {
	var stripeErr *stripego.Error
	if errors.As(err, &stripeErr) && stripeErr.Code == stripego.ErrorCodeResourceMissing {
		return apperrors.NewNotFoundError(entity, reference)
	}
	return apperrors.NewExternalServiceError(serviceName, fmt.Errorf("%s: %w", entity, err))
}

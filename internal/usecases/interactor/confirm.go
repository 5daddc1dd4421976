package interactor

import (
	"context"
	"fmt"
	"github.com/mufasadev/donation-ledger/internal/domain/gateways"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	apperrors "github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/internal/usecases/dtos"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
	"strings"
)

// ConfirmInteractor is the synchronous, client-initiated confirmation path. It asks the
// processor for the authorization's outcome and hands it to the reconciler.
type ConfirmInteractor struct {
	donations  repositories.DonationRepository
	processor  gateways.PaymentProcessor
	reconciler *ReconcileInteractor
	logger     *zerolog.Logger
}

func NewConfirmInteractor(donations repositories.DonationRepository, processor gateways.PaymentProcessor, reconciler *ReconcileInteractor) *ConfirmInteractor {
	return &ConfirmInteractor{
		donations:  donations,
		processor:  processor,
		reconciler: reconciler,
		logger:     log.Component("confirm"),
	}
}

// Confirm is idempotent. The processor is queried before any ledger transaction is opened,
// so a processor timeout leaves nothing mutated.
func (c *ConfirmInteractor) Confirm(ctx context.Context, reference string, source models.SignalSource) (*dtos.ConfirmationResponse, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperrors.NewInvalidInputError("authorizationReference", "is required")
	}

	donation, err := c.donations.GetByAuthorizationReference(ctx, reference)
	if err != nil {
		return nil, apperrors.NewPersistenceError("lookup donation", err)
	}
	if donation == nil {
		c.logger.Warn().Str("authorization_ref", reference).Msg("confirm for an unknown authorization reference")
		return nil, apperrors.NewNotFoundError("donation", reference)
	}

	state, err := c.processor.GetAuthorization(ctx, reference)
	if err != nil {
		var notFound *apperrors.NotFoundError
		var external *apperrors.ExternalServiceError
		if apperrors.As(err, &notFound) || apperrors.As(err, &external) {
			return nil, err
		}
		return nil, apperrors.NewExternalServiceError("payment processor", err)
	}

	if !state.Settled {
		c.logger.Debug().
			Str("authorization_ref", reference).
			Str("processor_status", state.RawStatus).
			Msg("authorization not settled yet")
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("payment not settled (%s)", state.RawStatus))
	}

	result, err := c.reconciler.Reconcile(ctx, models.ConfirmationSignal{
		AuthorizationReference: reference,
		Outcome:                state.Outcome,
		ChargeReference:        state.ChargeReference,
		Source:                 source,
	})
	if err != nil {
		return nil, err
	}

	return dtos.NewConfirmationResponse(result), nil
}

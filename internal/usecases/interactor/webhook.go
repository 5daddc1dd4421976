package interactor

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/domain/gateways"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	apperrors "github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/internal/metrics"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
)

// WebhookInteractor is the asynchronous delivery path. Events are trusted only after the
// verifier accepts their signature; the embedded outcome is then used as-is.
type WebhookInteractor struct {
	verifier   gateways.EventVerifier
	reconciler *ReconcileInteractor
	disputes   *DisputeInteractor
	logger     *zerolog.Logger
}

func NewWebhookInteractor(verifier gateways.EventVerifier, reconciler *ReconcileInteractor, disputes *DisputeInteractor) *WebhookInteractor {
	return &WebhookInteractor{
		verifier:   verifier,
		reconciler: reconciler,
		disputes:   disputes,
		logger:     log.Component("webhook"),
	}
}

func (w *WebhookInteractor) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := w.verifier.VerifyEvent(payload, signature)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unverified", "rejected").Inc()
		w.logger.Warn().Err(err).Msg("rejected unverifiable webhook event")
		var authErr *apperrors.AuthenticityError
		var inputErr *apperrors.InvalidInputError
		if apperrors.As(err, &authErr) || apperrors.As(err, &inputErr) {
			return err
		}
		return apperrors.NewAuthenticityError(err)
	}

	l := w.logger.With().Str("event_id", event.ID).Str("event_type", event.RawType).Logger()

	switch event.Type {
	case gateways.EventPaymentSucceeded, gateways.EventPaymentFailed:
		outcome := models.OutcomeSucceeded
		if event.Type == gateways.EventPaymentFailed {
			outcome = models.OutcomeFailed
		}
		_, err = w.reconciler.Reconcile(ctx, models.ConfirmationSignal{
			AuthorizationReference: event.AuthorizationReference,
			Outcome:                outcome,
			ChargeReference:        event.ChargeReference,
			Source:                 models.SourceWebhook,
		})
	case gateways.EventPaymentAttemptFailed:
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "acknowledged").Inc()
		l.Info().Str("authorization_ref", event.AuthorizationReference).Msg("payment attempt declined, donation stays pending")
		return nil
	case gateways.EventDisputeCreated:
		err = w.disputes.HandleDispute(ctx, event)
	default:
		metrics.WebhookEvents.WithLabelValues(event.RawType, "ignored").Inc()
		l.Debug().Msg("ignoring unsupported event type")
		return nil
	}

	if err != nil {
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "failed").Inc()
		l.Error().Err(err).Bool("retryable", apperrors.Retryable(err)).Msg("webhook event not processed")
		return err
	}

	metrics.WebhookEvents.WithLabelValues(string(event.Type), "processed").Inc()
	return nil
}

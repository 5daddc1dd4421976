package stripe

import (
	"encoding/json"
	"fmt"
	"github.com/mufasadev/donation-ledger/internal/domain/gateways"
	apperrors "github.com/mufasadev/donation-ledger/internal/errors"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"time"
)

const (
	eventPaymentIntentSucceeded = "payment_intent.succeeded"
	eventPaymentIntentFailed    = "payment_intent.payment_failed"
	eventPaymentIntentCanceled  = "payment_intent.canceled"
	eventDisputeCreated         = "charge.dispute.created"
)

type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret, tolerance: webhook.DefaultTolerance}
}

// VerifyEvent checks the Stripe-Signature header and decodes the event into the gateway shape.
// Event types the ledger does not act on come back as EventUnsupported.
func (v *Verifier) VerifyEvent(payload []byte, signature string) (*gateways.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, verificationError(err)
	}

	out := &gateways.Event{ID: event.ID, RawType: string(event.Type), Type: gateways.EventUnsupported}
	if event.Data == nil {
		return out, nil
	}

	switch out.RawType {
	case eventPaymentIntentSucceeded, eventPaymentIntentFailed, eventPaymentIntentCanceled:
		var pi stripego.PaymentIntent
		if err = json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, apperrors.NewInvalidInputError("payload", fmt.Sprintf("payment intent: %v", err))
		}
		out.AuthorizationReference = pi.ID
		if pi.LatestCharge != nil {
			out.ChargeReference = pi.LatestCharge.ID
		}
		switch out.RawType {
		case eventPaymentIntentSucceeded:
			out.Type = gateways.EventPaymentSucceeded
		case eventPaymentIntentCanceled:
			out.Type = gateways.EventPaymentFailed
		default:
			// payment_failed leaves the intent open for another payment method.
			out.Type = gateways.EventPaymentAttemptFailed
		}
	case eventDisputeCreated:
		var dispute stripego.Dispute
		if err = json.Unmarshal(event.Data.Raw, &dispute); err != nil {
			return nil, apperrors.NewInvalidInputError("payload", fmt.Sprintf("dispute: %v", err))
		}
		out.Type = gateways.EventDisputeCreated
		if dispute.Charge != nil {
			out.ChargeReference = dispute.Charge.ID
		}
		out.DisputeReason = string(dispute.Reason)
		out.DisputeAmount = fromMinorUnits(dispute.Amount, string(dispute.Currency))
	}

	return out, nil
}

// verificationError separates bad signatures from bodies that are not events at all.
func verificationError(err error) error {
	switch err {
	case webhook.ErrNotSigned, webhook.ErrInvalidHeader, webhook.ErrNoValidSignature, webhook.ErrTooOld:
		return apperrors.NewAuthenticityError(err)
	}
	return apperrors.NewInvalidInputError("payload", err.Error())
}

package gateways

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/shopspring/decimal"
)

type AuthorizationRequest struct {
	Amount     decimal.Decimal
	Currency   string
	DonationID string
	CampaignID string
}

type Authorization struct {
	Reference    string
	ClientSecret string
}

// AuthorizationState is the processor's view of an authorization. Settled is false while the
// payment is still in flight; Outcome is only meaningful once Settled is true.
type AuthorizationState struct {
	Settled         bool
	Outcome         models.Outcome
	ChargeReference string
	RawStatus       string
}

// PaymentProcessor is the external processor that authorizes and captures donor funds.
type PaymentProcessor interface {
	CreateAuthorization(ctx context.Context, req AuthorizationRequest) (*Authorization, error)
	GetAuthorization(ctx context.Context, reference string) (*AuthorizationState, error)
	CancelAuthorization(ctx context.Context, reference string) error
}

type EventType string

const (
	EventPaymentSucceeded EventType = "payment.succeeded"
	// EventPaymentFailed is terminal: the authorization can no longer be paid.
	EventPaymentFailed EventType = "payment.failed"
	// EventPaymentAttemptFailed is a declined attempt; the donor may still retry on the same authorization.
	EventPaymentAttemptFailed EventType = "payment.attempt_failed"
	EventDisputeCreated       EventType = "dispute.created"
	EventUnsupported          EventType = "unsupported"
)

// Event is a verified processor push message reduced to what this service acts on.
type Event struct {
	ID                     string
	Type                   EventType
	RawType                string
	AuthorizationReference string
	ChargeReference        string
	DisputeReason          string
	DisputeAmount          decimal.Decimal
}

// EventVerifier authenticates a raw push payload against its signature header.
type EventVerifier interface {
	VerifyEvent(payload []byte, signature string) (*Event, error)
}

// Publisher fans a stored notification out to live listeners.
type Publisher interface {
	Publish(ctx context.Context, notification *models.Notification) error
}

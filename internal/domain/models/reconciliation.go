package models

// Outcome is the terminal result of an external payment authorization.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// SignalSource names the path a confirmation signal arrived through.
type SignalSource string

const (
	SourceConfirm  SignalSource = "confirm"
	SourceWebhook  SignalSource = "webhook"
	SourceSweep    SignalSource = "sweep"
	SourceOperator SignalSource = "operator"
)

// ConfirmationSignal is what both delivery paths hand to the reconciler.
type ConfirmationSignal struct {
	AuthorizationReference string
	Outcome                Outcome
	ChargeReference        string
	Source                 SignalSource
}

// LedgerResult is the state of the donation and its campaign after a guarded ledger write.
// Applied is true only for the single call that moved the donation out of PENDING.
type LedgerResult struct {
	Donation          Donation
	Campaign          Campaign
	Applied           bool
	CampaignCompleted bool
}

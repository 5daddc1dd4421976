package models

import (
	"github.com/shopspring/decimal"
	"time"
)

type DonationStatus string

const (
	DonationPending   DonationStatus = "PENDING"
	DonationCompleted DonationStatus = "COMPLETED"
	DonationFailed    DonationStatus = "FAILED"
	DonationRefunded  DonationStatus = "REFUNDED"
)

// Terminal reports whether the reconciler may no longer move the donation.
func (s DonationStatus) Terminal() bool {
	return s != DonationPending
}

type Donation struct {
	ID                     string          `db:"id" json:"id"`
	CampaignID             string          `db:"campaign_id" json:"campaignId"`
	DonorID                *string         `db:"donor_id" json:"donorId,omitempty"`
	Amount                 decimal.Decimal `db:"amount" json:"amount"`
	Currency               string          `db:"currency" json:"currency"`
	Status                 DonationStatus  `db:"status" json:"status"`
	AuthorizationReference *string         `db:"authorization_reference" json:"authorizationReference,omitempty"`
	ChargeReference        *string         `db:"charge_reference" json:"chargeReference,omitempty"`
	Message                *string         `db:"message" json:"message,omitempty"`
	IsAnonymous            bool            `db:"is_anonymous" json:"isAnonymous"`
	ProcessedAt            *time.Time      `db:"processed_at" json:"processedAt,omitempty"`
	CreatedAt              time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time       `db:"updated_at" json:"updatedAt"`
}

// Settlement carries what the processor told us about a captured payment.
type Settlement struct {
	ChargeReference string
	ProcessedAt     time.Time
}

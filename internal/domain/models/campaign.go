package models

import (
	"github.com/shopspring/decimal"
	"time"
)

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "DRAFT"
	CampaignActive    CampaignStatus = "ACTIVE"
	CampaignCompleted CampaignStatus = "COMPLETED"
	CampaignCancelled CampaignStatus = "CANCELLED"
)

var hundred = decimal.NewFromInt(100)

type Campaign struct {
	ID            string          `db:"id" json:"id"`
	OwnerID       string          `db:"owner_id" json:"ownerId"`
	Title         string          `db:"title" json:"title"`
	GoalAmount    decimal.Decimal `db:"goal_amount" json:"goalAmount"`
	CurrentAmount decimal.Decimal `db:"current_amount" json:"currentAmount"`
	Currency      string          `db:"currency" json:"currency"`
	Status        CampaignStatus  `db:"status" json:"status"`
	EndDate       *time.Time      `db:"end_date" json:"endDate,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// AcceptsDonations reports whether new payment intents may be issued against the campaign at now.
func (c Campaign) AcceptsDonations(now time.Time) bool {
	if c.Status != CampaignActive {
		return false
	}
	return c.EndDate == nil || now.Before(*c.EndDate)
}

// GoalReached reports whether the running total meets the goal. Overshoot is kept as-is.
func (c Campaign) GoalReached() bool {
	return c.CurrentAmount.GreaterThanOrEqual(c.GoalAmount)
}

// ProgressPercentage is currentAmount/goalAmount as a percentage, two decimals, capped at 100.
func (c Campaign) ProgressPercentage() decimal.Decimal {
	if !c.GoalAmount.IsPositive() {
		return hundred
	}
	p := c.CurrentAmount.Div(c.GoalAmount).Mul(hundred).Round(2)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// LedgerDrift is a campaign whose running total disagrees with its completed donations.
type LedgerDrift struct {
	CampaignID    string
	CurrentAmount decimal.Decimal
	CompletedSum  decimal.Decimal
}

package dtos

import (
	"encoding/json"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/shopspring/decimal"
	"strings"
)

type CreateIntentDTO struct {
	Amount      string          `json:"-"`
	RawAmount   json.RawMessage `json:"amount"`
	Currency    string          `json:"currency"`
	IsAnonymous bool            `json:"isAnonymous"`
	Message     *string         `json:"message,omitempty"`
	DonorID     *string         `json:"donorId,omitempty"`
}

// NormalizeAmount accepts the amount as either a JSON string or a JSON number.
func (d *CreateIntentDTO) NormalizeAmount() {
	d.Amount = strings.Trim(strings.TrimSpace(string(d.RawAmount)), `"`)
}

type IntentResponse struct {
	DonationID             string          `json:"donationId"`
	AuthorizationReference string          `json:"authorizationReference"`
	ClientSecret           string          `json:"clientSecret"`
	Amount                 decimal.Decimal `json:"amount"`
	Currency               string          `json:"currency"`
}

type ConfirmDTO struct {
	AuthorizationReference string `json:"authorizationReference"`
}

type CampaignProgress struct {
	ID                 string                `json:"id"`
	CurrentAmount      decimal.Decimal       `json:"currentAmount"`
	GoalAmount         decimal.Decimal       `json:"goalAmount"`
	Status             models.CampaignStatus `json:"status"`
	ProgressPercentage decimal.Decimal       `json:"progressPercentage"`
}

type ConfirmationResponse struct {
	DonationID string                `json:"donationId"`
	Status     models.DonationStatus `json:"status"`
	Applied    bool                  `json:"applied"`
	Campaign   CampaignProgress      `json:"campaign"`
}

// NewConfirmationResponse builds the confirm snapshot from a ledger result.
func NewConfirmationResponse(result *models.LedgerResult) *ConfirmationResponse {
	return &ConfirmationResponse{
		DonationID: result.Donation.ID,
		Status:     result.Donation.Status,
		Applied:    result.Applied,
		Campaign: CampaignProgress{
			ID:                 result.Campaign.ID,
			CurrentAmount:      result.Campaign.CurrentAmount,
			GoalAmount:         result.Campaign.GoalAmount,
			Status:             result.Campaign.Status,
			ProgressPercentage: result.Campaign.ProgressPercentage(),
		},
	}
}

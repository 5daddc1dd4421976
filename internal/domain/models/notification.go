package models

import "time"

type NotificationType string

const (
	NotificationDonationReceived  NotificationType = "DONATION_RECEIVED"
	NotificationCampaignCompleted NotificationType = "CAMPAIGN_COMPLETED"
	NotificationDonationDisputed  NotificationType = "DONATION_DISPUTED"
)

type Notification struct {
	ID          string            `db:"id" json:"id"`
	RecipientID string            `db:"recipient_id" json:"recipientId"`
	Type        NotificationType  `db:"type" json:"type"`
	Message     string            `db:"message" json:"message"`
	Payload     map[string]string `db:"payload" json:"payload,omitempty"`
	DonationID  *string           `db:"donation_id" json:"donationId,omitempty"`
	CampaignID  *string           `db:"campaign_id" json:"campaignId,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
}

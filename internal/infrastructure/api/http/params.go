package http

const (
	CampaignIDParam = "campaignId"
	UserIDParam     = "userId"

	SignatureHeader = "Stripe-Signature"
)

package repositories

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"time"
)

const (
	SerializationError   = "40001"
	UniqueViolationError = "23505"
)

// DonationRepository reads and creates donations. Status changes go through LedgerRepository.
// Lookups return (nil, nil) when nothing matches.
type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, id string) (*models.Donation, error)
	GetByAuthorizationReference(ctx context.Context, reference string) (*models.Donation, error)
	GetByChargeReference(ctx context.Context, reference string) (*models.Donation, error)
	// ListStalePending returns PENDING donations created before olderThan, least recently checked first.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.Donation, error)
	// MarkChecked records that a PENDING donation was looked at and is still unsettled.
	MarkChecked(ctx context.Context, id string, at time.Time) error
}

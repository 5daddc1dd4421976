package di

import (
	"github.com/mufasadev/donation-ledger/internal/config"
	"github.com/mufasadev/donation-ledger/internal/domain/gateways"
	"github.com/mufasadev/donation-ledger/internal/infrastructure/api/handlers"
	"github.com/mufasadev/donation-ledger/internal/infrastructure/database/repositories"
	"github.com/mufasadev/donation-ledger/internal/infrastructure/notifications"
	"github.com/mufasadev/donation-ledger/internal/usecases/interactor"
	"github.com/mufasadev/donation-ledger/pkg/postgresql"
	"github.com/redis/go-redis/v9"
)

// Payments bundles the processor side of the service so it can be swapped in tests and tools.
type Payments struct {
	Processor gateways.PaymentProcessor
	Verifier  gateways.EventVerifier
}

type Container struct {
	DonationHandler     *handlers.DonationHandler
	WebhookHandler      *handlers.WebhookHandler
	NotificationHandler *handlers.NotificationHandler

	ReconcileInteractor *interactor.ReconcileInteractor
	ConfirmInteractor   *interactor.ConfirmInteractor
	SweepInteractor     *interactor.SweepInteractor
	AuditInteractor     *interactor.AuditInteractor
}

// NewContainer creates a new Container instance.
func NewContainer(cfg *config.Config, db postgresql.Client, rdb redis.UniversalClient, payments Payments) *Container {
	donationRepository := repositories.NewDonationRepositoryImpl(db)
	campaignRepository := repositories.NewCampaignRepositoryImpl(db)
	ledgerRepository := repositories.NewLedgerRepositoryImpl(db, cfg.Ledger.Retries())
	userRepository := repositories.NewUserRepositoryImpl(db)
	notificationRepository := repositories.NewNotificationRepositoryImpl(db)

	publisher := notifications.NewRedisPublisher(rdb, cfg.Redis.Inbox())
	notificationInteractor := interactor.NewNotificationInteractor(notificationRepository, publisher)

	reconcileInteractor := interactor.NewReconcileInteractor(donationRepository, ledgerRepository, userRepository, notificationInteractor)
	confirmInteractor := interactor.NewConfirmInteractor(donationRepository, payments.Processor, reconcileInteractor)
	intentInteractor := interactor.NewIntentInteractor(campaignRepository, donationRepository, userRepository, payments.Processor)
	disputeInteractor := interactor.NewDisputeInteractor(donationRepository, campaignRepository, notificationInteractor)
	webhookInteractor := interactor.NewWebhookInteractor(payments.Verifier, reconcileInteractor, disputeInteractor)

	sweepInteractor := interactor.NewSweepInteractor(donationRepository, confirmInteractor, cfg.Process.StaleDuration(), cfg.Process.ExpireDuration(), cfg.Process.Batch())
	auditInteractor := interactor.NewAuditInteractor(campaignRepository)

	return &Container{
		DonationHandler:     handlers.NewDonationHandler(intentInteractor, confirmInteractor),
		WebhookHandler:      handlers.NewWebhookHandler(webhookInteractor),
		NotificationHandler: handlers.NewNotificationHandler(publisher),
		ReconcileInteractor: reconcileInteractor,
		ConfirmInteractor:   confirmInteractor,
		SweepInteractor:     sweepInteractor,
		AuditInteractor:     auditInteractor,
	}
}

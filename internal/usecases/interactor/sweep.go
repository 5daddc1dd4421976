package interactor

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	apperrors "github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/internal/metrics"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
	"time"
)

// SweepInteractor re-confirms donations stuck in PENDING, covering lost webhooks and
// clients that never came back to confirm. Donations still unsettled are marked checked so
// the next sweep starts with others; those older than expireAfter are cancelled and failed.
type SweepInteractor struct {
	donations   repositories.DonationRepository
	confirm     *ConfirmInteractor
	staleAfter  time.Duration
	expireAfter time.Duration
	batch       int
	now         func() time.Time
	logger      *zerolog.Logger
}

func NewSweepInteractor(donations repositories.DonationRepository, confirm *ConfirmInteractor, staleAfter, expireAfter time.Duration, batch int) *SweepInteractor {
	return &SweepInteractor{
		donations:   donations,
		confirm:     confirm,
		staleAfter:  staleAfter,
		expireAfter: expireAfter,
		batch:       batch,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      log.Component("sweep"),
	}
}

// Execute runs one sweep and returns how many donations it moved to a terminal state.
func (s *SweepInteractor) Execute(ctx context.Context) (int, error) {
	now := s.now()
	stale, err := s.donations.ListStalePending(ctx, now.Add(-s.staleAfter), s.batch)
	if err != nil {
		s.logger.Error().Err(err).Msg(apperrors.ErrFailedSweepPending)
		return 0, apperrors.NewPersistenceError("list stale donations", err)
	}

	settled := 0
	for _, donation := range stale {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		if donation.AuthorizationReference == nil {
			continue
		}

		l := s.logger.With().Str("donation_id", donation.ID).Str("authorization_ref", *donation.AuthorizationReference).Logger()

		resp, err := s.confirm.Confirm(ctx, *donation.AuthorizationReference, models.SourceSweep)
		if err != nil {
			var invalidState *apperrors.InvalidStateError
			unsettled := apperrors.As(err, &invalidState)
			switch {
			case unsettled && donation.CreatedAt.Before(now.Add(-s.expireAfter)):
				if s.expire(ctx, &l, *donation.AuthorizationReference) {
					settled++
					continue
				}
			case unsettled:
				metrics.SweptDonations.WithLabelValues("unsettled").Inc()
				l.Debug().Msg("still unsettled")
			default:
				metrics.SweptDonations.WithLabelValues("error").Inc()
				l.Warn().Err(err).Msg("sweep confirmation failed")
			}
			if err = s.donations.MarkChecked(ctx, donation.ID, s.now()); err != nil {
				l.Warn().Err(err).Msg("failed to mark donation checked")
			}
			continue
		}

		if resp.Applied {
			settled++
		}
		metrics.SweptDonations.WithLabelValues(string(resp.Status)).Inc()
	}

	s.logger.Info().Int("examined", len(stale)).Int("settled", settled).Msg("pending sweep finished")
	return settled, nil
}

// expire cancels an authorization the donor abandoned and fails its donation. The processor
// refuses to cancel an authorization that has already been paid or is mid-payment, in which
// case the donation is left for a later sweep.
func (s *SweepInteractor) expire(ctx context.Context, l *zerolog.Logger, reference string) bool {
	if err := s.confirm.processor.CancelAuthorization(ctx, reference); err != nil {
		metrics.SweptDonations.WithLabelValues("expire_refused").Inc()
		l.Warn().Err(err).Msg("could not cancel abandoned authorization")
		return false
	}

	result, err := s.confirm.reconciler.Reconcile(ctx, models.ConfirmationSignal{
		AuthorizationReference: reference,
		Outcome:                models.OutcomeFailed,
		Source:                 models.SourceSweep,
	})
	if err != nil {
		metrics.SweptDonations.WithLabelValues("error").Inc()
		l.Warn().Err(err).Msg("failed to fail expired donation")
		return false
	}

	metrics.SweptDonations.WithLabelValues("expired").Inc()
	l.Info().Msg("abandoned authorization cancelled")
	return result.Applied
}

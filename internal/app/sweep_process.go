package app

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/config"
	"github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
	"time"
)

type SweepHandler interface {
	Execute(ctx context.Context) (int, error)
}

// SweepProcess periodically re-confirms stale pending donations.
type SweepProcess struct {
	handler  SweepHandler
	interval time.Duration
	timeout  time.Duration
	logger   *zerolog.Logger
}

func NewSweepProcess(h SweepHandler, cfg config.Process) *SweepProcess {
	interval := cfg.SweepInterval()
	return &SweepProcess{
		handler:  h,
		interval: interval,
		timeout:  interval,
		logger:   log.Component("sweep"),
	}
}

// Run sweeps on every tick until ctx is cancelled. A failed sweep is logged and the loop continues.
func (p *SweepProcess) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", p.interval).Msg("pending sweep started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("pending sweep stopped")
			return ctx.Err()
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *SweepProcess) sweep(ctx context.Context) {
	timeout, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.handler.Execute(timeout); err != nil {
		p.logger.Error().Err(err).Msg(errors.ErrFailedSweepPending)
	}
}

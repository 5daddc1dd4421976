package app

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/mufasadev/donation-ledger/internal/config"
	"github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const shutdownTimeout = 30 * time.Second

// Process is a background loop that runs until its context is cancelled.
type Process interface {
	Run(ctx context.Context) error
}

type Service struct {
	config *config.Config
	logger *zerolog.Logger
}

// NewService creates a new instance of the service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg, logger: log.Component("app")}
}

// Run serves router and the background processes until ctx is cancelled or the process
// receives SIGINT/SIGTERM. Background processes are stopped before the server drains.
func (s *Service) Run(ctx context.Context, router chi.Router, processes ...Process) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	var wg sync.WaitGroup
	for _, p := range processes {
		wg.Add(1)
		go func(p Process) {
			defer wg.Done()
			_ = p.Run(ctx)
		}(p)
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()
	s.logger.Info().Str("addr", server.Addr).Msg("Server is listening")

	var err error
	select {
	case <-ctx.Done():
		s.logger.Info().Msg("Server is shutting down...")
	case err = <-serveErr:
		s.logger.Error().Err(err).Msg(errors.ErrorFailedToRunTheServer)
		stop()
	}

	wg.Wait()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(ctxShutdown); shutdownErr != nil {
		s.logger.Error().Err(shutdownErr).Msg(errors.ErrorFailedToShutdownTheServer)
		if err == nil {
			err = shutdownErr
		}
	}

	s.logger.Info().Msg("Server stopped")
	return err
}

package main

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/app"
	"github.com/mufasadev/donation-ledger/internal/config"
	"github.com/mufasadev/donation-ledger/internal/di"
	"github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/internal/infrastructure/api/routers"
	"github.com/mufasadev/donation-ledger/internal/infrastructure/database/db_client"
	"github.com/mufasadev/donation-ledger/internal/infrastructure/payments/stripe"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/mufasadev/donation-ledger/pkg/redisclient"
)

const (
	appName = "donation-ledger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	opts := []log.LoggerOption{log.WithConsoleLogger(), log.WithLogLevel(cfg.Log.Level)}
	if cfg.Log.File != "" {
		opts = append(opts, log.WithFileLogger(cfg.Log.File))
	}
	log.Init(appName, opts...)
	logger := log.GetLogger()

	if cfg.Stripe.SecretKey == "" || cfg.Stripe.WebhookSecret == "" {
		logger.Warn().Msg("stripe credentials are not configured")
	}

	pgClient := db_client.NewPGClient(cfg.PostgreSQL)
	db, err := pgClient.Connect(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToConnectToTheDatabase)
	}
	defer db.Close()

	rdb, err := redisclient.NewClient(ctx, cfg.Redis.URL, cfg.Redis.Attempts())
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToConnectToRedis)
	}
	defer rdb.Close()

	container := di.NewContainer(cfg, db, rdb, di.Payments{
		Processor: stripe.NewProcessor(cfg.Stripe.SecretKey),
		Verifier:  stripe.NewVerifier(cfg.Stripe.WebhookSecret),
	})

	sweep := app.NewSweepProcess(container.SweepInteractor, cfg.Process)

	router := routers.NewRouter(container)
	service := app.NewService(cfg)
	if err = service.Run(ctx, router, sweep); err != nil {
		logger.Error().Err(err).Msg(errors.ErrorFailedToRunTheServer)
	}
}

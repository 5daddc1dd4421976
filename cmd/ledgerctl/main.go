package main

import (
	"context"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mufasadev/donation-ledger/internal/config"
	"github.com/mufasadev/donation-ledger/internal/di"
	"github.com/mufasadev/donation-ledger/internal/infrastructure/database/db_client"
	"github.com/mufasadev/donation-ledger/internal/infrastructure/payments/stripe"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/mufasadev/donation-ledger/pkg/redisclient"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
)

const appName = "ledgerctl"

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Operate the donation ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		log.Init(appName, log.WithConsoleLogger(), log.WithLogLevel(cfg.Log.Level))
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func connectDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	db, err := db_client.NewPGClient(cfg.PostgreSQL).Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// newContainer wires the full service graph against live Postgres, Redis and Stripe.
func newContainer(ctx context.Context, cfg *config.Config) (*di.Container, func(), error) {
	db, err := connectDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	rdb, err := redisclient.NewClient(ctx, cfg.Redis.URL, cfg.Redis.Attempts())
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	container := di.NewContainer(cfg, db, rdb, di.Payments{
		Processor: stripe.NewProcessor(cfg.Stripe.SecretKey),
		Verifier:  stripe.NewVerifier(cfg.Stripe.WebhookSecret),
	})

	return container, func() {
		_ = rdb.Close()
		db.Close()
	}, nil
}

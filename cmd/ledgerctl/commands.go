package main

import (
	"encoding/json"
	"fmt"
	"github.com/mufasadev/donation-ledger/internal/config"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/infrastructure/database/migrations"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(sweepCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the ledger schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := connectDB(ctx, config.Load())
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := migrations.Apply(ctx, db)
		if err != nil {
			return err
		}
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
		}
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile AUTHORIZATION_REFERENCE",
	Short: "Confirm a donation against the payment processor",
	Long: `Fetch the authorization from the payment processor and settle the donation
if the payment has reached a terminal state. Safe to repeat: a donation that is
already settled is reported and left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		container, closeFn, err := newContainer(ctx, config.Load())
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := container.ConfirmInteractor.Confirm(ctx, args[0], models.SourceOperator)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Compare campaign totals against their completed donations",
	Long:  `Exits non-zero when any campaign total differs from the sum of its COMPLETED donations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		container, closeFn, err := newContainer(ctx, config.Load())
		if err != nil {
			return err
		}
		defer closeFn()

		drift, err := container.AuditInteractor.Drift(ctx)
		if err != nil {
			return err
		}
		if len(drift) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "ledger is consistent")
			return nil
		}

		for _, d := range drift {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tcurrent=%s\tcompleted=%s\n", d.CampaignID, d.CurrentAmount, d.CompletedSum)
		}
		return fmt.Errorf("%d campaign(s) out of balance", len(drift))
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one pass of the stale pending donation sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		container, closeFn, err := newContainer(ctx, config.Load())
		if err != nil {
			return err
		}
		defer closeFn()

		settled, err := container.SweepInteractor.Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "settled %d donation(s)\n", settled)
		return nil
	},
}


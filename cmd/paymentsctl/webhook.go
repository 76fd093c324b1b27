package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/config"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/database"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/logger"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/payments"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/payments/gateway"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/services"
	"github.com/spf13/cobra"
)

func signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign [file|-]",
		Short: "Compute the x-paystack-signature for a webhook body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			if secret == "" {
				secret = os.Getenv("PAYSTACK_SECRET_KEY")
			}
			if secret == "" {
				return fmt.Errorf("no secret: pass --secret or set PAYSTACK_SECRET_KEY")
			}
			body, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), gateway.SignPaystackPayload(body, secret))
			return nil
		},
	}
	cmd.Flags().String("secret", "", "Paystack secret key (defaults to PAYSTACK_SECRET_KEY)")
	return cmd
}

// replayCmd re-runs a stored webhook body through authentication and
// reconciliation. Used after a logged storage failure.
func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [file|-]",
		Short: "Reconcile a stored webhook body against the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, _ := cmd.Flags().GetString("provider")
			signature, _ := cmd.Flags().GetString("signature")

			body, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.NewDatabase(cfg.GetDSN())
			if err != nil {
				return err
			}
			defer db.Close()

			log, err := logger.New(cfg.Environment)
			if err != nil {
				return err
			}
			defer log.Sync()

			store := services.NewPaymentService(db)
			outcome, err := replay(cmd.Context(),
				payments.NewAuthenticator(gateway.All(cfg)...),
				payments.NewDispatcher(store, log, cfg.Payments.WebhookTimeout),
				provider, signature, body,
			)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome)
			if outcome == payments.OutcomeStorageFailed {
				return fmt.Errorf("reconciliation write failed")
			}
			return nil
		},
	}
	cmd.Flags().StringP("provider", "p", config.GatewayPaystack, "provider the body came from (hubtel, paystack)")
	cmd.Flags().StringP("signature", "s", "", "x-paystack-signature as originally received")
	return cmd
}

type authenticator interface {
	Authenticate(provider string, header http.Header, body []byte) (*payments.WebhookEvent, error)
}

type reconciler interface {
	Reconcile(ctx context.Context, ev *payments.WebhookEvent) payments.Outcome
}

func replay(ctx context.Context, auth authenticator, recon reconciler, provider, signature string, body []byte) (payments.Outcome, error) {
	header := http.Header{}
	if signature != "" {
		header.Set(gateway.PaystackSignatureHeader, signature)
	}
	ev, err := auth.Authenticate(provider, header, body)
	if err != nil {
		return "", err
	}
	return recon.Reconcile(ctx, ev), nil
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

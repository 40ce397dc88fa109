package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/billing"
)

// subscribeCommand returns a CLI command that starts a premium subscription
// payment.
//
// Usage example:
//
//	walletmonitor subscribe --user 42 --months 3
func subscribeCommand(bs billing.Service) *cli.Command {
	return &cli.Command{
		Name:        "subscribe",
		Description: "Start a payment for a premium subscription.",
		Usage:       "Creates a pending payment. Confirm it with the confirm command once paid.",
		Flags: []cli.Flag{
			userFlag(),
			&cli.IntFlag{
				Name:  "months",
				Usage: "Number of months to purchase",
				Value: 1,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			payment, err := bs.StartPayment(ctx, c.Int("user"), billing.TierPremium, int(c.Int("months")))
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "payment %s created: %s for %d month(s)\n",
				payment.ID, payment.Amount, payment.Months)
			return nil
		},
	}
}

// confirmPaymentCommand returns a CLI command that confirms a pending
// payment and activates the subscription.
//
// Usage example:
//
//	walletmonitor confirm --user 42 --payment 8c2f...
func confirmPaymentCommand(bs billing.Service) *cli.Command {
	return &cli.Command{
		Name:        "confirm",
		Description: "Confirm a pending payment and extend the premium subscription.",
		Usage:       "Checks the payment with the gateway and applies it. Safe to retry.",
		Flags: []cli.Flag{
			userFlag(),
			paymentFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			paymentID, err := uuid.Parse(c.String("payment"))
			if err != nil {
				return fmt.Errorf("invalid payment id: %w", err)
			}

			plan, err := bs.ConfirmPayment(ctx, c.Int("user"), paymentID)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "premium active until %s\n", plan.ExpiresAt.Format("2006-01-02"))
			return nil
		},
	}
}

// cancelPaymentCommand returns a CLI command that abandons a pending
// payment.
//
// Usage example:
//
//	walletmonitor cancel-payment --user 42 --payment 8c2f...
func cancelPaymentCommand(bs billing.Service) *cli.Command {
	return &cli.Command{
		Name:        "cancel-payment",
		Description: "Cancel a pending subscription payment.",
		Usage:       "Abandons a payment that has not been confirmed yet.",
		Flags: []cli.Flag{
			userFlag(),
			paymentFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			paymentID, err := uuid.Parse(c.String("payment"))
			if err != nil {
				return fmt.Errorf("invalid payment id: %w", err)
			}

			return bs.CancelPayment(ctx, c.Int("user"), paymentID)
		},
	}
}

// currentPlanCommand returns a CLI command that prints the user's effective
// subscription plan.
//
// Usage example:
//
//	walletmonitor plan --user 42
func currentPlanCommand(bs billing.Service) *cli.Command {
	return &cli.Command{
		Name:        "plan",
		Description: "Show the user's effective subscription tier.",
		Usage:       "Prints the tier and, for premium, the expiry date.",
		Flags: []cli.Flag{
			userFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			plan, err := bs.CurrentPlan(ctx, c.Int("user"))
			if err != nil {
				return err
			}

			if plan.Tier == billing.TierPremium {
				fmt.Fprintf(c.Root().Writer, "premium until %s\n", plan.ExpiresAt.Format("2006-01-02"))
			} else {
				fmt.Fprintln(c.Root().Writer, "free")
			}

			return nil
		},
	}
}

// paymentFlag is the payment id flag shared by the billing commands.
func paymentFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "payment",
		Usage:    "Id of the payment",
		Required: true,
	}
}

// Package cli exposes the wallet monitor's operations as a command-line
// application.
package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/billing"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/walletregistry"
)

// Run initializes and executes the walletmonitor CLI application.
//
// It registers all available commands, including:
//
//   - `start`: Runs the background transaction monitor.
//   - `watch`, `unwatch`, `wallets`, `balance`: Wallet registry operations.
//   - `subscribe`, `confirm`, `cancel-payment`, `plan`: Billing operations.
func Run(ctx context.Context, wr walletregistry.Service, tm txmonitor.Service, bs billing.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "walletmonitor",
		Description:           "Command-line interface for the crypto wallet transaction monitor.",
		Usage:                 "walletmonitor [command] [flags]",
		Commands: []*cli.Command{
			startMonitorCommand(tm),
			startWatchingWalletCommand(wr),
			stopWatchingWalletCommand(wr),
			listWalletsCommand(wr),
			walletBalanceCommand(wr),
			subscribeCommand(bs),
			confirmPaymentCommand(bs),
			cancelPaymentCommand(bs),
			currentPlanCommand(bs),
		},
	}

	return app.Run(ctx, os.Args)
}

// userFlag is the Telegram user id flag shared by all per-owner commands.
func userFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:     "user",
		Usage:    "Telegram user id of the wallet owner",
		Required: true,
	}
}

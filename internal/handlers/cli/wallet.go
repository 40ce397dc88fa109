package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/walletregistry"
)

// startWatchingWalletCommand returns a CLI command that registers a wallet
// address for transaction monitoring on a specified chain.
//
// Usage example:
//
//	walletmonitor watch --user 42 --chain ethereum --address 0xABC123... --label savings
func startWatchingWalletCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "watch",
		Description: "Register a wallet to be monitored for transaction activity on a specific chain.",
		Usage:       "Registers a wallet address for watching. Must provide user, chain and address.",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{
				Name:     "chain",
				Usage:    "Blockchain name (ethereum, bitcoin, bsc)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Wallet address to start watching",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "label",
				Usage: "Optional display name for the wallet",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			wallet, err := wr.StartWatching(ctx, c.Int("user"), c.String("chain"), c.String("address"), c.String("label"))
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "watching %s (%s), wallet id %s\n", wallet.Address, wallet.Chain, wallet.ID)
			return nil
		},
	}
}

// stopWatchingWalletCommand returns a CLI command that unregisters one of
// the user's wallets.
//
// Usage example:
//
//	walletmonitor unwatch --user 42 --wallet 8c2f...
func stopWatchingWalletCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "unwatch",
		Description: "Unregister a wallet and drop its recorded transactions.",
		Usage:       "Stops watching a wallet. Must provide user and wallet id.",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{
				Name:     "wallet",
				Usage:    "Id of the wallet to stop watching",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			walletID, err := uuid.Parse(c.String("wallet"))
			if err != nil {
				return fmt.Errorf("invalid wallet id: %w", err)
			}

			return wr.StopWatching(ctx, c.Int("user"), walletID)
		},
	}
}

// listWalletsCommand returns a CLI command that prints the user's
// registered wallets.
//
// Usage example:
//
//	walletmonitor wallets --user 42
func listWalletsCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "wallets",
		Description: "List all wallets registered by a user.",
		Usage:       "Prints the user's wallets with ids, chains and labels.",
		Flags: []cli.Flag{
			userFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			wallets, err := wr.ListWallets(ctx, c.Int("user"))
			if err != nil {
				return err
			}

			for _, wallet := range wallets {
				label := wallet.Label
				if label == "" {
					label = "-"
				}

				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\t%s\n", wallet.ID, wallet.Chain, wallet.Address, label)
			}

			return nil
		},
	}
}

// walletBalanceCommand returns a CLI command that fetches the current
// on-chain balance of one of the user's wallets.
//
// Usage example:
//
//	walletmonitor balance --user 42 --wallet 8c2f...
func walletBalanceCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "balance",
		Description: "Fetch the current on-chain balance of a registered wallet.",
		Usage:       "Prints the wallet's balance. Must provide user and wallet id.",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{
				Name:     "wallet",
				Usage:    "Id of the wallet to query",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			walletID, err := uuid.Parse(c.String("wallet"))
			if err != nil {
				return fmt.Errorf("invalid wallet id: %w", err)
			}

			balance, err := wr.WalletBalance(ctx, c.Int("user"), walletID)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", balance)
			return nil
		},
	}
}

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
)

// shutdownTimeout bounds how long the monitor may spend finishing its
// in-flight poll cycle on shutdown.
const shutdownTimeout = 30 * time.Second

// startMonitorCommand returns a CLI command that runs the background
// transaction monitor.
//
// Usage example:
//
//	walletmonitor start
//
// The process runs indefinitely until it receives an interrupt (SIGINT or
// SIGTERM).
func startMonitorCommand(tm txmonitor.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the background transaction monitor polling all registered wallets.",
		Usage:       "Runs the monitor until interrupted. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			if err := tm.Start(ctx); err != nil {
				return err
			}

			<-quit

			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			return tm.Close(closeCtx)
		},
	}
}

package txmonitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/logger"
)

// Start redelivers any notifications left unsent by a previous run, then
// launches the supervised polling loop. It returns an error only when the
// recovery pass cannot read the ledger; loop failures are handled by the
// restart policy.
func (s *service) Start(ctx context.Context) error {
	if err := s.redeliverUnnotified(ctx); err != nil {
		return fmt.Errorf("redelivering pending notifications: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	go s.supervise(loopCtx)

	return nil
}

// Close stops the polling loop and waits for the in-flight cycle to finish
// or the context to expire.
func (s *service) Close(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// supervise keeps the loop alive across failures, restarting it per the
// configured policy. A panic inside the loop is converted to an error so the
// policy sees it like any other crash.
func (s *service) supervise(ctx context.Context) {
	defer close(s.done)

	restarts := 0
	err := s.restartPolicy.Execute(ctx, func() error {
		if restarts > 0 {
			logger.Warn(ctx, "restarting monitor loop", "restarts", restarts)
		}
		restarts++

		return s.runLoop(ctx)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "monitor loop terminated", "error", err)
	}
}

// runLoop spaces cycles pollInterval apart, start to start. A long cycle is
// followed immediately by the next one; cycles never stack.
func (s *service) runLoop(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("monitor loop panicked: %v", r)
		}
	}()

	for {
		startedAt := time.Now()
		s.runCycle(ctx)

		wait := s.pollInterval - time.Since(startedAt)
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// runCycle polls every registered wallet once, at most maxConcurrent in
// parallel. Per-wallet failures are logged and isolated; they never abort
// the cycle or the loop.
func (s *service) runCycle(ctx context.Context) {
	wallets, err := s.walletStorage.ListAllWallets(ctx)
	if err != nil {
		logger.Error(ctx, "listing wallets for poll cycle", "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for _, wallet := range wallets {
		g.Go(func() error {
			wctx := logger.Derive(gctx,
				"wallet_id", wallet.ID.String(),
				"chain", wallet.Chain,
				"address", wallet.Address,
			)

			if err := s.pollWallet(wctx, wallet); err != nil {
				logger.Warn(wctx, "wallet poll failed", "error", err)
			}

			return nil
		})
	}

	_ = g.Wait()
}

// pollWallet fetches the wallet's transactions since its watermark, records
// and notifies the new ones oldest first, and advances the watermark as the
// final step. Any failure before that final step leaves the watermark
// untouched so the same window is re-fetched and deduplicated next cycle.
func (s *service) pollWallet(ctx context.Context, wallet Wallet) error {
	explorer, ok := s.explorers[wallet.Chain]
	if !ok {
		logger.Warn(ctx, "no explorer configured for chain")
		return nil
	}

	if cooling, err := s.cooldowns.InCooldown(ctx, wallet.Chain); err != nil {
		logger.Warn(ctx, "checking chain cooldown", "error", err)
	} else if cooling {
		logger.Debug(ctx, "chain in cooldown, skipping wallet")
		return nil
	}

	if limiter, ok := s.limiters[wallet.Chain]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}

	checkedAt := time.Now().UTC()

	txs, err := explorer.FetchTransactions(ctx, wallet.Address, wallet.LastCheckedAt, s.fetchLimit)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			if cerr := s.cooldowns.StartCooldown(ctx, wallet.Chain, s.cooldownTTL); cerr != nil {
				logger.Warn(ctx, "starting chain cooldown", "error", cerr)
			}
		}

		return fmt.Errorf("fetching transactions: %w", err)
	}

	// Explorers return newest first; process in chronological order so
	// notifications arrive in the order the transactions happened.
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]

		inserted, err := s.ledger.RecordIfNew(ctx, wallet.ID, tx)
		if err != nil {
			return fmt.Errorf("recording transaction %s: %w", tx.Hash, err)
		}
		if !inserted {
			continue
		}

		s.dispatchNotification(ctx, wallet, tx)
	}

	if err := s.walletStorage.AdvanceWatermark(ctx, wallet.ID, checkedAt); err != nil {
		return fmt.Errorf("advancing watermark: %w", err)
	}

	return nil
}

// dispatchNotification delivers the notification and marks the ledger record
// sent on success. A delivery failure is logged and the record stays unsent
// for the next startup recovery pass; it is never retried within the running
// process, keeping delivery at most once.
func (s *service) dispatchNotification(ctx context.Context, wallet Wallet, tx Transaction) {
	if err := s.notifier.NotifyTransaction(ctx, wallet, tx); err != nil {
		logger.Error(ctx, "delivering transaction notification",
			"tx_hash", tx.Hash,
			"error", err,
		)
		return
	}

	if err := s.ledger.MarkNotificationSent(ctx, wallet.ID, tx.Hash); err != nil {
		logger.Error(ctx, "marking notification sent",
			"tx_hash", tx.Hash,
			"error", err,
		)
	}
}

// redeliverUnnotified re-dispatches notifications for ledger records whose
// delivery never completed, typically after a crash between insert and send.
func (s *service) redeliverUnnotified(ctx context.Context) error {
	records, err := s.ledger.ListUnnotified(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return nil
	}

	logger.Info(ctx, "redelivering pending notifications", "count", len(records))

	for _, record := range records {
		s.dispatchNotification(ctx, record.Wallet, record.Transaction)
	}

	return nil
}

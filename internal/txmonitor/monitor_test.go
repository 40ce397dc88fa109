package txmonitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/logger"
)

func init() {
	// Initialize logger for tests to prevent nil pointer dereference
	_ = logger.Init("error")
}

func testWallet(chain string) Wallet {
	return Wallet{
		ID:            uuid.New(),
		OwnerID:       42,
		Chain:         chain,
		Address:       "0x742d35cc6634c0532925a3b844bc454e4438f44e",
		LastCheckedAt: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testTransaction(hash string, ts time.Time) Transaction {
	return Transaction{
		Hash:      hash,
		Direction: DirectionIncoming,
		Amount:    decimal.RequireFromString("0.5"),
		Fee:       decimal.RequireFromString("0.0001"),
		Timestamp: ts,
	}
}

func TestService_pollWallet(t *testing.T) {
	t.Run("records and notifies new transactions oldest first, then advances the watermark", func(t *testing.T) {
		wallet := testWallet("ethereum")
		now := time.Now().UTC()

		// Newest first, the way explorers return them.
		txs := []Transaction{
			testTransaction("tx3", now.Add(-1*time.Minute)),
			testTransaction("tx2", now.Add(-2*time.Minute)),
			testTransaction("tx1", now.Add(-3*time.Minute)),
		}

		explorer := newExplorerMock(t)
		ledger := newLedgerMock(t)
		notifier := newNotifierMock(t)
		walletStorage := newWalletStorageMock(t)

		explorer.On("FetchTransactions", mock.Anything, wallet.Address, wallet.LastCheckedAt, 20).
			Return(txs, nil).Once()

		var recorded, notified []string
		for _, tx := range txs {
			ledger.On("RecordIfNew", mock.Anything, wallet.ID, tx).
				Run(func(args mock.Arguments) {
					recorded = append(recorded, args.Get(2).(Transaction).Hash)
				}).
				Return(true, nil).Once()
			notifier.On("NotifyTransaction", mock.Anything, wallet, tx).
				Run(func(args mock.Arguments) {
					notified = append(notified, args.Get(2).(Transaction).Hash)
				}).
				Return(nil).Once()
			ledger.On("MarkNotificationSent", mock.Anything, wallet.ID, tx.Hash).
				Return(nil).Once()
		}

		pollStart := time.Now().UTC()
		walletStorage.On("AdvanceWatermark", mock.Anything, wallet.ID, mock.MatchedBy(func(ts time.Time) bool {
			return !ts.Before(pollStart) && !ts.After(time.Now().UTC())
		})).Return(nil).Once()

		svc := &service{
			walletStorage: walletStorage,
			ledger:        ledger,
			notifier:      notifier,
			explorers:     map[string]Explorer{"ethereum": explorer},
			cooldowns:     nopCooldownStorage{},
			fetchLimit:    20,
		}

		err := svc.pollWallet(t.Context(), wallet)
		require.NoError(t, err)

		assert.Equal(t, []string{"tx1", "tx2", "tx3"}, recorded)
		assert.Equal(t, []string{"tx1", "tx2", "tx3"}, notified)
	})

	t.Run("skips notification for already recorded transactions", func(t *testing.T) {
		wallet := testWallet("ethereum")
		tx := testTransaction("tx1", time.Now().UTC())

		explorer := newExplorerMock(t)
		ledger := newLedgerMock(t)
		notifier := newNotifierMock(t)
		walletStorage := newWalletStorageMock(t)

		explorer.On("FetchTransactions", mock.Anything, wallet.Address, wallet.LastCheckedAt, 20).
			Return([]Transaction{tx}, nil).Once()
		ledger.On("RecordIfNew", mock.Anything, wallet.ID, tx).Return(false, nil).Once()
		walletStorage.On("AdvanceWatermark", mock.Anything, wallet.ID, mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		svc := &service{
			walletStorage: walletStorage,
			ledger:        ledger,
			notifier:      notifier,
			explorers:     map[string]Explorer{"ethereum": explorer},
			cooldowns:     nopCooldownStorage{},
			fetchLimit:    20,
		}

		err := svc.pollWallet(t.Context(), wallet)
		require.NoError(t, err)

		notifier.AssertNotCalled(t, "NotifyTransaction", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("starts a chain cooldown on rate limit and keeps the watermark", func(t *testing.T) {
		wallet := testWallet("ethereum")

		explorer := newExplorerMock(t)
		walletStorage := newWalletStorageMock(t)
		cooldowns := newCooldownStorageMock(t)

		cooldowns.On("InCooldown", mock.Anything, "ethereum").Return(false, nil).Once()
		explorer.On("FetchTransactions", mock.Anything, wallet.Address, wallet.LastCheckedAt, 20).
			Return(nil, ErrRateLimited).Once()
		cooldowns.On("StartCooldown", mock.Anything, "ethereum", 90*time.Second).Return(nil).Once()

		svc := &service{
			walletStorage: walletStorage,
			explorers:     map[string]Explorer{"ethereum": explorer},
			cooldowns:     cooldowns,
			cooldownTTL:   90 * time.Second,
			fetchLimit:    20,
		}

		err := svc.pollWallet(t.Context(), wallet)
		assert.ErrorIs(t, err, ErrRateLimited)

		walletStorage.AssertNotCalled(t, "AdvanceWatermark", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skips wallets on a cooling chain", func(t *testing.T) {
		wallet := testWallet("ethereum")

		explorer := newExplorerMock(t)
		walletStorage := newWalletStorageMock(t)
		cooldowns := newCooldownStorageMock(t)

		cooldowns.On("InCooldown", mock.Anything, "ethereum").Return(true, nil).Once()

		svc := &service{
			walletStorage: walletStorage,
			explorers:     map[string]Explorer{"ethereum": explorer},
			cooldowns:     cooldowns,
			fetchLimit:    20,
		}

		err := svc.pollWallet(t.Context(), wallet)
		require.NoError(t, err)

		explorer.AssertNotCalled(t, "FetchTransactions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		walletStorage.AssertNotCalled(t, "AdvanceWatermark", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("aborts the wallet and keeps the watermark on ledger errors", func(t *testing.T) {
		wallet := testWallet("ethereum")
		now := time.Now().UTC()
		txs := []Transaction{
			testTransaction("tx2", now.Add(-1*time.Minute)),
			testTransaction("tx1", now.Add(-2*time.Minute)),
		}
		ledgerErr := errors.New("connection reset")

		explorer := newExplorerMock(t)
		ledger := newLedgerMock(t)
		walletStorage := newWalletStorageMock(t)

		explorer.On("FetchTransactions", mock.Anything, wallet.Address, wallet.LastCheckedAt, 20).
			Return(txs, nil).Once()
		ledger.On("RecordIfNew", mock.Anything, wallet.ID, txs[1]).Return(false, ledgerErr).Once()

		svc := &service{
			walletStorage: walletStorage,
			ledger:        ledger,
			explorers:     map[string]Explorer{"ethereum": explorer},
			cooldowns:     nopCooldownStorage{},
			fetchLimit:    20,
		}

		err := svc.pollWallet(t.Context(), wallet)
		assert.ErrorIs(t, err, ledgerErr)

		walletStorage.AssertNotCalled(t, "AdvanceWatermark", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("advances the watermark even when delivery fails", func(t *testing.T) {
		wallet := testWallet("ethereum")
		tx := testTransaction("tx1", time.Now().UTC())

		explorer := newExplorerMock(t)
		ledger := newLedgerMock(t)
		notifier := newNotifierMock(t)
		walletStorage := newWalletStorageMock(t)

		explorer.On("FetchTransactions", mock.Anything, wallet.Address, wallet.LastCheckedAt, 20).
			Return([]Transaction{tx}, nil).Once()
		ledger.On("RecordIfNew", mock.Anything, wallet.ID, tx).Return(true, nil).Once()
		notifier.On("NotifyTransaction", mock.Anything, wallet, tx).
			Return(errors.New("telegram unavailable")).Once()
		walletStorage.On("AdvanceWatermark", mock.Anything, wallet.ID, mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		svc := &service{
			walletStorage: walletStorage,
			ledger:        ledger,
			notifier:      notifier,
			explorers:     map[string]Explorer{"ethereum": explorer},
			cooldowns:     nopCooldownStorage{},
			fetchLimit:    20,
		}

		err := svc.pollWallet(t.Context(), wallet)
		require.NoError(t, err)

		// The record stays unsent for the next startup recovery pass.
		ledger.AssertNotCalled(t, "MarkNotificationSent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ignores wallets on chains without an explorer", func(t *testing.T) {
		wallet := testWallet("dogecoin")
		walletStorage := newWalletStorageMock(t)

		svc := &service{
			walletStorage: walletStorage,
			explorers:     map[string]Explorer{},
			cooldowns:     nopCooldownStorage{},
		}

		err := svc.pollWallet(t.Context(), wallet)
		require.NoError(t, err)

		walletStorage.AssertNotCalled(t, "AdvanceWatermark", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_runCycle(t *testing.T) {
	t.Run("a failing wallet does not prevent others from being polled", func(t *testing.T) {
		ethWallet := testWallet("ethereum")
		btcWallet := testWallet("bitcoin")
		btcWallet.Address = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"

		ethExplorer := newExplorerMock(t)
		btcExplorer := newExplorerMock(t)
		walletStorage := newWalletStorageMock(t)

		walletStorage.On("ListAllWallets", mock.Anything).
			Return([]Wallet{ethWallet, btcWallet}, nil).Once()
		ethExplorer.On("FetchTransactions", mock.Anything, ethWallet.Address, ethWallet.LastCheckedAt, 20).
			Return(nil, ErrExternalAPI).Once()
		btcExplorer.On("FetchTransactions", mock.Anything, btcWallet.Address, btcWallet.LastCheckedAt, 20).
			Return(nil, nil).Once()
		walletStorage.On("AdvanceWatermark", mock.Anything, btcWallet.ID, mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		svc := &service{
			walletStorage: walletStorage,
			explorers: map[string]Explorer{
				"ethereum": ethExplorer,
				"bitcoin":  btcExplorer,
			},
			cooldowns:     nopCooldownStorage{},
			maxConcurrent: 2,
			fetchLimit:    20,
		}

		svc.runCycle(t.Context())

		walletStorage.AssertNotCalled(t, "AdvanceWatermark", mock.Anything, ethWallet.ID, mock.Anything)
	})

	t.Run("a wallet listing failure skips the cycle", func(t *testing.T) {
		walletStorage := newWalletStorageMock(t)
		walletStorage.On("ListAllWallets", mock.Anything).
			Return(nil, errors.New("connection refused")).Once()

		svc := &service{
			walletStorage: walletStorage,
			cooldowns:     nopCooldownStorage{},
			maxConcurrent: 2,
		}

		svc.runCycle(t.Context())
	})
}

func TestService_redeliverUnnotified(t *testing.T) {
	t.Run("redelivers and marks pending notifications", func(t *testing.T) {
		wallet := testWallet("ethereum")
		tx := testTransaction("tx1", time.Now().UTC())

		ledger := newLedgerMock(t)
		notifier := newNotifierMock(t)

		ledger.On("ListUnnotified", mock.Anything).
			Return([]UnnotifiedRecord{{Wallet: wallet, Transaction: tx}}, nil).Once()
		notifier.On("NotifyTransaction", mock.Anything, wallet, tx).Return(nil).Once()
		ledger.On("MarkNotificationSent", mock.Anything, wallet.ID, tx.Hash).Return(nil).Once()

		svc := &service{ledger: ledger, notifier: notifier}

		err := svc.redeliverUnnotified(t.Context())
		require.NoError(t, err)
	})

	t.Run("leaves records unsent when delivery fails again", func(t *testing.T) {
		wallet := testWallet("ethereum")
		tx := testTransaction("tx1", time.Now().UTC())

		ledger := newLedgerMock(t)
		notifier := newNotifierMock(t)

		ledger.On("ListUnnotified", mock.Anything).
			Return([]UnnotifiedRecord{{Wallet: wallet, Transaction: tx}}, nil).Once()
		notifier.On("NotifyTransaction", mock.Anything, wallet, tx).
			Return(errors.New("telegram unavailable")).Once()

		svc := &service{ledger: ledger, notifier: notifier}

		err := svc.redeliverUnnotified(t.Context())
		require.NoError(t, err)

		ledger.AssertNotCalled(t, "MarkNotificationSent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("propagates ledger read errors", func(t *testing.T) {
		ledger := newLedgerMock(t)
		readErr := errors.New("connection reset")

		ledger.On("ListUnnotified", mock.Anything).Return(nil, readErr).Once()

		svc := &service{ledger: ledger}

		err := svc.redeliverUnnotified(t.Context())
		assert.ErrorIs(t, err, readErr)
	})
}

func TestService_StartClose(t *testing.T) {
	t.Run("runs cycles until closed", func(t *testing.T) {
		walletStorage := newWalletStorageMock(t)
		ledger := newLedgerMock(t)
		notifier := newNotifierMock(t)

		ledger.On("ListUnnotified", mock.Anything).Return(nil, nil).Once()
		walletStorage.On("ListAllWallets", mock.Anything).Return(nil, nil)

		svc := New(walletStorage, ledger, notifier, map[string]Explorer{},
			WithPollInterval(10*time.Millisecond),
		)

		err := svc.Start(t.Context())
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, svc.Close(closeCtx))

		walletStorage.AssertCalled(t, "ListAllWallets", mock.Anything)
	})

	t.Run("fails fast when the recovery pass cannot read the ledger", func(t *testing.T) {
		walletStorage := newWalletStorageMock(t)
		ledger := newLedgerMock(t)
		notifier := newNotifierMock(t)

		ledger.On("ListUnnotified", mock.Anything).Return(nil, errors.New("connection reset")).Once()

		svc := New(walletStorage, ledger, notifier, map[string]Explorer{})

		err := svc.Start(t.Context())
		assert.Error(t, err)
	})

	t.Run("close before start is a no-op", func(t *testing.T) {
		svc := New(newWalletStorageMock(t), newLedgerMock(t), newNotifierMock(t), nil)
		assert.NoError(t, svc.Close(t.Context()))
	})

	t.Run("restarts the loop after a panic", func(t *testing.T) {
		walletStorage := newWalletStorageMock(t)
		ledger := newLedgerMock(t)
		notifier := newNotifierMock(t)

		ledger.On("ListUnnotified", mock.Anything).Return(nil, nil).Once()

		var calls int
		walletStorage.On("ListAllWallets", mock.Anything).
			Run(func(mock.Arguments) {
				calls++
				if calls == 1 {
					panic("boom")
				}
			}).
			Return(nil, nil)

		svc := New(walletStorage, ledger, notifier, map[string]Explorer{},
			WithPollInterval(5*time.Millisecond),
			WithRestartPolicy(newTestRestartPolicy()),
		)

		require.NoError(t, svc.Start(t.Context()))

		assert.Eventually(t, func() bool { return calls >= 2 }, time.Second, 5*time.Millisecond)

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, svc.Close(closeCtx))
	})
}

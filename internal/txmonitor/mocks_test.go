package txmonitor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// walletStorageMock is a testify double for the WalletStorage port.
type walletStorageMock struct {
	mock.Mock
}

func newWalletStorageMock(t *testing.T) *walletStorageMock {
	m := &walletStorageMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *walletStorageMock) ListAllWallets(ctx context.Context) ([]Wallet, error) {
	args := m.Called(ctx)
	wallets, _ := args.Get(0).([]Wallet)
	return wallets, args.Error(1)
}

func (m *walletStorageMock) AdvanceWatermark(ctx context.Context, walletID uuid.UUID, checkedAt time.Time) error {
	args := m.Called(ctx, walletID, checkedAt)
	return args.Error(0)
}

// ledgerMock is a testify double for the TransactionLedger port.
type ledgerMock struct {
	mock.Mock
}

func newLedgerMock(t *testing.T) *ledgerMock {
	m := &ledgerMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ledgerMock) RecordIfNew(ctx context.Context, walletID uuid.UUID, tx Transaction) (bool, error) {
	args := m.Called(ctx, walletID, tx)
	return args.Bool(0), args.Error(1)
}

func (m *ledgerMock) MarkNotificationSent(ctx context.Context, walletID uuid.UUID, txHash string) error {
	args := m.Called(ctx, walletID, txHash)
	return args.Error(0)
}

func (m *ledgerMock) ListUnnotified(ctx context.Context) ([]UnnotifiedRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]UnnotifiedRecord)
	return records, args.Error(1)
}

// notifierMock is a testify double for the TransactionNotifier port.
type notifierMock struct {
	mock.Mock
}

func newNotifierMock(t *testing.T) *notifierMock {
	m := &notifierMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *notifierMock) NotifyTransaction(ctx context.Context, wallet Wallet, tx Transaction) error {
	args := m.Called(ctx, wallet, tx)
	return args.Error(0)
}

// explorerMock is a testify double for the Explorer port.
type explorerMock struct {
	mock.Mock
}

func newExplorerMock(t *testing.T) *explorerMock {
	m := &explorerMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *explorerMock) FetchTransactions(ctx context.Context, address string, since time.Time, limit int) ([]Transaction, error) {
	args := m.Called(ctx, address, since, limit)
	txs, _ := args.Get(0).([]Transaction)
	return txs, args.Error(1)
}

// cooldownStorageMock is a testify double for the ChainCooldownStorage port.
type cooldownStorageMock struct {
	mock.Mock
}

func newCooldownStorageMock(t *testing.T) *cooldownStorageMock {
	m := &cooldownStorageMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *cooldownStorageMock) StartCooldown(ctx context.Context, chain string, ttl time.Duration) error {
	args := m.Called(ctx, chain, ttl)
	return args.Error(0)
}

func (m *cooldownStorageMock) InCooldown(ctx context.Context, chain string) (bool, error) {
	args := m.Called(ctx, chain)
	return args.Bool(0), args.Error(1)
}

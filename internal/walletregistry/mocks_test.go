package walletregistry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

func (m *walletStorageMock) CreateWallet(ctx context.Context, wallet Wallet) (Wallet, error) {
	args := m.Called(ctx, wallet)
	return args.Get(0).(Wallet), args.Error(1)
}

func (m *walletStorageMock) ListWalletsByOwner(ctx context.Context, ownerID int64) ([]Wallet, error) {
	args := m.Called(ctx, ownerID)
	wallets, _ := args.Get(0).([]Wallet)
	return wallets, args.Error(1)
}

func (m *walletStorageMock) GetWallet(ctx context.Context, walletID uuid.UUID) (Wallet, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(Wallet), args.Error(1)
}

func (m *walletStorageMock) CountWalletsByOwner(ctx context.Context, ownerID int64) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *walletStorageMock) DeleteWallet(ctx context.Context, walletID uuid.UUID) error {
	args := m.Called(ctx, walletID)
	return args.Error(0)
}

// chainSupportMock is a testify double for the ChainSupport port.
type chainSupportMock struct {
	mock.Mock
}

func newChainSupportMock(t *testing.T) *chainSupportMock {
	m := &chainSupportMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *chainSupportMock) ValidateAddress(address string) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *chainSupportMock) FetchBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// walletLimitPolicyMock is a testify double for the WalletLimitPolicy port.
type walletLimitPolicyMock struct {
	mock.Mock
}

func newWalletLimitPolicyMock(t *testing.T) *walletLimitPolicyMock {
	m := &walletLimitPolicyMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *walletLimitPolicyMock) WalletLimit(ctx context.Context, ownerID int64) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

package cli

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/billing"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/walletregistry"
)

// registryServiceMock is a testify double for the walletregistry.Service
// interface.
type registryServiceMock struct {
	mock.Mock
}

func newRegistryServiceMock(t *testing.T) *registryServiceMock {
	m := &registryServiceMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *registryServiceMock) StartWatching(ctx context.Context, ownerID int64, chain, address, label string) (walletregistry.Wallet, error) {
	args := m.Called(ctx, ownerID, chain, address, label)
	return args.Get(0).(walletregistry.Wallet), args.Error(1)
}

func (m *registryServiceMock) ListWallets(ctx context.Context, ownerID int64) ([]walletregistry.Wallet, error) {
	args := m.Called(ctx, ownerID)
	wallets, _ := args.Get(0).([]walletregistry.Wallet)
	return wallets, args.Error(1)
}

func (m *registryServiceMock) StopWatching(ctx context.Context, ownerID int64, walletID uuid.UUID) error {
	args := m.Called(ctx, ownerID, walletID)
	return args.Error(0)
}

func (m *registryServiceMock) WalletBalance(ctx context.Context, ownerID int64, walletID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, walletID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// billingServiceMock is a testify double for the billing.Service interface.
type billingServiceMock struct {
	mock.Mock
}

func newBillingServiceMock(t *testing.T) *billingServiceMock {
	m := &billingServiceMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *billingServiceMock) StartPayment(ctx context.Context, ownerID int64, tier billing.Tier, months int) (billing.Payment, error) {
	args := m.Called(ctx, ownerID, tier, months)
	return args.Get(0).(billing.Payment), args.Error(1)
}

func (m *billingServiceMock) ConfirmPayment(ctx context.Context, ownerID int64, paymentID uuid.UUID) (billing.Plan, error) {
	args := m.Called(ctx, ownerID, paymentID)
	return args.Get(0).(billing.Plan), args.Error(1)
}

func (m *billingServiceMock) CancelPayment(ctx context.Context, ownerID int64, paymentID uuid.UUID) error {
	args := m.Called(ctx, ownerID, paymentID)
	return args.Error(0)
}

func (m *billingServiceMock) CurrentPlan(ctx context.Context, ownerID int64) (billing.Plan, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(billing.Plan), args.Error(1)
}

func (m *billingServiceMock) WalletLimit(ctx context.Context, ownerID int64) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

package walletregistry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines the wallet management surface exposed to inbound command
// handlers. It is independent of any chat protocol: handlers translate user
// commands into these calls.
type Service interface {
	// StartWatching registers a wallet address for transaction monitoring.
	StartWatching(ctx context.Context, ownerID int64, chain, address, label string) (Wallet, error)

	// ListWallets returns all wallets registered by the owner.
	ListWallets(ctx context.Context, ownerID int64) ([]Wallet, error)

	// StopWatching unregisters one of the owner's wallets.
	StopWatching(ctx context.Context, ownerID int64, walletID uuid.UUID) error

	// WalletBalance fetches the current balance of one of the owner's wallets.
	WalletBalance(ctx context.Context, ownerID int64, walletID uuid.UUID) (decimal.Decimal, error)
}

// service is the concrete implementation of the Service interface.
type service struct {
	walletStorage WalletStorage
	chains        map[string]ChainSupport
	limitPolicy   WalletLimitPolicy
}

// Ensure compile-time compliance with the Service interface.
var _ Service = (*service)(nil)

type config struct {
	limitPolicy WalletLimitPolicy
}

// Option configures the registry service.
type Option func(*config)

// WithWalletLimitPolicy installs a subscription-tier wallet limit. Without
// this option, owners may register any number of wallets.
func WithWalletLimitPolicy(p WalletLimitPolicy) Option {
	return func(c *config) {
		c.limitPolicy = p
	}
}

// New creates a wallet registry service backed by the given storage and the
// configured set of chains. The chains map keys are chain identifiers
// (e.g. "ethereum", "bitcoin", "bsc"); a chain absent from the map is
// rejected with ErrUnsupportedChain.
func New(ws WalletStorage, chains map[string]ChainSupport, opts ...Option) *service {
	cfg := config{
		limitPolicy: nopLimitPolicy{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		walletStorage: ws,
		chains:        chains,
		limitPolicy:   cfg.limitPolicy,
	}
}

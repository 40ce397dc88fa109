package walletregistry

import (
	"context"
	"errors"
	"time"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnsupportedChain is returned when the requested chain has no
	// configured explorer support.
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrInvalidAddress is returned when an address fails the chain's
	// syntactic validation. It is a user-input error and safe to surface.
	ErrInvalidAddress = errors.New("invalid wallet address")

	// ErrWalletAlreadyRegistered is returned when the owner already watches
	// the given address.
	ErrWalletAlreadyRegistered = errors.New("wallet already registered")

	// ErrWalletNotFound is returned when a wallet id does not exist or does
	// not belong to the requesting owner.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrWalletLimitReached is returned when creating a wallet would exceed
	// the owner's subscription tier limit.
	ErrWalletLimitReached = errors.New("wallet limit reached")
)

// Wallet is a registered wallet address owned by a user.
//
// LastCheckedAt is the monitoring watermark: the point in time up to which
// transactions have already been fetched. It is advanced exclusively by the
// transaction monitor after a fully successful poll.
type Wallet struct {
	ID            uuid.UUID
	OwnerID       int64
	Chain         string
	Address       string
	Label         string
	LastCheckedAt time.Time
	CreatedAt     time.Time
}

// newWalletRequest carries validated input for wallet creation.
type newWalletRequest struct {
	OwnerID int64  `validate:"required"`
	Chain   string `validate:"required"`
	Address string `validate:"required"`
	Label   string
}

// WalletStorage is the persistence contract for registered wallets.
//
// CreateWallet must enforce the (owner, address) uniqueness invariant
// atomically, returning ErrWalletAlreadyRegistered on violation; callers
// never pre-check existence, so concurrent registrations cannot race.
type WalletStorage interface {
	// CreateWallet persists a new wallet and returns it with storage-assigned
	// fields populated.
	CreateWallet(ctx context.Context, wallet Wallet) (Wallet, error)

	// ListWalletsByOwner returns all wallets registered by the given owner.
	ListWalletsByOwner(ctx context.Context, ownerID int64) ([]Wallet, error)

	// GetWallet returns the wallet with the given id, or ErrWalletNotFound.
	GetWallet(ctx context.Context, walletID uuid.UUID) (Wallet, error)

	// CountWalletsByOwner returns how many wallets the owner has registered.
	CountWalletsByOwner(ctx context.Context, ownerID int64) (int, error)

	// DeleteWallet removes the wallet and, by cascade, its transaction
	// ledger entries. Returns ErrWalletNotFound if no row was removed.
	DeleteWallet(ctx context.Context, walletID uuid.UUID) error
}

// ChainSupport bundles the per-chain capabilities the registry needs from an
// explorer adapter: syntactic address validation and balance lookup. One
// implementation exists per supported chain, selected by configuration.
type ChainSupport interface {
	// ValidateAddress performs a purely syntactic address check (prefix,
	// length, charset). It never queries the network and returns
	// ErrInvalidAddress when the address cannot belong to the chain.
	ValidateAddress(address string) error

	// FetchBalance returns the current confirmed balance for the address.
	FetchBalance(ctx context.Context, address string) (decimal.Decimal, error)
}

// WalletLimitPolicy decides how many wallets an owner may register. It is
// backed by the billing service's subscription tiers.
type WalletLimitPolicy interface {
	// WalletLimit returns the maximum wallet count for the owner.
	WalletLimit(ctx context.Context, ownerID int64) (int, error)
}

// nopLimitPolicy imposes no wallet limit. Used when no policy is configured.
type nopLimitPolicy struct{}

func (nopLimitPolicy) WalletLimit(ctx context.Context, ownerID int64) (int, error) {
	return 0, nil
}

// StartWatching registers a new wallet for transaction monitoring.
//
// The address is validated syntactically against the chain's format, the
// owner's tier wallet limit is enforced, and the (owner, address) uniqueness
// invariant is left to the storage layer's atomic insert.
//
// Returns the created wallet, or one of ErrUnsupportedChain,
// ErrInvalidAddress, ErrWalletLimitReached, ErrWalletAlreadyRegistered.
func (s *service) StartWatching(ctx context.Context, ownerID int64, chain, address, label string) (Wallet, error) {
	req := newWalletRequest{
		OwnerID: ownerID,
		Chain:   chain,
		Address: address,
		Label:   label,
	}
	if err := validator.Validate(req); err != nil {
		return Wallet{}, err
	}

	support, ok := s.chains[chain]
	if !ok {
		return Wallet{}, ErrUnsupportedChain
	}

	if err := support.ValidateAddress(address); err != nil {
		return Wallet{}, err
	}

	limit, err := s.limitPolicy.WalletLimit(ctx, ownerID)
	if err != nil {
		return Wallet{}, err
	}

	if limit > 0 {
		count, err := s.walletStorage.CountWalletsByOwner(ctx, ownerID)
		if err != nil {
			return Wallet{}, err
		}
		if count >= limit {
			return Wallet{}, ErrWalletLimitReached
		}
	}

	wallet := Wallet{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Chain:   chain,
		Address: address,
		Label:   label,
	}

	return s.walletStorage.CreateWallet(ctx, wallet)
}

// ListWallets returns all wallets registered by the owner.
func (s *service) ListWallets(ctx context.Context, ownerID int64) ([]Wallet, error) {
	return s.walletStorage.ListWalletsByOwner(ctx, ownerID)
}

// StopWatching unregisters one of the owner's wallets. The wallet's recorded
// transactions are removed by cascade.
//
// Returns ErrWalletNotFound when the wallet does not exist or belongs to a
// different owner.
func (s *service) StopWatching(ctx context.Context, ownerID int64, walletID uuid.UUID) error {
	wallet, err := s.walletStorage.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}

	if wallet.OwnerID != ownerID {
		return ErrWalletNotFound
	}

	return s.walletStorage.DeleteWallet(ctx, walletID)
}

// WalletBalance fetches the current on-chain balance of one of the owner's
// wallets via the chain's explorer adapter.
func (s *service) WalletBalance(ctx context.Context, ownerID int64, walletID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.walletStorage.GetWallet(ctx, walletID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if wallet.OwnerID != ownerID {
		return decimal.Decimal{}, ErrWalletNotFound
	}

	support, ok := s.chains[wallet.Chain]
	if !ok {
		return decimal.Decimal{}, ErrUnsupportedChain
	}

	return support.FetchBalance(ctx, wallet.Address)
}

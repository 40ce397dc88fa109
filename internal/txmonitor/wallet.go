package txmonitor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Wallet is the monitor's view of a registered wallet: enough identity to
// poll its chain and address, and the watermark bounding the next fetch.
type Wallet struct {
	ID            uuid.UUID
	OwnerID       int64
	Chain         string
	Address       string
	Label         string
	LastCheckedAt time.Time
}

// WalletStorage lists the wallets to poll and advances their watermarks.
//
// AdvanceWatermark is the only wallet mutation the monitor performs, and it
// is always the last step of a successful per-wallet poll: a crash mid-poll
// leaves the watermark untouched, so the same window is fetched again on the
// next cycle and deduplicated by the ledger.
type WalletStorage interface {
	// ListAllWallets returns every registered wallet across all owners.
	ListAllWallets(ctx context.Context) ([]Wallet, error)

	// AdvanceWatermark sets the wallet's last-checked watermark.
	AdvanceWatermark(ctx context.Context, walletID uuid.UUID, checkedAt time.Time) error
}

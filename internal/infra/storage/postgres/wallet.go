package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/walletregistry"
)

// walletRepo implements both the registry's and the monitor's wallet ports
// over the wallets table.
type walletRepo struct {
	pool Pool
}

// Ensure walletRepo implements the wallet storage ports at compile time.
var (
	_ walletregistry.WalletStorage = (*walletRepo)(nil)
	_ txmonitor.WalletStorage      = (*walletRepo)(nil)
)

// NewWalletRepo creates the wallets repository.
func NewWalletRepo(pool Pool) *walletRepo {
	return &walletRepo{pool: pool}
}

// CreateWallet inserts the wallet. The (owner_id, address) unique constraint
// enforces the no-duplicate invariant; a violation maps to
// walletregistry.ErrWalletAlreadyRegistered.
func (r *walletRepo) CreateWallet(ctx context.Context, wallet walletregistry.Wallet) (walletregistry.Wallet, error) {
	query := `INSERT INTO wallets (id, owner_id, chain, address, label)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING last_checked_at, created_at`

	err := r.pool.QueryRow(ctx, query,
		wallet.ID, wallet.OwnerID, wallet.Chain, wallet.Address, wallet.Label,
	).Scan(&wallet.LastCheckedAt, &wallet.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return walletregistry.Wallet{}, walletregistry.ErrWalletAlreadyRegistered
		}

		return walletregistry.Wallet{}, fmt.Errorf("insert wallet: %w", err)
	}

	return wallet, nil
}

// ListWalletsByOwner returns the owner's wallets ordered by creation time.
func (r *walletRepo) ListWalletsByOwner(ctx context.Context, ownerID int64) ([]walletregistry.Wallet, error) {
	query := `SELECT id, owner_id, chain, address, label, last_checked_at, created_at
		FROM wallets WHERE owner_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list wallets by owner: %w", err)
	}
	defer rows.Close()

	return scanRegistryWallets(rows)
}

// GetWallet returns the wallet with the given id.
func (r *walletRepo) GetWallet(ctx context.Context, walletID uuid.UUID) (walletregistry.Wallet, error) {
	query := `SELECT id, owner_id, chain, address, label, last_checked_at, created_at
		FROM wallets WHERE id = $1`

	var wallet walletregistry.Wallet
	err := r.pool.QueryRow(ctx, query, walletID).Scan(
		&wallet.ID, &wallet.OwnerID, &wallet.Chain, &wallet.Address,
		&wallet.Label, &wallet.LastCheckedAt, &wallet.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return walletregistry.Wallet{}, walletregistry.ErrWalletNotFound
		}

		return walletregistry.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}

	return wallet, nil
}

// CountWalletsByOwner returns how many wallets the owner has registered.
func (r *walletRepo) CountWalletsByOwner(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM wallets WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count wallets by owner: %w", err)
	}

	return count, nil
}

// DeleteWallet removes the wallet; its ledger rows go with it by cascade.
func (r *walletRepo) DeleteWallet(ctx context.Context, walletID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wallets WHERE id = $1`, walletID)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return walletregistry.ErrWalletNotFound
	}

	return nil
}

// ListAllWallets returns every wallet across all owners for a poll cycle.
func (r *walletRepo) ListAllWallets(ctx context.Context) ([]txmonitor.Wallet, error) {
	query := `SELECT id, owner_id, chain, address, label, last_checked_at
		FROM wallets ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all wallets: %w", err)
	}
	defer rows.Close()

	var wallets []txmonitor.Wallet
	for rows.Next() {
		var wallet txmonitor.Wallet
		err := rows.Scan(
			&wallet.ID, &wallet.OwnerID, &wallet.Chain,
			&wallet.Address, &wallet.Label, &wallet.LastCheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}

		wallets = append(wallets, wallet)
	}

	return wallets, rows.Err()
}

// AdvanceWatermark sets the wallet's last-checked watermark.
func (r *walletRepo) AdvanceWatermark(ctx context.Context, walletID uuid.UUID, checkedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE wallets SET last_checked_at = $1 WHERE id = $2`,
		checkedAt, walletID,
	)
	if err != nil {
		return fmt.Errorf("advance watermark: %w", err)
	}

	return nil
}

func scanRegistryWallets(rows pgx.Rows) ([]walletregistry.Wallet, error) {
	var wallets []walletregistry.Wallet
	for rows.Next() {
		var wallet walletregistry.Wallet
		err := rows.Scan(
			&wallet.ID, &wallet.OwnerID, &wallet.Chain, &wallet.Address,
			&wallet.Label, &wallet.LastCheckedAt, &wallet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}

		wallets = append(wallets, wallet)
	}

	return wallets, rows.Err()
}

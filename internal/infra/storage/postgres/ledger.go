package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
)

// ledgerRepo implements the transaction dedup ledger over the
// wallet_transactions table.
type ledgerRepo struct {
	pool Pool
}

// Ensure ledgerRepo implements the ledger port at compile time.
var _ txmonitor.TransactionLedger = (*ledgerRepo)(nil)

// NewLedgerRepo creates the transaction ledger repository.
func NewLedgerRepo(pool Pool) *ledgerRepo {
	return &ledgerRepo{pool: pool}
}

// RecordIfNew inserts the transaction unless the (wallet, hash) pair already
// exists. ON CONFLICT DO NOTHING makes the check-and-insert a single atomic
// statement; the affected row count tells whether this call won.
func (r *ledgerRepo) RecordIfNew(ctx context.Context, walletID uuid.UUID, tx txmonitor.Transaction) (bool, error) {
	query := `INSERT INTO wallet_transactions
		(wallet_id, tx_hash, direction, amount, fee, counterparty, confirmations, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (wallet_id, tx_hash) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		walletID, tx.Hash, string(tx.Direction), tx.Amount, tx.Fee,
		tx.Counterparty, tx.Confirmations, tx.Timestamp,
	)
	if err != nil {
		return false, fmt.Errorf("record transaction: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkNotificationSent flips the record's delivery flag.
func (r *ledgerRepo) MarkNotificationSent(ctx context.Context, walletID uuid.UUID, txHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE wallet_transactions SET notification_sent = TRUE
			WHERE wallet_id = $1 AND tx_hash = $2`,
		walletID, txHash,
	)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}

	return nil
}

// ListUnnotified returns undelivered records joined with their wallets,
// oldest first so redelivery preserves transaction order.
func (r *ledgerRepo) ListUnnotified(ctx context.Context) ([]txmonitor.UnnotifiedRecord, error) {
	query := `SELECT
			w.id, w.owner_id, w.chain, w.address, w.label, w.last_checked_at,
			t.tx_hash, t.direction, t.amount, t.fee, t.counterparty, t.confirmations, t.occurred_at
		FROM wallet_transactions t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE t.notification_sent = FALSE
		ORDER BY t.occurred_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unnotified transactions: %w", err)
	}
	defer rows.Close()

	var records []txmonitor.UnnotifiedRecord
	for rows.Next() {
		var (
			record    txmonitor.UnnotifiedRecord
			direction string
		)

		err := rows.Scan(
			&record.Wallet.ID, &record.Wallet.OwnerID, &record.Wallet.Chain,
			&record.Wallet.Address, &record.Wallet.Label, &record.Wallet.LastCheckedAt,
			&record.Transaction.Hash, &direction, &record.Transaction.Amount,
			&record.Transaction.Fee, &record.Transaction.Counterparty,
			&record.Transaction.Confirmations, &record.Transaction.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan unnotified transaction: %w", err)
		}

		record.Transaction.Direction = txmonitor.Direction(direction)
		records = append(records, record)
	}

	return records, rows.Err()
}

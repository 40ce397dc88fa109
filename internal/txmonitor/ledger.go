package txmonitor

import (
	"context"

	"github.com/google/uuid"
)

// TransactionLedger is the dedup store guaranteeing at-most-once
// notification per (wallet, transaction) across poll cycles and process
// restarts. It is distinct from the blockchain's own ledger.
type TransactionLedger interface {
	// RecordIfNew atomically persists the transaction for the wallet unless
	// a record with the same (wallet, hash) already exists. It reports
	// whether a new record was inserted; only then does the caller proceed
	// to notify. The operation must be a single atomic insert-or-ignore,
	// never a separate existence check followed by an insert.
	RecordIfNew(ctx context.Context, walletID uuid.UUID, tx Transaction) (inserted bool, err error)

	// MarkNotificationSent flips the record's notification-sent flag after
	// a successful delivery. Records left unsent (crash or delivery failure)
	// are picked up by the next recovery pass.
	MarkNotificationSent(ctx context.Context, walletID uuid.UUID, txHash string) error

	// ListUnnotified returns all records whose notification has not been
	// delivered yet, joined with their wallet for addressing.
	ListUnnotified(ctx context.Context) ([]UnnotifiedRecord, error)
}

// UnnotifiedRecord pairs a persisted-but-unsent transaction with its wallet.
type UnnotifiedRecord struct {
	Wallet      Wallet
	Transaction Transaction
}

// TransactionNotifier delivers a user-facing notification for a newly
// observed transaction.
//
// Delivery failures are logged and never roll back the ledger record: a
// transaction stays "seen" even when its notification is lost, trading a
// possible missed message for never spamming duplicates.
type TransactionNotifier interface {
	NotifyTransaction(ctx context.Context, wallet Wallet, tx Transaction) error
}

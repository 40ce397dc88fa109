package txmonitor

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrRateLimited indicates the chain's explorer API rejected the request
	// due to rate limiting. The chain is put into cooldown and retried on a
	// later cycle.
	ErrRateLimited = errors.New("explorer rate limited")

	// ErrExternalAPI indicates the explorer API returned a non-success
	// response or error payload. The affected wallet is retried next cycle;
	// the failure is never surfaced to users.
	ErrExternalAPI = errors.New("explorer api error")
)

// Direction classifies a transaction relative to the watched address.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Transaction is the canonical, chain-agnostic transaction record produced
// by explorer adapters.
//
// Amount and Fee are exact decimals converted from the chain's minor units;
// Fee is always populated, decimal zero when the explorer does not report
// it. Counterparty is the first address on the other side of the transfer
// that differs from the watched address. Failed marks transactions the
// chain executed but reverted; they still spend fees and are still
// reported, flagged, to the user.
type Transaction struct {
	Hash          string
	Direction     Direction
	Amount        decimal.Decimal
	Fee           decimal.Decimal
	Counterparty  string
	Confirmations int64
	Timestamp     time.Time
	Failed        bool
}

// Explorer fetches normalized transaction data for a single chain from a
// third-party explorer API. Implementations are stateless per call.
type Explorer interface {
	// FetchTransactions returns transactions involving the address observed
	// after the since watermark, newest first, at most limit entries.
	//
	// Errors are classified as ErrRateLimited or ErrExternalAPI (possibly
	// wrapped); any failure means "no data this cycle" to the caller and is
	// never fatal to the overall poll.
	FetchTransactions(ctx context.Context, address string, since time.Time, limit int) ([]Transaction, error)
}

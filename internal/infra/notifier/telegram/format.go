package telegram

import (
	"fmt"
	"strings"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/money"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
)

// chainSymbols maps chain identifiers to their native coin tickers.
var chainSymbols = map[string]string{
	"ethereum": "ETH",
	"bitcoin":  "BTC",
	"bsc":      "BNB",
}

// formatTransactionMessage renders the notification body.
func formatTransactionMessage(wallet txmonitor.Wallet, tx txmonitor.Transaction) string {
	symbol := chainSymbols[wallet.Chain]
	if symbol == "" {
		symbol = strings.ToUpper(wallet.Chain)
	}

	headline := "📥 Incoming transaction"
	counterpartyLabel := "From"
	if tx.Direction == txmonitor.DirectionOutgoing {
		headline = "📤 Outgoing transaction"
		counterpartyLabel = "To"
	}
	if tx.Failed {
		headline = "⚠️ Failed transaction"
	}

	walletName := wallet.Label
	if walletName == "" {
		walletName = truncateAddress(wallet.Address)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", headline)
	fmt.Fprintf(&b, "Wallet: %s (%s)\n", walletName, wallet.Chain)
	fmt.Fprintf(&b, "Amount: %s %s\n", money.Format(tx.Amount), symbol)
	if !tx.Fee.IsZero() {
		fmt.Fprintf(&b, "Fee: %s %s\n", money.Format(tx.Fee), symbol)
	}
	if tx.Counterparty != "" {
		fmt.Fprintf(&b, "%s: `%s`\n", counterpartyLabel, truncateAddress(tx.Counterparty))
	}
	fmt.Fprintf(&b, "Hash: `%s`\n", truncateHash(tx.Hash))
	fmt.Fprintf(&b, "Confirmations: %d", tx.Confirmations)

	return b.String()
}

// explorerTransactionURL returns the public explorer deep link for the
// transaction, or empty when the chain has none configured.
func explorerTransactionURL(chain, hash string) string {
	switch chain {
	case "ethereum":
		return "https://etherscan.io/tx/" + hash
	case "bsc":
		return "https://bscscan.com/tx/" + hash
	case "bitcoin":
		return "https://www.blockchain.com/btc/tx/" + hash
	default:
		return ""
	}
}

// truncateAddress shortens an address to its first 8 and last 6 characters.
func truncateAddress(address string) string {
	if len(address) <= 14 {
		return address
	}

	return address[:8] + "..." + address[len(address)-6:]
}

// truncateHash shortens a transaction hash to its first 10 and last 8
// characters.
func truncateHash(hash string) string {
	if len(hash) <= 18 {
		return hash
	}

	return hash[:10] + "..." + hash[len(hash)-8:]
}

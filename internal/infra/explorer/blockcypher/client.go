// Package blockcypher implements transaction and balance lookups for
// Bitcoin via the BlockCypher address API.
package blockcypher

import (
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/walletregistry"
)

const (
	// BitcoinBaseURL is the BlockCypher API root for Bitcoin mainnet.
	BitcoinBaseURL = "https://api.blockcypher.com/v1/btc/main"

	// satoshiExponent converts satoshi amounts to whole bitcoins.
	satoshiExponent = 8
)

// client implements the explorer ports for the BlockCypher API.
type client struct {
	baseURL    string
	token      string
	httpClient *retryablehttp.Client
}

// Ensure client implements the explorer ports at compile time.
var (
	_ txmonitor.Explorer          = (*client)(nil)
	_ walletregistry.ChainSupport = (*client)(nil)
)

// NewClient creates a Bitcoin explorer client. The token may be empty;
// BlockCypher serves unauthenticated requests at a reduced rate.
func NewClient(baseURL, token string, httpClient *retryablehttp.Client) *client {
	return &client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
	}
}

// ValidateAddress checks the address against the shapes of legacy (1...),
// script (3...) and bech32 (bc1...) Bitcoin addresses. Purely syntactic; no
// checksum verification.
func (c *client) ValidateAddress(address string) error {
	if len(address) < 26 || len(address) > 62 {
		return walletregistry.ErrInvalidAddress
	}

	switch {
	case strings.HasPrefix(address, "bc1"):
	case strings.HasPrefix(address, "1"), strings.HasPrefix(address, "3"):
		if len(address) > 35 {
			return walletregistry.ErrInvalidAddress
		}
	default:
		return walletregistry.ErrInvalidAddress
	}

	for _, r := range address {
		isDigit := r >= '0' && r <= '9'
		isLower := r >= 'a' && r <= 'z'
		isUpper := r >= 'A' && r <= 'Z'
		if !isDigit && !isLower && !isUpper {
			return walletregistry.ErrInvalidAddress
		}
	}

	return nil
}

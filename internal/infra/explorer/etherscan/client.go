// Package etherscan implements transaction and balance lookups against
// Etherscan-compatible account APIs. The same client serves Ethereum and
// BNB Smart Chain; only the base URL and API key differ.
package etherscan

import (
	"regexp"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/walletregistry"
)

const (
	// EthereumBaseURL is the Etherscan API endpoint for Ethereum mainnet.
	EthereumBaseURL = "https://api.etherscan.io/api"

	// BSCBaseURL is the BscScan API endpoint for BNB Smart Chain mainnet.
	BSCBaseURL = "https://api.bscscan.com/api"

	// weiExponent converts wei amounts to whole coins.
	weiExponent = 18
)

// addressPattern matches a 0x-prefixed 20-byte hex address.
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// client implements the explorer ports for Etherscan-compatible APIs.
type client struct {
	baseURL    string
	apiKey     string
	httpClient *retryablehttp.Client
}

// Ensure client implements the explorer ports at compile time.
var (
	_ txmonitor.Explorer          = (*client)(nil)
	_ walletregistry.ChainSupport = (*client)(nil)
)

// NewClient creates an explorer client for the given Etherscan-compatible
// endpoint. Pass EthereumBaseURL or BSCBaseURL together with the matching
// API key.
func NewClient(baseURL, apiKey string, httpClient *retryablehttp.Client) *client {
	return &client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// ValidateAddress checks that the address is a 0x-prefixed 40-digit hex
// string. Purely syntactic; checksum casing is not enforced.
func (c *client) ValidateAddress(address string) error {
	if !addressPattern.MatchString(address) {
		return walletregistry.ErrInvalidAddress
	}

	return nil
}

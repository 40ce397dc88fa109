package blockcypher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/money"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/types"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
)

// addressFull is the /addrs/{address}/full response. Error is populated in
// the body even on HTTP 200 for some failures.
type addressFull struct {
	Address      string   `json:"address"`
	Balance      int64    `json:"balance"`
	Transactions []fullTx `json:"txs"`
	Error        string   `json:"error"`
}

type fullTx struct {
	Hash          string     `json:"hash"`
	Confirmations int64      `json:"confirmations"`
	Received      time.Time  `json:"received"`
	Fees          int64      `json:"fees"`
	Inputs        []txInput  `json:"inputs"`
	Outputs       []txOutput `json:"outputs"`
}

type txInput struct {
	Addresses []string `json:"addresses"`
}

type txOutput struct {
	Value     int64    `json:"value"`
	Addresses []string `json:"addresses"`
}

// FetchTransactions lists the address's transactions newer than since,
// newest first, capped at limit.
func (c *client) FetchTransactions(ctx context.Context, address string, since time.Time, limit int) ([]txmonitor.Transaction, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if c.token != "" {
		params.Set("token", c.token)
	}

	full, err := c.fetchAddress(ctx, address, params)
	if err != nil {
		return nil, err
	}

	transactions := make([]txmonitor.Transaction, 0, len(full.Transactions))
	for _, tx := range full.Transactions {
		if !tx.Received.After(since) {
			continue
		}

		transactions = append(transactions, buildTransaction(tx, address))
	}

	return transactions, nil
}

// FetchBalance returns the address's confirmed balance in whole bitcoins.
func (c *client) FetchBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	params := url.Values{"limit": {"1"}}
	if c.token != "" {
		params.Set("token", c.token)
	}

	full, err := c.fetchAddress(ctx, address, params)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return money.FromMinorUnitsInt(full.Balance, satoshiExponent), nil
}

// fetchAddress performs the address lookup and applies the API's error
// conventions: HTTP 429 means throttled, an in-body error field means the
// request failed even under HTTP 200.
func (c *client) fetchAddress(ctx context.Context, address string, params url.Values) (addressFull, error) {
	endpoint := fmt.Sprintf("%s/addrs/%s/full?%s", c.baseURL, url.PathEscape(address), params.Encode())

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return addressFull{}, err
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return addressFull{}, fmt.Errorf("%w: %v", txmonitor.ErrExternalAPI, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return addressFull{}, txmonitor.ErrRateLimited
	}
	if httpResp.StatusCode != http.StatusOK {
		return addressFull{}, fmt.Errorf("%w: unexpected status %d", txmonitor.ErrExternalAPI, httpResp.StatusCode)
	}

	var full addressFull
	if err := json.NewDecoder(httpResp.Body).Decode(&full); err != nil {
		return addressFull{}, fmt.Errorf("%w: decoding response: %v", txmonitor.ErrExternalAPI, err)
	}

	if full.Error != "" {
		if strings.Contains(strings.ToLower(full.Error), "limit") {
			return addressFull{}, txmonitor.ErrRateLimited
		}

		return addressFull{}, fmt.Errorf("%w: %s", txmonitor.ErrExternalAPI, full.Error)
	}

	return full, nil
}

// buildTransaction converts a UTXO transaction to the canonical form.
//
// The watched address appearing among the inputs makes the transaction
// outgoing, even when change flows back to it through an output. The amount
// is the value moved relative to the watched address: outputs paid elsewhere
// when outgoing, outputs paid to the address when incoming.
func buildTransaction(tx fullTx, address string) txmonitor.Transaction {
	inputAddresses := types.NewSet[string]()
	for _, input := range tx.Inputs {
		inputAddresses.Add(input.Addresses...)
	}

	_, outgoing := inputAddresses[address]

	var amountSats int64
	counterparty := ""

	if outgoing {
		for _, output := range tx.Outputs {
			paysWatched := false
			for _, addr := range output.Addresses {
				if addr == address {
					paysWatched = true
					break
				}
			}
			if paysWatched {
				continue
			}

			amountSats += output.Value
			if counterparty == "" && len(output.Addresses) > 0 {
				counterparty = output.Addresses[0]
			}
		}
	} else {
		for _, output := range tx.Outputs {
			for _, addr := range output.Addresses {
				if addr == address {
					amountSats += output.Value
					break
				}
			}
		}

	inputs:
		for _, input := range tx.Inputs {
			for _, addr := range input.Addresses {
				if addr != address {
					counterparty = addr
					break inputs
				}
			}
		}
	}

	direction := txmonitor.DirectionIncoming
	if outgoing {
		direction = txmonitor.DirectionOutgoing
	}

	return txmonitor.Transaction{
		Hash:          tx.Hash,
		Direction:     direction,
		Amount:        money.FromMinorUnitsInt(amountSats, satoshiExponent),
		Fee:           money.FromMinorUnitsInt(tx.Fees, satoshiExponent),
		Counterparty:  counterparty,
		Confirmations: tx.Confirmations,
		Timestamp:     tx.Received.UTC(),
	}
}

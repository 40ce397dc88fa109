package etherscan

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
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
)

// apiResponse is the common Etherscan envelope. Result is a list for
// successful txlist calls, but a plain string for balance calls and for
// most error payloads, so it is decoded lazily.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// accountTransaction is a single entry of the account txlist result.
type accountTransaction struct {
	Hash          string `json:"hash"`
	From          string `json:"from"`
	To            string `json:"to"`
	Value         string `json:"value"`
	GasPrice      string `json:"gasPrice"`
	GasUsed       string `json:"gasUsed"`
	TimeStamp     string `json:"timeStamp"`
	Confirmations string `json:"confirmations"`
	IsError       string `json:"isError"`
}

// FetchTransactions lists the address's transactions newer than since,
// newest first, capped at limit. The API has no server-side time filter, so
// the newest page is requested and filtered by timestamp locally.
func (c *client) FetchTransactions(ctx context.Context, address string, since time.Time, limit int) ([]txmonitor.Transaction, error) {
	params := url.Values{
		"module":     {"account"},
		"action":     {"txlist"},
		"address":    {address},
		"startblock": {"0"},
		"endblock":   {"99999999"},
		"page":       {"1"},
		"offset":     {strconv.Itoa(limit)},
		"sort":       {"desc"},
		"apikey":     {c.apiKey},
	}

	resp, err := c.call(ctx, params)
	if err != nil {
		return nil, err
	}

	var entries []accountTransaction
	if err := json.Unmarshal(resp.Result, &entries); err != nil {
		return nil, fmt.Errorf("%w: decoding transaction list: %v", txmonitor.ErrExternalAPI, err)
	}

	transactions := make([]txmonitor.Transaction, 0, len(entries))
	for _, entry := range entries {
		tx, err := c.buildTransaction(entry, address)
		if err != nil {
			return nil, err
		}

		if !tx.Timestamp.After(since) {
			continue
		}

		transactions = append(transactions, tx)
	}

	return transactions, nil
}

// FetchBalance returns the address's confirmed balance in whole coins.
func (c *client) FetchBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	params := url.Values{
		"module":  {"account"},
		"action":  {"balance"},
		"address": {address},
		"tag":     {"latest"},
		"apikey":  {c.apiKey},
	}

	resp, err := c.call(ctx, params)
	if err != nil {
		return decimal.Decimal{}, err
	}

	var wei string
	if err := json.Unmarshal(resp.Result, &wei); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: decoding balance: %v", txmonitor.ErrExternalAPI, err)
	}

	balance, err := money.FromMinorUnits(wei, weiExponent)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: parsing balance %q: %v", txmonitor.ErrExternalAPI, wei, err)
	}

	return balance, nil
}

// call performs a GET against the API and applies the envelope's error
// conventions: status "1" is success, "No transactions found" is an empty
// success, rate-limit notices map to ErrRateLimited and everything else to
// ErrExternalAPI.
func (c *client) call(ctx context.Context, params url.Values) (apiResponse, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return apiResponse{}, err
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, fmt.Errorf("%w: %v", txmonitor.ErrExternalAPI, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return apiResponse{}, txmonitor.ErrRateLimited
	}
	if httpResp.StatusCode != http.StatusOK {
		return apiResponse{}, fmt.Errorf("%w: unexpected status %d", txmonitor.ErrExternalAPI, httpResp.StatusCode)
	}

	var resp apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return apiResponse{}, fmt.Errorf("%w: decoding response: %v", txmonitor.ErrExternalAPI, err)
	}

	if resp.Status == "1" {
		return resp, nil
	}

	if resp.Message == "No transactions found" {
		resp.Result = json.RawMessage("[]")
		return resp, nil
	}

	var detail string
	_ = json.Unmarshal(resp.Result, &detail)

	if isRateLimitNotice(resp.Message) || isRateLimitNotice(detail) {
		return apiResponse{}, txmonitor.ErrRateLimited
	}

	return apiResponse{}, fmt.Errorf("%w: %s: %s", txmonitor.ErrExternalAPI, resp.Message, detail)
}

// isRateLimitNotice reports whether an envelope message describes API
// throttling.
func isRateLimitNotice(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "rate limit")
}

// buildTransaction converts an API entry to the canonical transaction,
// classifying direction relative to the watched address.
func (c *client) buildTransaction(entry accountTransaction, address string) (txmonitor.Transaction, error) {
	amount, err := money.FromMinorUnits(entry.Value, weiExponent)
	if err != nil {
		return txmonitor.Transaction{}, fmt.Errorf("%w: parsing value %q: %v", txmonitor.ErrExternalAPI, entry.Value, err)
	}

	fee, err := transactionFee(entry.GasPrice, entry.GasUsed)
	if err != nil {
		return txmonitor.Transaction{}, err
	}

	unixSeconds, err := strconv.ParseInt(entry.TimeStamp, 10, 64)
	if err != nil {
		return txmonitor.Transaction{}, fmt.Errorf("%w: parsing timestamp %q: %v", txmonitor.ErrExternalAPI, entry.TimeStamp, err)
	}

	confirmations, _ := strconv.ParseInt(entry.Confirmations, 10, 64)

	direction := txmonitor.DirectionIncoming
	counterparty := entry.From
	if strings.EqualFold(entry.From, address) {
		direction = txmonitor.DirectionOutgoing
		counterparty = entry.To
	}

	return txmonitor.Transaction{
		Hash:          entry.Hash,
		Direction:     direction,
		Amount:        amount,
		Fee:           fee,
		Counterparty:  counterparty,
		Confirmations: confirmations,
		Timestamp:     time.Unix(unixSeconds, 0).UTC(),
		Failed:        entry.IsError == "1",
	}, nil
}

// transactionFee computes gasPrice * gasUsed converted to whole coins.
// Missing gas figures yield a zero fee.
func transactionFee(gasPrice, gasUsed string) (decimal.Decimal, error) {
	if gasPrice == "" || gasUsed == "" {
		return decimal.Zero, nil
	}

	price, err := decimal.NewFromString(gasPrice)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: parsing gas price %q: %v", txmonitor.ErrExternalAPI, gasPrice, err)
	}

	used, err := decimal.NewFromString(gasUsed)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: parsing gas used %q: %v", txmonitor.ErrExternalAPI, gasUsed, err)
	}

	return price.Mul(used).Shift(-weiExponent), nil
}

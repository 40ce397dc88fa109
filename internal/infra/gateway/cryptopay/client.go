// Package cryptopay checks crypto payment statuses against an external
// payment provider API.
package cryptopay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/billing"
)

// client implements the billing payment gateway port.
//
// With no base URL configured the client runs in stub mode and reports every
// payment as received. Real provider integration only needs credentials in
// the environment.
type client struct {
	baseURL    string
	apiKey     string
	httpClient *retryablehttp.Client
}

// Ensure client implements the gateway port at compile time.
var _ billing.PaymentGateway = (*client)(nil)

// NewClient creates a payment gateway client. An empty baseURL enables stub
// mode.
func NewClient(baseURL, apiKey string, httpClient *retryablehttp.Client) *client {
	return &client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// paymentStatusResponse is the provider's payment lookup payload.
type paymentStatusResponse struct {
	Status string `json:"status"`
}

// PaymentReceived implements the billing.PaymentGateway interface.
func (c *client) PaymentReceived(ctx context.Context, paymentID uuid.UUID) (bool, error) {
	if c.baseURL == "" {
		return true, nil
	}

	endpoint := fmt.Sprintf("%s/payments/%s", c.baseURL, paymentID)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("querying payment status: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if httpResp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("payment status lookup returned status %d", httpResp.StatusCode)
	}

	var resp paymentStatusResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return false, fmt.Errorf("decoding payment status: %w", err)
	}

	return resp.Status == "paid", nil
}

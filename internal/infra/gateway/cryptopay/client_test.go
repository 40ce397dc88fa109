package cryptopay

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transporthttp "github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/transport/http"
)

func TestPaymentReceived(t *testing.T) {
	t.Run("stub mode reports every payment as received", func(t *testing.T) {
		c := NewClient("", "", nil)

		received, err := c.PaymentReceived(t.Context(), uuid.New())
		require.NoError(t, err)
		assert.True(t, received)
	})

	t.Run("reports paid payments", func(t *testing.T) {
		paymentID := uuid.New()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/payments/"+paymentID.String(), r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"status": "paid"}`)
		}))
		t.Cleanup(server.Close)

		c := NewClient(server.URL, "test-key", transporthttp.NewClient(transporthttp.WithRetryMax(0)))

		received, err := c.PaymentReceived(t.Context(), paymentID)
		require.NoError(t, err)
		assert.True(t, received)
	})

	t.Run("reports unpaid payments", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": "waiting"}`)
		}))
		t.Cleanup(server.Close)

		c := NewClient(server.URL, "test-key", transporthttp.NewClient(transporthttp.WithRetryMax(0)))

		received, err := c.PaymentReceived(t.Context(), uuid.New())
		require.NoError(t, err)
		assert.False(t, received)
	})

	t.Run("treats unknown payments as not received", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(server.Close)

		c := NewClient(server.URL, "test-key", transporthttp.NewClient(transporthttp.WithRetryMax(0)))

		received, err := c.PaymentReceived(t.Context(), uuid.New())
		require.NoError(t, err)
		assert.False(t, received)
	})
}

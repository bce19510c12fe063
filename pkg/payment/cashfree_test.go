package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signBody(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	c := NewCashfreeClient("app", "secret", "whsecret", "test")
	body := []byte(`{"data":{"order":{"order_id":"order_1"}}}`)
	ts := "1712345678"

	assert.True(t, c.VerifyWebhookSignature(body, signBody("whsecret", ts, body), ts))
	assert.False(t, c.VerifyWebhookSignature(body, signBody("wrong-secret", ts, body), ts))
	assert.False(t, c.VerifyWebhookSignature(body, signBody("whsecret", "999", body), ts))
	assert.False(t, c.VerifyWebhookSignature(body, "", ts))
	assert.False(t, c.VerifyWebhookSignature(body, signBody("whsecret", ts, body), ""))
}

func TestCashfreeClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "app", r.Header.Get("x-client-id"))
		assert.Equal(t, "secret", r.Header.Get("x-client-secret"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "order_1", payload["order_id"])
		assert.Equal(t, "INR", payload["order_currency"])

		json.NewEncoder(w).Encode(map[string]string{
			"order_id":           "order_1",
			"order_status":       "ACTIVE",
			"payment_session_id": "session_xyz",
		})
	}))
	defer srv.Close()

	c := NewCashfreeClient("app", "secret", "whsecret", "test")
	c.baseURL = srv.URL

	session, err := c.CreateOrder(context.Background(), CreateOrderParams{
		OrderID:   "order_1",
		AmountINR: 1999,
		Email:     "a@b.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "session_xyz", session)
}

func TestCashfreeClient_CreateOrder_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"order_id invalid"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewCashfreeClient("app", "secret", "whsecret", "test")
	c.baseURL = srv.URL

	_, err := c.CreateOrder(context.Background(), CreateOrderParams{OrderID: "bad id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestCashfreeClient_OrderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/order_1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"order_id":     "order_1",
			"order_status": "PAID",
		})
	}))
	defer srv.Close()

	c := NewCashfreeClient("app", "secret", "whsecret", "test")
	c.baseURL = srv.URL

	status, err := c.OrderStatus(context.Background(), "order_1")
	require.NoError(t, err)
	assert.Equal(t, "PAID", status)
}

func TestCashfreeClient_ModeSelectsBaseURL(t *testing.T) {
	assert.Equal(t, cashfreeSandboxURL, NewCashfreeClient("a", "s", "w", "test").baseURL)
	assert.Equal(t, cashfreeLiveURL, NewCashfreeClient("a", "s", "w", "live").baseURL)
}

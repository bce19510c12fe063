package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	cashfreeSandboxURL = "https://sandbox.cashfree.com/pg"
	cashfreeLiveURL    = "https://api.cashfree.com/pg"
	cashfreeAPIVersion = "2023-08-01"
)

// CashfreeClient talks to the Cashfree PG REST API.
type CashfreeClient struct {
	httpClient    *http.Client
	baseURL       string
	appID         string
	secretKey     string
	webhookSecret string
}

// NewCashfreeClient builds a client for the given mode ("test" or "live").
func NewCashfreeClient(appID, secretKey, webhookSecret, mode string) *CashfreeClient {
	baseURL := cashfreeSandboxURL
	if mode == "live" {
		baseURL = cashfreeLiveURL
	}
	return &CashfreeClient{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		baseURL:       baseURL,
		appID:         appID,
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
	}
}

type cashfreeOrderResponse struct {
	OrderID          string `json:"order_id"`
	OrderStatus      string `json:"order_status"`
	PaymentSessionID string `json:"payment_session_id"`
}

// CreateOrder registers the order with Cashfree and returns the payment
// session id. The buyer's email goes only into customer_details, never into
// the order id.
func (c *CashfreeClient) CreateOrder(ctx context.Context, p CreateOrderParams) (string, error) {
	payload := map[string]interface{}{
		"order_id":       p.OrderID,
		"order_amount":   p.AmountINR,
		"order_currency": "INR",
		"customer_details": map[string]string{
			"customer_id":    "cust_" + uuid.New().String(),
			"customer_email": p.Email,
			"customer_phone": p.Phone,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal order payload: %w", err)
	}

	var res cashfreeOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", bytes.NewReader(body), &res); err != nil {
		return "", err
	}
	if res.PaymentSessionID == "" {
		return "", fmt.Errorf("gateway returned no payment session id for order %s", p.OrderID)
	}
	return res.PaymentSessionID, nil
}

// OrderStatus fetches the authoritative order status from Cashfree.
func (c *CashfreeClient) OrderStatus(ctx context.Context, orderID string) (string, error) {
	var res cashfreeOrderResponse
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, &res); err != nil {
		return "", err
	}
	return res.OrderStatus, nil
}

// VerifyWebhookSignature checks Cashfree's webhook signature:
// base64(HMAC-SHA256(timestamp + rawBody, secretKey)).
func (c *CashfreeClient) VerifyWebhookSignature(payload []byte, signature, timestamp string) bool {
	if signature == "" || timestamp == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *CashfreeClient) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", cashfreeAPIVersion)
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

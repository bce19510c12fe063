package payment

import "context"

// CreateOrderParams is what the gateway needs to register a checkout.
type CreateOrderParams struct {
	OrderID   string
	AmountINR int64
	Email     string
	Phone     string
}

// Gateway defines the contract with the external payment provider.
type Gateway interface {
	// CreateOrder registers the order remotely and returns the payment
	// session id the client uses to open the hosted checkout UI.
	CreateOrder(ctx context.Context, p CreateOrderParams) (string, error)
	// OrderStatus queries the gateway's order API directly. Webhook payloads
	// are never trusted on their own; this is the authoritative answer.
	OrderStatus(ctx context.Context, orderID string) (string, error)
	// VerifyWebhookSignature checks the HMAC signature on a pushed
	// notification against the shared webhook secret.
	VerifyWebhookSignature(payload []byte, signature, timestamp string) bool
}

// Gateway status codes treated as payment success. The gateway has renamed
// its success code across API versions; all synonyms map to paid.
var paidStatuses = map[string]struct{}{
	"PAID":                    {},
	"SUCCESS":                 {},
	"PAYMENT_SUCCESS":         {},
	"PAYMENT_SUCCESS_WEBHOOK": {},
	"OK":                      {},
}

// IsPaidStatus reports whether a gateway status code means the payment
// settled.
func IsPaidStatus(status string) bool {
	_, ok := paidStatuses[normalizeStatus(status)]
	return ok
}

// MockGateway is a canned implementation for local development.
type MockGateway struct {
	// Status is what OrderStatus reports for every order.
	Status string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{Status: "ACTIVE"}
}

func (g *MockGateway) CreateOrder(ctx context.Context, p CreateOrderParams) (string, error) {
	return "session_" + p.OrderID, nil
}

func (g *MockGateway) OrderStatus(ctx context.Context, orderID string) (string, error) {
	return g.Status, nil
}

func (g *MockGateway) VerifyWebhookSignature(payload []byte, signature, timestamp string) bool {
	return true
}

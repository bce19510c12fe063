package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order statuses. An order only ever moves created -> paid; paid is terminal.
const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
)

// Order represents one checkout attempt against the payment gateway.
type Order struct {
	ID               string    `json:"orderId"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone,omitempty"`
	AmountINR        int64     `json:"amountINR"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	PaymentSessionID string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NewOrderID generates an externally visible order identifier. The buyer's
// identity must never appear in the id: these ids end up in gateway URLs and
// logs.
func NewOrderID() string {
	return "order_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// DownloadToken is a one-time, expiring capability bound to a paid order.
type DownloadToken struct {
	Token     string    `json:"token"`
	OrderID   string    `json:"orderId"`
	Email     string    `json:"email"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewDownloadToken generates an unguessable token value.
func NewDownloadToken() string {
	return uuid.New().String() + uuid.New().String()[24:]
}

// Expired reports whether the token is past its TTL at the given instant.
func (t *DownloadToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Entitlement is a durable download grant keyed by the buyer's lower-cased
// email.
type Entitlement struct {
	Email     string    `json:"email"`
	OrderID   string    `json:"orderId"`
	Granted   bool      `json:"granted"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WebhookEvent records one processed gateway notification for auditing.
type WebhookEvent struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId"`
	EventType   string    `json:"eventType"`
	ProcessedAt time.Time `json:"processedAt"`
}

// NormalizeEmail lower-cases and trims an email for use as a matching key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateOrderRequest is the checkout input from the landing page.
type CreateOrderRequest struct {
	Email     string `json:"email" validate:"required,email"`
	AmountINR int64  `json:"amountINR" validate:"required,gt=0"`
	Phone     string `json:"phone" validate:"omitempty,len=10,numeric"`
}

// CreateOrderResponse hands the client what it needs to open the hosted
// checkout UI.
type CreateOrderResponse struct {
	OrderID          string `json:"orderId"`
	PaymentSessionID string `json:"paymentSessionId"`
}

// OrderStatusResponse is the poll endpoint's payload. DownloadToken is nil
// until the order is paid and a fresh token exists.
type OrderStatusResponse struct {
	Status        string  `json:"status"`
	DownloadToken *string `json:"downloadToken"`
}

package payment

import (
	"encoding/json"
	"errors"
	"strings"
)

// PaymentSignal is the one fixed shape the order lifecycle ever sees. Raw
// webhook payloads vary across gateway API versions and are normalized here
// before any state machine logic runs.
type PaymentSignal struct {
	OrderID string
	Status  string
}

// ErrUnrecognizedPayload means the webhook body carried no order id in any
// known shape.
var ErrUnrecognizedPayload = errors.New("unrecognized webhook payload shape")

// rawSignal covers the payload shapes the gateway has shipped: the current
// nested form (data.order / data.payment) and the flat legacy form.
type rawSignal struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			PaymentStatus string `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`

	// Legacy flat fields.
	OrderID     string `json:"orderId"`
	TxStatus    string `json:"txStatus"`
	FlatOrderID string `json:"order_id"`
	OrderStatus string `json:"order_status"`
}

// ParseSignal normalizes a raw webhook body into a PaymentSignal. Payloads
// with no recognizable order id are rejected rather than coerced.
func ParseSignal(body []byte) (*PaymentSignal, error) {
	var raw rawSignal
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	sig := &PaymentSignal{}
	switch {
	case raw.Data.Order.OrderID != "":
		sig.OrderID = raw.Data.Order.OrderID
		sig.Status = raw.Data.Payment.PaymentStatus
		if sig.Status == "" && raw.Type != "" {
			sig.Status = raw.Type
		}
	case raw.OrderID != "":
		sig.OrderID = raw.OrderID
		sig.Status = raw.TxStatus
	case raw.FlatOrderID != "":
		sig.OrderID = raw.FlatOrderID
		sig.Status = raw.OrderStatus
	default:
		return nil, ErrUnrecognizedPayload
	}

	sig.Status = normalizeStatus(sig.Status)
	return sig, nil
}

func normalizeStatus(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}

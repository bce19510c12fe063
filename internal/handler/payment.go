package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/pratijat22/LetsEarn/internal/domain"
	"github.com/pratijat22/LetsEarn/internal/service"
)

type PaymentHandler struct {
	svc *service.CheckoutService
}

func NewPaymentHandler(svc *service.CheckoutService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// CreateOrder handles POST /api/payments/create-order.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.svc.CreateOrder(r.Context(), &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}

// Webhook handles POST /api/payments/webhook. The gateway retries on
// non-2xx delivery status only, so receipt is always acknowledged with 200;
// processing failures are logged for operator follow-up instead of being
// surfaced as delivery errors.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Printf("webhook: failed to read body: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	signature := r.Header.Get("x-webhook-signature")
	timestamp := r.Header.Get("x-webhook-timestamp")

	if err := h.svc.HandleWebhook(r.Context(), body, signature, timestamp); err != nil {
		log.Printf("webhook: processing failed: %v", err)
	}
	w.WriteHeader(http.StatusOK)
}

// Confirm handles POST /api/payments/confirm?orderId=... — the poll-driven
// counterpart to the webhook. The order only transitions if the gateway's own
// API reports it paid.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ConfirmFromPoll(r.Context(), r.URL.Query().Get("orderId"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// OrderStatus handles GET /api/payments/order-status?orderId=...
func (h *PaymentHandler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetStatus(r.Context(), r.URL.Query().Get("orderId"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

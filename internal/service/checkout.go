package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pratijat22/LetsEarn/internal/domain"
	"github.com/pratijat22/LetsEarn/pkg/payment"
)

// Store contracts the checkout service depends on. The pgx repositories in
// internal/repository satisfy them; tests substitute fakes.

type OrderStore interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// MarkPaid must be a conditional write: true only for the first
	// created->paid transition.
	MarkPaid(ctx context.Context, id string) (bool, error)
}

type TokenStore interface {
	Create(ctx context.Context, t *domain.DownloadToken) error
	Find(ctx context.Context, token string) (*domain.DownloadToken, error)
	FindIssuable(ctx context.Context, orderID string) (*domain.DownloadToken, error)
	Redeem(ctx context.Context, token string) (*domain.DownloadToken, error)
}

type EntitlementStore interface {
	Upsert(ctx context.Context, e *domain.Entitlement) error
	FindByEmail(ctx context.Context, email string) (*domain.Entitlement, error)
}

type EventStore interface {
	Record(ctx context.Context, e *domain.WebhookEvent) error
}

// TokenTTL is how long a download token stays redeemable after issuance.
const TokenTTL = time.Hour

// CheckoutService owns the order lifecycle: create -> (verified paid signal)
// -> paid, plus the entitlement artifacts minted on that single transition.
type CheckoutService struct {
	orders       OrderStore
	tokens       TokenStore
	entitlements EntitlementStore
	events       EventStore
	gateway      payment.Gateway
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(orders OrderStore, tokens TokenStore, entitlements EntitlementStore, events EventStore, gateway payment.Gateway) *CheckoutService {
	return &CheckoutService{
		orders:       orders,
		tokens:       tokens,
		entitlements: entitlements,
		events:       events,
		gateway:      gateway,
	}
}

// CreateOrder registers a checkout with the gateway and persists the pending
// order. The gateway call comes first: if it fails, nothing is persisted.
func (s *CheckoutService) CreateOrder(ctx context.Context, req *domain.CreateOrderRequest) (*domain.CreateOrderResponse, error) {
	now := time.Now()
	order := &domain.Order{
		ID:        domain.NewOrderID(),
		Email:     domain.NormalizeEmail(req.Email),
		Phone:     req.Phone,
		AmountINR: req.AmountINR,
		Currency:  "INR",
		Status:    domain.OrderStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}

	sessionID, err := s.gateway.CreateOrder(ctx, payment.CreateOrderParams{
		OrderID:   order.ID,
		AmountINR: order.AmountINR,
		Email:     order.Email,
		Phone:     order.Phone,
	})
	if err != nil {
		return nil, domain.ErrGateway("payment gateway unavailable", err)
	}
	order.PaymentSessionID = sessionID

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, domain.ErrInternal("failed to save order", err)
	}

	return &domain.CreateOrderResponse{
		OrderID:          order.ID,
		PaymentSessionID: sessionID,
	}, nil
}

// HandleWebhook processes a pushed payment notification. The signature check
// fails closed; the payload is then normalized, and a paid status is only
// acted on after re-verification against the gateway's own order API. The
// created->paid transition happens at most once regardless of delivery
// retries.
func (s *CheckoutService) HandleWebhook(ctx context.Context, body []byte, signature, timestamp string) error {
	if !s.gateway.VerifyWebhookSignature(body, signature, timestamp) {
		return domain.ErrUnauthorized("invalid webhook signature")
	}

	signal, err := payment.ParseSignal(body)
	if err != nil {
		return domain.ErrBadRequest("unrecognized webhook payload")
	}

	if !payment.IsPaidStatus(signal.Status) {
		// Intermediate states (ACTIVE, USER_DROPPED, ...) are expected noise.
		return nil
	}

	// The push payload alone is never authoritative.
	remote, err := s.gateway.OrderStatus(ctx, signal.OrderID)
	if err != nil {
		return domain.ErrGateway("failed to verify payment with gateway", err)
	}
	if !payment.IsPaidStatus(remote) {
		log.Printf("webhook claimed %s paid but gateway reports %s, dropping", signal.OrderID, remote)
		return nil
	}

	return s.confirmPaid(ctx, signal.OrderID, signal.Status)
}

// confirmPaid applies a verified paid signal. Exactly one entitlement and one
// download token are minted, on the single winning transition.
func (s *CheckoutService) confirmPaid(ctx context.Context, orderID, statusCode string) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.ErrInternal("failed to load order", err)
	}
	if order == nil {
		return domain.ErrNotFound("unknown order")
	}

	transitioned, err := s.orders.MarkPaid(ctx, orderID)
	if err != nil {
		return domain.ErrInternal("failed to update order", err)
	}
	if !transitioned {
		// Already paid: duplicate delivery, nothing more to mint.
		return nil
	}

	now := time.Now()
	token := &domain.DownloadToken{
		Token:     domain.NewDownloadToken(),
		OrderID:   orderID,
		Email:     order.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(TokenTTL),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return domain.ErrInternal("failed to issue download token", err)
	}

	ent := &domain.Entitlement{
		Email:     order.Email,
		OrderID:   orderID,
		Granted:   true,
		UpdatedAt: now,
	}
	if err := s.entitlements.Upsert(ctx, ent); err != nil {
		return domain.ErrInternal("failed to grant entitlement", err)
	}

	event := &domain.WebhookEvent{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		EventType:   statusCode,
		ProcessedAt: now,
	}
	if err := s.events.Record(ctx, event); err != nil {
		// Audit trail only; the grant already happened.
		log.Printf("failed to record webhook event for %s: %v", orderID, err)
	}

	log.Printf("order %s paid, entitlement granted to %s", orderID, order.Email)
	return nil
}

// ConfirmFromPoll handles the client-initiated variant of the payment signal:
// the buyer's browser returns from the hosted checkout and asks for a check.
// No client claim is trusted; the gateway's order API is the only authority
// consulted before any transition.
func (s *CheckoutService) ConfirmFromPoll(ctx context.Context, orderID string) (*domain.OrderStatusResponse, error) {
	if orderID == "" {
		return nil, domain.ErrBadRequest("orderId is required")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load order", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound(fmt.Sprintf("no such order: %s", orderID))
	}

	if order.Status == domain.OrderStatusCreated {
		remote, err := s.gateway.OrderStatus(ctx, orderID)
		if err != nil {
			return nil, domain.ErrGateway("failed to verify payment with gateway", err)
		}
		if payment.IsPaidStatus(remote) {
			if err := s.confirmPaid(ctx, orderID, remote); err != nil {
				return nil, err
			}
		}
	}

	return s.GetStatus(ctx, orderID)
}

// GetStatus returns the order status for client polling. A paid order carries
// the newest unused, unexpired download token when one exists.
func (s *CheckoutService) GetStatus(ctx context.Context, orderID string) (*domain.OrderStatusResponse, error) {
	if orderID == "" {
		return nil, domain.ErrBadRequest("orderId is required")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load order", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound(fmt.Sprintf("no such order: %s", orderID))
	}

	resp := &domain.OrderStatusResponse{Status: order.Status}
	if order.Status == domain.OrderStatusPaid {
		token, err := s.tokens.FindIssuable(ctx, orderID)
		if err != nil {
			return nil, domain.ErrInternal("failed to load download token", err)
		}
		if token != nil {
			resp.DownloadToken = &token.Token
		}
	}
	return resp, nil
}

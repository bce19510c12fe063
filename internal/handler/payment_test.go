package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pratijat22/LetsEarn/internal/domain"
	"github.com/pratijat22/LetsEarn/internal/service"
	"github.com/pratijat22/LetsEarn/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory stores mirroring the conditional-write semantics of the Postgres
// repositories, wired under the real services and handlers.

type memOrders struct {
	mu sync.Mutex
	m  map[string]*domain.Order
}

func (s *memOrders) Create(ctx context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.m[o.ID] = &cp
	return nil
}

func (s *memOrders) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.m[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (s *memOrders) MarkPaid(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.m[id]
	if !ok || o.Status != domain.OrderStatusCreated {
		return false, nil
	}
	o.Status = domain.OrderStatusPaid
	o.UpdatedAt = time.Now()
	return true, nil
}

type memTokens struct {
	mu sync.Mutex
	m  map[string]*domain.DownloadToken
}

func (s *memTokens) Create(ctx context.Context, t *domain.DownloadToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.m[t.Token] = &cp
	return nil
}

func (s *memTokens) Find(ctx context.Context, token string) (*domain.DownloadToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.m[token]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *memTokens) FindIssuable(ctx context.Context, orderID string) (*domain.DownloadToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *domain.DownloadToken
	for _, t := range s.m {
		if t.OrderID != orderID || t.Used || t.Expired(time.Now()) {
			continue
		}
		if newest == nil || t.CreatedAt.After(newest.CreatedAt) {
			newest = t
		}
	}
	if newest == nil {
		return nil, nil
	}
	cp := *newest
	return &cp, nil
}

func (s *memTokens) Redeem(ctx context.Context, token string) (*domain.DownloadToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.m[token]
	if !ok || t.Used || t.Expired(time.Now()) {
		return nil, nil
	}
	t.Used = true
	cp := *t
	return &cp, nil
}

func (s *memTokens) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

type memEntitlements struct {
	mu sync.Mutex
	m  map[string]*domain.Entitlement
}

func (s *memEntitlements) Upsert(ctx context.Context, e *domain.Entitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.m[e.Email] = &cp
	return nil
}

func (s *memEntitlements) FindByEmail(ctx context.Context, email string) (*domain.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[email]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

type memEvents struct {
	mu sync.Mutex
	n  int
}

func (s *memEvents) Record(ctx context.Context, e *domain.WebhookEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return nil
}

type memCourse struct {
	mu     sync.Mutex
	course domain.Course
}

func (s *memCourse) Get(ctx context.Context) (*domain.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.course
	return &cp, nil
}

func (s *memCourse) Update(ctx context.Context, c *domain.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.course.Title = c.Title
	s.course.Description = c.Description
	s.course.PriceINR = c.PriceINR
	return nil
}

func (s *memCourse) SetObjectKey(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.course.ObjectKey = key
	return nil
}

type fakeBlob struct{}

func (fakeBlob) SignedReadURL(key string, ttl time.Duration) (string, error) {
	return "https://files.test/" + key + "?sig=r", nil
}

func (fakeBlob) SignedWriteURL(key string, ttl time.Duration) (string, error) {
	return "https://files.test/" + key + "?sig=w", nil
}

const validSignature = "valid-sig"

type env struct {
	router *chi.Mux
	orders *memOrders
	tokens *memTokens
	ents   *memEntitlements
	gw     *gatewayStub
}

// gatewayStub stands in for the remote payment provider: it accepts exactly
// one signature value and reports a settable order status.
type gatewayStub struct {
	mu       sync.Mutex
	statuses map[string]string
}

func (g *gatewayStub) CreateOrder(ctx context.Context, p payment.CreateOrderParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[p.OrderID] = "ACTIVE"
	return "session_" + p.OrderID, nil
}

func (g *gatewayStub) OrderStatus(ctx context.Context, orderID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statuses[orderID], nil
}

func (g *gatewayStub) VerifyWebhookSignature(payload []byte, signature, timestamp string) bool {
	return signature == validSignature
}

func (g *gatewayStub) setStatus(orderID, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[orderID] = status
}

func newEnv(t *testing.T) *env {
	t.Helper()

	orders := &memOrders{m: make(map[string]*domain.Order)}
	tokens := &memTokens{m: make(map[string]*domain.DownloadToken)}
	ents := &memEntitlements{m: make(map[string]*domain.Entitlement)}
	events := &memEvents{}
	course := &memCourse{course: domain.Course{
		ID:        domain.CourseID,
		Title:     "Course",
		PriceINR:  1999,
		ObjectKey: "deliverables/course.zip",
	}}
	gw := &gatewayStub{statuses: make(map[string]string)}

	checkoutSvc := service.NewCheckoutService(orders, tokens, ents, events, gw)
	downloadSvc := service.NewDownloadService(tokens, ents, course, fakeBlob{})

	paymentHandler := NewPaymentHandler(checkoutSvc)
	downloadHandler := NewDownloadHandler(downloadSvc)

	r := chi.NewRouter()
	r.Post("/api/payments/create-order", paymentHandler.CreateOrder)
	r.Post("/api/payments/webhook", paymentHandler.Webhook)
	r.Post("/api/payments/confirm", paymentHandler.Confirm)
	r.Get("/api/payments/order-status", paymentHandler.OrderStatus)
	r.Get("/download", downloadHandler.Resolve)

	return &env{router: r, orders: orders, tokens: tokens, ents: ents, gw: gw}
}

func (e *env) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrder_InvalidInput(t *testing.T) {
	e := newEnv(t)

	cases := []string{
		`{"email":"a@b.com","amountINR":-5}`,
		`{"email":"a@b.com"}`,
		`{"email":"not-an-email","amountINR":1999}`,
		`{"amountINR":1999}`,
		`{"email":"a@b.com","amountINR":1999,"phone":"12345"}`,
		`not json`,
	}
	for _, body := range cases {
		rec := e.do(t, http.MethodPost, "/api/payments/create-order", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, e.orders.m, "invalid input must persist nothing")
}

func TestOrderStatus_NotFound(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/payments/order-status?orderId=order_missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/payments/order-status", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgedWebhookAcknowledgedButIgnored(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/payments/create-order",
		`{"email":"a@b.com","amountINR":1999}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var created domain.CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	webhook := `{"data":{"order":{"order_id":"` + created.OrderID + `"},"payment":{"payment_status":"PAID"}}}`
	rec = e.do(t, http.MethodPost, "/api/payments/webhook", webhook, map[string]string{
		"x-webhook-signature": "forged",
		"x-webhook-timestamp": "1712345678",
	})
	// Receipt is acknowledged so the gateway stops retrying...
	assert.Equal(t, http.StatusOK, rec.Code)

	// ...but nothing was mutated.
	rec = e.do(t, http.MethodGet, "/api/payments/order-status?orderId="+created.OrderID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.OrderStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, domain.OrderStatusCreated, status.Status)
	assert.Nil(t, status.DownloadToken)
}

func TestCheckoutLifecycle(t *testing.T) {
	e := newEnv(t)

	// Create the order.
	rec := e.do(t, http.MethodPost, "/api/payments/create-order",
		`{"email":"a@b.com","amountINR":1999,"phone":"9876543210"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var created domain.CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.OrderID)
	assert.Equal(t, "session_"+created.OrderID, created.PaymentSessionID)

	// Immediately after create the order polls as created.
	rec = e.do(t, http.MethodGet, "/api/payments/order-status?orderId="+created.OrderID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.OrderStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, domain.OrderStatusCreated, status.Status)

	// Buyer pays on the hosted UI; the gateway now reports PAID and pushes a
	// signed webhook.
	e.gw.setStatus(created.OrderID, "PAID")
	webhook := `{"data":{"order":{"order_id":"` + created.OrderID + `"},"payment":{"payment_status":"PAID"}}}`
	wh := map[string]string{
		"x-webhook-signature": validSignature,
		"x-webhook-timestamp": "1712345678",
	}
	rec = e.do(t, http.MethodPost, "/api/payments/webhook", webhook, wh)
	require.Equal(t, http.StatusOK, rec.Code)

	// A duplicate delivery is acknowledged and changes nothing.
	rec = e.do(t, http.MethodPost, "/api/payments/webhook", webhook, wh)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.tokens.count(), "duplicate webhook must not mint a second token")

	// Status now paid, with a download token attached.
	rec = e.do(t, http.MethodGet, "/api/payments/order-status?orderId="+created.OrderID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, domain.OrderStatusPaid, status.Status)
	require.NotNil(t, status.DownloadToken)

	// The entitlement is durable and keyed by the lower-cased email.
	ent, err := e.ents.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, ent)
	assert.True(t, ent.Granted)

	// First redemption redirects to the signed file URL.
	rec = e.do(t, http.MethodGet, "/download?token="+*status.DownloadToken, "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "deliverables/course.zip")

	// Second redemption is refused.
	rec = e.do(t, http.MethodGet, "/download?token="+*status.DownloadToken, "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The durable email grant still works after the token is spent.
	rec = e.do(t, http.MethodGet, "/download?email=A@B.com", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestConfirmPollDrivenLifecycle(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/payments/create-order",
		`{"email":"a@b.com","amountINR":1999}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var created domain.CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Polling before payment settles changes nothing.
	rec = e.do(t, http.MethodPost, "/api/payments/confirm?orderId="+created.OrderID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.OrderStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, domain.OrderStatusCreated, status.Status)
	assert.Equal(t, 0, e.tokens.count())

	// Payment settles at the gateway; the next poll grants.
	e.gw.setStatus(created.OrderID, "PAID")
	rec = e.do(t, http.MethodPost, "/api/payments/confirm?orderId="+created.OrderID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, domain.OrderStatusPaid, status.Status)
	require.NotNil(t, status.DownloadToken)

	// Repeat polls are idempotent.
	rec = e.do(t, http.MethodPost, "/api/payments/confirm?orderId="+created.OrderID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.tokens.count())
}

func TestDownload_MissingIdentity(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/download", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/download?email=unknown@b.com", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

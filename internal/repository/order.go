package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pratijat22/LetsEarn/internal/domain"
)

// OrderRepository handles database operations for orders.
type OrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	query := `
		INSERT INTO orders (id, email, phone, amount_inr, currency, status, payment_session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		o.ID, o.Email, o.Phone, o.AmountINR, o.Currency, o.Status,
		o.PaymentSessionID, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// FindByID returns an order by id, or (nil, nil) when absent.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, email, phone, amount_inr, currency, status, payment_session_id, created_at, updated_at
		FROM orders WHERE id = $1
	`
	row := r.db.QueryRow(ctx, query, id)

	var o domain.Order
	err := row.Scan(&o.ID, &o.Email, &o.Phone, &o.AmountINR, &o.Currency, &o.Status,
		&o.PaymentSessionID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &o, nil
}

// MarkPaid flips an order to paid. The WHERE clause makes the transition a
// compare-and-set: only the first caller observes transitioned=true, repeats
// and unknown ids observe false.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		domain.OrderStatusPaid, id, domain.OrderStatusCreated,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListRecent returns the newest orders for the admin console.
func (r *OrderRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	query := `
		SELECT id, email, phone, amount_inr, currency, status, payment_session_id, created_at, updated_at
		FROM orders ORDER BY created_at DESC LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Email, &o.Phone, &o.AmountINR, &o.Currency, &o.Status,
			&o.PaymentSessionID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pratijat22/LetsEarn/internal/domain"
)

// WebhookEventRepository keeps an audit trail of processed gateway
// notifications.
type WebhookEventRepository struct {
	db *pgxpool.Pool
}

// NewWebhookEventRepository creates a new WebhookEventRepository.
func NewWebhookEventRepository(db *pgxpool.Pool) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Record stores one processed event.
func (r *WebhookEventRepository) Record(ctx context.Context, e *domain.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (id, order_id, event_type, processed_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, e.ID, e.OrderID, e.EventType, e.ProcessedAt)
	if err != nil {
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	return nil
}

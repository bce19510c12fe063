package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pratijat22/LetsEarn/internal/domain"
)

// EntitlementRepository handles database operations for download grants.
type EntitlementRepository struct {
	db *pgxpool.Pool
}

// NewEntitlementRepository creates a new EntitlementRepository.
func NewEntitlementRepository(db *pgxpool.Pool) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

// Upsert creates or refreshes the grant for an email. Grants are keyed by the
// lower-cased email and never revoked here.
func (r *EntitlementRepository) Upsert(ctx context.Context, e *domain.Entitlement) error {
	query := `
		INSERT INTO entitlements (email, order_id, granted, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET order_id = $2, granted = $3, updated_at = $4
	`
	_, err := r.db.Exec(ctx, query, e.Email, e.OrderID, e.Granted, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert entitlement: %w", err)
	}
	return nil
}

// FindByEmail returns the grant for an email, or (nil, nil) when absent.
func (r *EntitlementRepository) FindByEmail(ctx context.Context, email string) (*domain.Entitlement, error) {
	query := `SELECT email, order_id, granted, updated_at FROM entitlements WHERE email = $1`
	row := r.db.QueryRow(ctx, query, email)

	var e domain.Entitlement
	err := row.Scan(&e.Email, &e.OrderID, &e.Granted, &e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find entitlement: %w", err)
	}
	return &e, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pratijat22/LetsEarn/internal/domain"
)

// TokenRepository handles database operations for download tokens.
type TokenRepository struct {
	db *pgxpool.Pool
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create inserts a new download token.
func (r *TokenRepository) Create(ctx context.Context, t *domain.DownloadToken) error {
	query := `
		INSERT INTO download_tokens (token, order_id, email, used, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, t.Token, t.OrderID, t.Email, t.Used, t.CreatedAt, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create download token: %w", err)
	}
	return nil
}

// Find returns a token by value, or (nil, nil) when absent.
func (r *TokenRepository) Find(ctx context.Context, token string) (*domain.DownloadToken, error) {
	query := `
		SELECT token, order_id, email, used, created_at, expires_at
		FROM download_tokens WHERE token = $1
	`
	row := r.db.QueryRow(ctx, query, token)

	var t domain.DownloadToken
	err := row.Scan(&t.Token, &t.OrderID, &t.Email, &t.Used, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find download token: %w", err)
	}
	return &t, nil
}

// FindIssuable returns the newest unused, unexpired token for an order, or
// (nil, nil) when none exists.
func (r *TokenRepository) FindIssuable(ctx context.Context, orderID string) (*domain.DownloadToken, error) {
	query := `
		SELECT token, order_id, email, used, created_at, expires_at
		FROM download_tokens
		WHERE order_id = $1 AND used = FALSE AND expires_at > NOW()
		ORDER BY created_at DESC LIMIT 1
	`
	row := r.db.QueryRow(ctx, query, orderID)

	var t domain.DownloadToken
	err := row.Scan(&t.Token, &t.OrderID, &t.Email, &t.Used, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find issuable token: %w", err)
	}
	return &t, nil
}

// Redeem atomically consumes an unused, unexpired token. The conditional
// UPDATE is the single point of truth: two concurrent redemptions of the same
// token can never both succeed. Returns (nil, nil) when the condition failed;
// the caller classifies why via Find.
func (r *TokenRepository) Redeem(ctx context.Context, token string) (*domain.DownloadToken, error) {
	query := `
		UPDATE download_tokens SET used = TRUE
		WHERE token = $1 AND used = FALSE AND expires_at > NOW()
		RETURNING token, order_id, email, used, created_at, expires_at
	`
	row := r.db.QueryRow(ctx, query, token)

	var t domain.DownloadToken
	err := row.Scan(&t.Token, &t.OrderID, &t.Email, &t.Used, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to redeem download token: %w", err)
	}
	return &t, nil
}

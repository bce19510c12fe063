package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pratijat22/LetsEarn/internal/domain"
)

// CourseRepository handles the single course row.
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

// Get returns the course row, or (nil, nil) when it has never been seeded.
func (r *CourseRepository) Get(ctx context.Context) (*domain.Course, error) {
	query := `SELECT id, title, description, price_inr, object_key, updated_at FROM course WHERE id = $1`
	row := r.db.QueryRow(ctx, query, domain.CourseID)

	var c domain.Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.PriceINR, &c.ObjectKey, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &c, nil
}

// Update rewrites the course copy and price.
func (r *CourseRepository) Update(ctx context.Context, c *domain.Course) error {
	query := `
		UPDATE course SET title = $1, description = $2, price_inr = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, c.Title, c.Description, c.PriceINR, domain.CourseID)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

// SetObjectKey records the blob key of the uploaded deliverable.
func (r *CourseRepository) SetObjectKey(ctx context.Context, key string) error {
	query := `UPDATE course SET object_key = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, key, domain.CourseID)
	if err != nil {
		return fmt.Errorf("failed to set object key: %w", err)
	}
	return nil
}

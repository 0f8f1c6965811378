package repository

import (
	"context"
	"fmt"

	"ship-swift-backend/internal/models"
)

// ReviewRepository handles database operations for reviews
type ReviewRepository struct {
	db DBTX
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateReview creates a new review
func (r *ReviewRepository) CreateReview(ctx context.Context, rv *models.Review) error {
	query := `
		INSERT INTO reviews (id, author_id, target_id, target_role, active_job_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		rv.ID, rv.AuthorID, rv.TargetID, rv.TargetRole, rv.ActiveJobID, rv.Rating, rv.Comment, rv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("review already exists: %w", ErrConflict)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetReview retrieves a review by ID
func (r *ReviewRepository) GetReview(ctx context.Context, id string) (*models.Review, error) {
	query := `
		SELECT id, author_id, target_id, target_role, active_job_id, rating, comment, created_at
		FROM reviews
		WHERE id = $1
	`
	var rv models.Review
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rv.ID, &rv.AuthorID, &rv.TargetID, &rv.TargetRole, &rv.ActiveJobID, &rv.Rating, &rv.Comment, &rv.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "review")
	}
	return &rv, nil
}

// ListReviewsByTarget retrieves reviews left for a driver or a client
func (r *ReviewRepository) ListReviewsByTarget(ctx context.Context, targetID string, role models.Role) ([]*models.Review, error) {
	query := `
		SELECT id, author_id, target_id, target_role, active_job_id, rating, comment, created_at
		FROM reviews
		WHERE target_id = $1 AND target_role = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, targetID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		var rv models.Review
		err := rows.Scan(
			&rv.ID, &rv.AuthorID, &rv.TargetID, &rv.TargetRole, &rv.ActiveJobID, &rv.Rating, &rv.Comment, &rv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, &rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}

// DeleteReview deletes a review by ID
func (r *ReviewRepository) DeleteReview(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %w", ErrNotFound)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"ship-swift-backend/internal/models"
)

// PushTokenRepository handles database operations for device push tokens
type PushTokenRepository struct {
	db DBTX
}

// NewPushTokenRepository creates a new push token repository
func NewPushTokenRepository(db DBTX) *PushTokenRepository {
	return &PushTokenRepository{db: db}
}

// UpsertPushToken registers a device token; a token moves to the latest user that registers it
func (r *PushTokenRepository) UpsertPushToken(ctx context.Context, t *models.PushToken) error {
	query := `
		INSERT INTO push_tokens (token, user_id, platform, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
	`
	_, err := r.db.Exec(ctx, query, t.Token, t.UserID, t.Platform, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert push token: %w", err)
	}
	return nil
}

// ListPushTokensByUser retrieves all device tokens of a user
func (r *PushTokenRepository) ListPushTokensByUser(ctx context.Context, userID string) ([]*models.PushToken, error) {
	query := `SELECT token, user_id, platform, created_at FROM push_tokens WHERE user_id = $1`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}
	defer rows.Close()

	tokens := []*models.PushToken{}
	for rows.Next() {
		var t models.PushToken
		if err := rows.Scan(&t.Token, &t.UserID, &t.Platform, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens = append(tokens, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating push tokens: %w", err)
	}
	return tokens, nil
}

// DeletePushToken removes a device token owned by the user
func (r *PushTokenRepository) DeletePushToken(ctx context.Context, userID, token string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM push_tokens WHERE token = $1 AND user_id = $2`, token, userID)
	if err != nil {
		return fmt.Errorf("failed to delete push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("push token %w", ErrNotFound)
	}
	return nil
}

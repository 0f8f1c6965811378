package repository

import (
	"context"
	"fmt"
	"time"

	"ship-swift-backend/internal/models"
)

// UserRoleRepository handles database operations for user roles
type UserRoleRepository struct {
	db DBTX
}

// NewUserRoleRepository creates a new user role repository
func NewUserRoleRepository(db DBTX) *UserRoleRepository {
	return &UserRoleRepository{db: db}
}

// UpsertUserRole creates or updates the role flags of a user. Nil flags keep
// the stored value; for a new row they default to false.
func (r *UserRoleRepository) UpsertUserRole(ctx context.Context, userID string, upd models.RoleUpdate) (*models.UserRole, error) {
	query := `
		INSERT INTO user_roles (user_id, driver, client, updated_at)
		VALUES ($1, COALESCE($2, FALSE), COALESCE($3, FALSE), $4)
		ON CONFLICT (user_id) DO UPDATE SET
			driver = COALESCE($2, user_roles.driver),
			client = COALESCE($3, user_roles.client),
			updated_at = $4
		RETURNING user_id, driver, client, updated_at
	`
	var role models.UserRole
	err := r.db.QueryRow(ctx, query, userID, upd.Driver, upd.Client, time.Now()).Scan(
		&role.UserID, &role.Driver, &role.Client, &role.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user role: %w", err)
	}
	return &role, nil
}

// GetUserRole retrieves the role flags of a user
func (r *UserRoleRepository) GetUserRole(ctx context.Context, userID string) (*models.UserRole, error) {
	query := `SELECT user_id, driver, client, updated_at FROM user_roles WHERE user_id = $1`
	var role models.UserRole
	err := r.db.QueryRow(ctx, query, userID).Scan(&role.UserID, &role.Driver, &role.Client, &role.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "user role")
	}
	return &role, nil
}

// DeleteUserRole removes the role flags of a user
func (r *UserRoleRepository) DeleteUserRole(ctx context.Context, userID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user role %w", ErrNotFound)
	}
	return nil
}

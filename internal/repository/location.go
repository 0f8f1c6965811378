package repository

import (
	"context"
	"fmt"

	"ship-swift-backend/internal/models"
)

// LocationRepository handles database operations for saved locations
type LocationRepository struct {
	db DBTX
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db DBTX) *LocationRepository {
	return &LocationRepository{db: db}
}

// CreateLocation creates a new location
func (r *LocationRepository) CreateLocation(ctx context.Context, l *models.Location) error {
	query := `
		INSERT INTO locations (id, user_id, label, address, lat, lon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, l.ID, l.UserID, l.Label, l.Address, l.Lat, l.Lon, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

// GetLocation retrieves a location by ID
func (r *LocationRepository) GetLocation(ctx context.Context, id string) (*models.Location, error) {
	query := `SELECT id, user_id, label, address, lat, lon, created_at FROM locations WHERE id = $1`
	var l models.Location
	err := r.db.QueryRow(ctx, query, id).Scan(&l.ID, &l.UserID, &l.Label, &l.Address, &l.Lat, &l.Lon, &l.CreatedAt)
	if err != nil {
		return nil, notFound(err, "location")
	}
	return &l, nil
}

// ListLocationsByUser retrieves the saved locations of a user
func (r *LocationRepository) ListLocationsByUser(ctx context.Context, userID string) ([]*models.Location, error) {
	query := `
		SELECT id, user_id, label, address, lat, lon, created_at
		FROM locations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations := []*models.Location{}
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.UserID, &l.Label, &l.Address, &l.Lat, &l.Lon, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}
	return locations, nil
}

// DeleteLocation deletes a location by ID
func (r *LocationRepository) DeleteLocation(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("location %w", ErrNotFound)
	}
	return nil
}

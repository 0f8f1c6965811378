package repository

import (
	"context"
	"fmt"

	"ship-swift-backend/internal/models"
)

// ContactRepository handles database operations for contacts
type ContactRepository struct {
	db DBTX
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{db: db}
}

// EnsureContact creates the client-driver pair unless it exists and returns the stored row
func (r *ContactRepository) EnsureContact(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	query := `
		INSERT INTO contacts (id, client_id, driver_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (client_id, driver_id) DO UPDATE SET client_id = EXCLUDED.client_id
		RETURNING id, client_id, driver_id, created_at
	`
	var contact models.Contact
	err := r.db.QueryRow(ctx, query, c.ID, c.ClientID, c.DriverID, c.CreatedAt).Scan(
		&contact.ID, &contact.ClientID, &contact.DriverID, &contact.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure contact: %w", err)
	}
	return &contact, nil
}

// GetContact retrieves a contact by ID
func (r *ContactRepository) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	query := `SELECT id, client_id, driver_id, created_at FROM contacts WHERE id = $1`
	var c models.Contact
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.ClientID, &c.DriverID, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "contact")
	}
	return &c, nil
}

// ListContactsByUser retrieves contacts where the user is either party
func (r *ContactRepository) ListContactsByUser(ctx context.Context, userID string) ([]*models.Contact, error) {
	query := `
		SELECT id, client_id, driver_id, created_at
		FROM contacts
		WHERE client_id = $1 OR driver_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.ClientID, &c.DriverID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return contacts, nil
}

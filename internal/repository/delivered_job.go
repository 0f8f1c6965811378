package repository

import (
	"context"
	"fmt"
	"time"

	"ship-swift-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const deliveredJobColumns = `id, active_job_id, location_id, proof_of_delivery_url,
	is_driver_confirmed, is_client_confirmed, payment_released_at, created_at, updated_at`

// DeliveredJobRepository handles database operations for delivery confirmations
type DeliveredJobRepository struct {
	db DBTX
}

// NewDeliveredJobRepository creates a new delivered job repository
func NewDeliveredJobRepository(db DBTX) *DeliveredJobRepository {
	return &DeliveredJobRepository{db: db}
}

func scanDeliveredJob(row pgx.Row) (*models.DeliveredJob, error) {
	var d models.DeliveredJob
	err := row.Scan(
		&d.ID, &d.ActiveJobID, &d.LocationID, &d.ProofOfDeliveryURL,
		&d.IsDriverConfirmed, &d.IsClientConfirmed, &d.PaymentReleasedAt,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDeliveredJob creates the delivery record of an active job
func (r *DeliveredJobRepository) CreateDeliveredJob(ctx context.Context, d *models.DeliveredJob) error {
	query := `
		INSERT INTO delivered_jobs (` + deliveredJobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		d.ID, d.ActiveJobID, d.LocationID, d.ProofOfDeliveryURL,
		d.IsDriverConfirmed, d.IsClientConfirmed, d.PaymentReleasedAt,
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("active job already delivered: %w", ErrConflict)
		}
		return fmt.Errorf("failed to create delivered job: %w", err)
	}
	return nil
}

// GetDeliveredJob retrieves a delivery record by ID
func (r *DeliveredJobRepository) GetDeliveredJob(ctx context.Context, id string) (*models.DeliveredJob, error) {
	query := `SELECT ` + deliveredJobColumns + ` FROM delivered_jobs WHERE id = $1`
	d, err := scanDeliveredJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "delivered job")
	}
	return d, nil
}

// GetDeliveredJobByActiveJob retrieves the delivery record of an active job
func (r *DeliveredJobRepository) GetDeliveredJobByActiveJob(ctx context.Context, activeJobID string) (*models.DeliveredJob, error) {
	query := `SELECT ` + deliveredJobColumns + ` FROM delivered_jobs WHERE active_job_id = $1`
	d, err := scanDeliveredJob(r.db.QueryRow(ctx, query, activeJobID))
	if err != nil {
		return nil, notFound(err, "delivered job")
	}
	return d, nil
}

// ConfirmClientDelivery sets the client confirmation flag once
func (r *DeliveredJobRepository) ConfirmClientDelivery(ctx context.Context, id string) error {
	query := `
		UPDATE delivered_jobs
		SET is_client_confirmed = TRUE, updated_at = $2
		WHERE id = $1 AND NOT is_client_confirmed
	`
	result, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to confirm delivery: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, id, "delivery already confirmed")
	}
	return nil
}

// MarkPaymentReleased records the payout. It only applies when both parties
// confirmed and no payout was recorded before.
func (r *DeliveredJobRepository) MarkPaymentReleased(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE delivered_jobs
		SET payment_released_at = $2, updated_at = $2
		WHERE id = $1 AND is_driver_confirmed AND is_client_confirmed AND payment_released_at IS NULL
	`
	result, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to release payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, id, "payment not releasable")
	}
	return nil
}

func (r *DeliveredJobRepository) missingOrConflict(ctx context.Context, id, reason string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM delivered_jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check delivered job existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("delivered job %w", ErrNotFound)
	}
	return fmt.Errorf("%s: %w", reason, ErrConflict)
}

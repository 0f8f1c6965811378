package repository

import (
	"context"
	"fmt"
	"time"

	"ship-swift-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const jobRequestColumns = `id, job_id, driver_id, offer_amount, is_approved, status, direct, created_at, updated_at`

// JobRequestRepository handles database operations for job requests
type JobRequestRepository struct {
	db DBTX
}

// NewJobRequestRepository creates a new job request repository
func NewJobRequestRepository(db DBTX) *JobRequestRepository {
	return &JobRequestRepository{db: db}
}

func scanJobRequest(row pgx.Row) (*models.JobRequest, error) {
	var req models.JobRequest
	err := row.Scan(
		&req.ID, &req.JobID, &req.DriverID, &req.OfferAmount, &req.IsApproved,
		&req.Status, &req.Direct, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *JobRequestRepository) list(ctx context.Context, query string, arg any) ([]*models.JobRequest, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list job requests: %w", err)
	}
	defer rows.Close()

	requests := []*models.JobRequest{}
	for rows.Next() {
		req, err := scanJobRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job requests: %w", err)
	}
	return requests, nil
}

// CreateJobRequest creates a new job request. A second request by the same
// driver for the same job is a conflict.
func (r *JobRequestRepository) CreateJobRequest(ctx context.Context, req *models.JobRequest) error {
	query := `
		INSERT INTO job_requests (` + jobRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		req.ID, req.JobID, req.DriverID, req.OfferAmount, req.IsApproved,
		req.Status, req.Direct, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("job request already exists: %w", ErrConflict)
		}
		return fmt.Errorf("failed to create job request: %w", err)
	}
	return nil
}

// GetJobRequest retrieves a job request by ID
func (r *JobRequestRepository) GetJobRequest(ctx context.Context, id string) (*models.JobRequest, error) {
	query := `SELECT ` + jobRequestColumns + ` FROM job_requests WHERE id = $1`
	req, err := scanJobRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "job request")
	}
	return req, nil
}

// ListJobRequestsByJob retrieves all requests made against a job
func (r *JobRequestRepository) ListJobRequestsByJob(ctx context.Context, jobID string) ([]*models.JobRequest, error) {
	query := `SELECT ` + jobRequestColumns + ` FROM job_requests WHERE job_id = $1 ORDER BY created_at`
	return r.list(ctx, query, jobID)
}

// ListJobRequestsByDriver retrieves all requests made by a driver
func (r *JobRequestRepository) ListJobRequestsByDriver(ctx context.Context, driverID string) ([]*models.JobRequest, error) {
	query := `SELECT ` + jobRequestColumns + ` FROM job_requests WHERE driver_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, driverID)
}

// HasApprovedRequest checks if any request of a job is already approved
func (r *JobRequestRepository) HasApprovedRequest(ctx context.Context, jobID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM job_requests WHERE job_id = $1 AND is_approved)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, jobID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check approved request: %w", err)
	}
	return exists, nil
}

// UpdateJobRequestOffer changes the offer of a pending request
func (r *JobRequestRepository) UpdateJobRequestOffer(ctx context.Context, id string, amount float64) error {
	query := `UPDATE job_requests SET offer_amount = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	result, err := r.db.Exec(ctx, query, id, amount, time.Now(), models.RequestStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, id)
	}
	return nil
}

// SetJobRequestStatus decides a pending request. Approving a request while a
// sibling is approved violates the one-approved-per-job index and is a conflict.
func (r *JobRequestRepository) SetJobRequestStatus(ctx context.Context, id string, status models.RequestStatus) error {
	query := `
		UPDATE job_requests
		SET status = $2, is_approved = $3, updated_at = $4
		WHERE id = $1 AND status = $5
	`
	result, err := r.db.Exec(ctx, query,
		id, status, status == models.RequestStatusApproved, time.Now(), models.RequestStatusPending,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("job already has an approved request: %w", ErrConflict)
		}
		return fmt.Errorf("failed to update job request status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, id)
	}
	return nil
}

// RejectOtherRequests rejects every pending request of a job except keepID
func (r *JobRequestRepository) RejectOtherRequests(ctx context.Context, jobID, keepID string) (int64, error) {
	query := `
		UPDATE job_requests
		SET status = $3, is_approved = FALSE, updated_at = $4
		WHERE job_id = $1 AND id <> $2 AND status = $5
	`
	result, err := r.db.Exec(ctx, query,
		jobID, keepID, models.RequestStatusRejected, time.Now(), models.RequestStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reject sibling requests: %w", err)
	}
	return result.RowsAffected(), nil
}

// DeleteJobRequest deletes a request that has not been decided yet
func (r *JobRequestRepository) DeleteJobRequest(ctx context.Context, id string) error {
	query := `DELETE FROM job_requests WHERE id = $1 AND status = $2`
	result, err := r.db.Exec(ctx, query, id, models.RequestStatusPending)
	if err != nil {
		return fmt.Errorf("failed to delete job request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, id)
	}
	return nil
}

func (r *JobRequestRepository) missingOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM job_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check job request existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("job request %w", ErrNotFound)
	}
	return fmt.Errorf("job request already decided: %w", ErrConflict)
}

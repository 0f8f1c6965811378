package repository

import (
	"context"
	"fmt"
	"time"

	"ship-swift-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, client_id, title, description, budget, pickup_address, dropoff_address,
	pickup_lat, pickup_lon, dropoff_lat, dropoff_lon, status, payment_status, created_at, updated_at`

// JobRepository handles database operations for jobs
type JobRepository struct {
	db DBTX
}

// NewJobRepository creates a new job repository
func NewJobRepository(db DBTX) *JobRepository {
	return &JobRepository{db: db}
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var job models.Job
	err := row.Scan(
		&job.ID, &job.ClientID, &job.Title, &job.Description, &job.Budget,
		&job.PickupAddress, &job.DropoffAddress,
		&job.PickupLat, &job.PickupLon, &job.DropoffLat, &job.DropoffLon,
		&job.Status, &job.PaymentStatus, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func collectJobs(rows pgx.Rows) ([]*models.Job, error) {
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}
	return jobs, nil
}

// CreateJob creates a new job
func (r *JobRepository) CreateJob(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query,
		job.ID, job.ClientID, job.Title, job.Description, job.Budget,
		job.PickupAddress, job.DropoffAddress,
		job.PickupLat, job.PickupLon, job.DropoffLat, job.DropoffLon,
		job.Status, job.PaymentStatus, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID
func (r *JobRepository) GetJob(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "job")
	}
	return job, nil
}

// GetJobForUpdate retrieves a job by ID and locks its row until the transaction ends
func (r *JobRepository) GetJobForUpdate(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1 FOR UPDATE`
	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "job")
	}
	return job, nil
}

// ListJobsByClient retrieves all jobs posted by a client, newest first
func (r *JobRepository) ListJobsByClient(ctx context.Context, clientID string) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE client_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client jobs: %w", err)
	}
	return collectJobs(rows)
}

// ListJobsByStatus retrieves jobs in a given status with pagination
func (r *JobRepository) ListJobsByStatus(ctx context.Context, status models.JobStatus, limit, offset int) ([]*models.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return collectJobs(rows)
}

// ListAllJobs retrieves every job with pagination
func (r *JobRepository) ListAllJobs(ctx context.Context, limit, offset int) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return collectJobs(rows)
}

// UpdateJob applies the non-nil fields of upd and returns the stored job
func (r *JobRepository) UpdateJob(ctx context.Context, id string, upd models.JobUpdate) (*models.Job, error) {
	query := `
		UPDATE jobs SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			budget = COALESCE($4, budget),
			pickup_address = COALESCE($5, pickup_address),
			dropoff_address = COALESCE($6, dropoff_address),
			updated_at = $7
		WHERE id = $1
		RETURNING ` + jobColumns
	job, err := scanJob(r.db.QueryRow(ctx, query,
		id, upd.Title, upd.Description, upd.Budget, upd.PickupAddress, upd.DropoffAddress, time.Now(),
	))
	if err != nil {
		return nil, notFound(err, "job")
	}
	return job, nil
}

// SetJobStatus moves a job to status to, but only from one of the given states
func (r *JobRepository) SetJobStatus(ctx context.Context, id string, from []models.JobStatus, to models.JobStatus) error {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	query := `UPDATE jobs SET status = $2, updated_at = $3 WHERE id = $1 AND status = ANY($4)`
	result, err := r.db.Exec(ctx, query, id, to, time.Now(), allowed)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, id)
	}
	return nil
}

// MarkJobPaid flips the payment status to paid. changed is false when it already was.
func (r *JobRepository) MarkJobPaid(ctx context.Context, id string) (changed bool, err error) {
	query := `UPDATE jobs SET payment_status = $2, updated_at = $3 WHERE id = $1 AND payment_status <> $2`
	result, err := r.db.Exec(ctx, query, id, models.PaymentStatusPaid, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to mark job paid: %w", err)
	}
	if result.RowsAffected() == 0 {
		if _, err := r.GetJob(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// DeleteJob deletes a job by ID
func (r *JobRepository) DeleteJob(ctx context.Context, id string) error {
	query := `DELETE FROM jobs WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job %w", ErrNotFound)
	}
	return nil
}

func (r *JobRepository) missingOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check job existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("job %w", ErrNotFound)
	}
	return fmt.Errorf("job status changed: %w", ErrConflict)
}

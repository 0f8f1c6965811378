package repository

import (
	"context"
	"fmt"
	"time"

	"ship-swift-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const activeJobColumns = `id, job_id, request_id, driver_id, client_id, job_status, created_at, updated_at`

// ActiveJobRepository handles database operations for active jobs
type ActiveJobRepository struct {
	db DBTX
}

// NewActiveJobRepository creates a new active job repository
func NewActiveJobRepository(db DBTX) *ActiveJobRepository {
	return &ActiveJobRepository{db: db}
}

func scanActiveJob(row pgx.Row) (*models.ActiveJob, error) {
	var aj models.ActiveJob
	err := row.Scan(
		&aj.ID, &aj.JobID, &aj.RequestID, &aj.DriverID, &aj.ClientID,
		&aj.JobStatus, &aj.CreatedAt, &aj.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &aj, nil
}

// CreateActiveJob creates a new active job. The job_id column is unique.
func (r *ActiveJobRepository) CreateActiveJob(ctx context.Context, aj *models.ActiveJob) error {
	query := `
		INSERT INTO active_jobs (` + activeJobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		aj.ID, aj.JobID, aj.RequestID, aj.DriverID, aj.ClientID, aj.JobStatus, aj.CreatedAt, aj.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("job already has an active job: %w", ErrConflict)
		}
		return fmt.Errorf("failed to create active job: %w", err)
	}
	return nil
}

// GetActiveJob retrieves an active job by ID
func (r *ActiveJobRepository) GetActiveJob(ctx context.Context, id string) (*models.ActiveJob, error) {
	query := `SELECT ` + activeJobColumns + ` FROM active_jobs WHERE id = $1`
	aj, err := scanActiveJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "active job")
	}
	return aj, nil
}

// GetActiveJobByJob retrieves the active job bound to a job
func (r *ActiveJobRepository) GetActiveJobByJob(ctx context.Context, jobID string) (*models.ActiveJob, error) {
	query := `SELECT ` + activeJobColumns + ` FROM active_jobs WHERE job_id = $1`
	aj, err := scanActiveJob(r.db.QueryRow(ctx, query, jobID))
	if err != nil {
		return nil, notFound(err, "active job")
	}
	return aj, nil
}

// ListActiveJobsByDriver retrieves active jobs assigned to a driver
func (r *ActiveJobRepository) ListActiveJobsByDriver(ctx context.Context, driverID string) ([]*models.ActiveJob, error) {
	query := `SELECT ` + activeJobColumns + ` FROM active_jobs WHERE driver_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, driverID)
}

// ListActiveJobsByClient retrieves active jobs of a client
func (r *ActiveJobRepository) ListActiveJobsByClient(ctx context.Context, clientID string) ([]*models.ActiveJob, error) {
	query := `SELECT ` + activeJobColumns + ` FROM active_jobs WHERE client_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, clientID)
}

func (r *ActiveJobRepository) list(ctx context.Context, query string, arg any) ([]*models.ActiveJob, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list active jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.ActiveJob{}
	for rows.Next() {
		aj, err := scanActiveJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active job: %w", err)
		}
		jobs = append(jobs, aj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active jobs: %w", err)
	}
	return jobs, nil
}

// UpdateActiveJobStatus moves an active job from one status to the next.
// The update only applies while the row still holds from.
func (r *ActiveJobRepository) UpdateActiveJobStatus(ctx context.Context, id string, from, to models.ActiveJobStatus) error {
	query := `UPDATE active_jobs SET job_status = $2, updated_at = $3 WHERE id = $1 AND job_status = $4`
	result, err := r.db.Exec(ctx, query, id, to, time.Now(), from)
	if err != nil {
		return fmt.Errorf("failed to update active job status: %w", err)
	}
	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM active_jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check active job existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("active job %w", ErrNotFound)
		}
		return fmt.Errorf("active job status changed: %w", ErrConflict)
	}
	return nil
}

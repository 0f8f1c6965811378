package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ship-swift-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// JobService is the job record store
type JobService struct {
	store    Store
	roles    *RoleService
	notifier Notifier
}

// NewJobService creates a new job service
func NewJobService(store Store, roles *RoleService, notifier Notifier) *JobService {
	return &JobService{
		store:    store,
		roles:    roles,
		notifier: notifierOrNop(notifier),
	}
}

// CreateJobInput holds the fields of a new job
type CreateJobInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Budget         float64  `json:"budget"`
	PickupAddress  string   `json:"pickup_address"`
	DropoffAddress string   `json:"dropoff_address"`
	PickupLat      *float64 `json:"pickup_lat,omitempty"`
	PickupLon      *float64 `json:"pickup_lon,omitempty"`
	DropoffLat     *float64 `json:"dropoff_lat,omitempty"`
	DropoffLon     *float64 `json:"dropoff_lon,omitempty"`
}

func (in *CreateJobInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.PickupAddress = strings.TrimSpace(in.PickupAddress)
	in.DropoffAddress = strings.TrimSpace(in.DropoffAddress)

	switch {
	case in.Title == "":
		return invalid("title", "is required")
	case in.Description == "":
		return invalid("description", "is required")
	case in.PickupAddress == "":
		return invalid("pickup_address", "is required")
	case in.DropoffAddress == "":
		return invalid("dropoff_address", "is required")
	case in.Budget <= 0:
		return invalid("budget", "must be greater than 0")
	}

	if err := checkCoordinates("pickup", in.PickupLat, in.PickupLon); err != nil {
		return err
	}
	return checkCoordinates("dropoff", in.DropoffLat, in.DropoffLon)
}

func checkCoordinates(prefix string, lat, lon *float64) error {
	if (lat == nil) != (lon == nil) {
		return invalid(prefix+"_lat", "and "+prefix+"_lon must be set together")
	}
	if lat == nil {
		return nil
	}
	if *lat < -90 || *lat > 90 {
		return invalid(prefix+"_lat", "must be between -90 and 90")
	}
	if *lon < -180 || *lon > 180 {
		return invalid(prefix+"_lon", "must be between -180 and 180")
	}
	return nil
}

func newJob(clientID string, in CreateJobInput) *models.Job {
	now := time.Now()
	return &models.Job{
		ID:             uuid.New().String(),
		ClientID:       clientID,
		Title:          in.Title,
		Description:    in.Description,
		Budget:         in.Budget,
		PickupAddress:  in.PickupAddress,
		DropoffAddress: in.DropoffAddress,
		PickupLat:      in.PickupLat,
		PickupLon:      in.PickupLon,
		DropoffLat:     in.DropoffLat,
		DropoffLon:     in.DropoffLon,
		Status:         models.JobStatusOpen,
		PaymentStatus:  models.PaymentStatusUnpaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateJob posts a new job owned by clientID
func (s *JobService) CreateJob(ctx context.Context, clientID string, in CreateJobInput) (*models.Job, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := s.roles.require(ctx, clientID, models.RoleClient); err != nil {
		return nil, err
	}

	job := newJob(clientID, in)
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	log.Info().Str("job_id", job.ID).Str("client_id", clientID).Float64("budget", job.Budget).Msg("Job created")
	return job, nil
}

// CreateDirectJob posts a job and invites a known driver to it. The job, the
// direct request and the contact are written in one transaction.
func (s *JobService) CreateDirectJob(ctx context.Context, clientID string, in CreateJobInput, driverID string) (*models.Job, *models.JobRequest, error) {
	if err := in.normalize(); err != nil {
		return nil, nil, err
	}
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, nil, invalid("driver_id", "is required")
	}
	if driverID == clientID {
		return nil, nil, invalid("driver_id", "must differ from the client")
	}
	if err := s.roles.require(ctx, clientID, models.RoleClient); err != nil {
		return nil, nil, err
	}
	if ok, err := s.roles.IsDriver(ctx, driverID); err != nil {
		return nil, nil, err
	} else if !ok {
		return nil, nil, invalid("driver_id", "is not a driver")
	}

	job := newJob(clientID, in)
	req := &models.JobRequest{
		ID:        uuid.New().String(),
		JobID:     job.ID,
		DriverID:  driverID,
		Status:    models.RequestStatusPending,
		Direct:    true,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.CreatedAt,
	}

	err := s.store.InTx(ctx, func(q Queries) error {
		if err := q.CreateJob(ctx, job); err != nil {
			return err
		}
		if err := q.CreateJobRequest(ctx, req); err != nil {
			return err
		}
		_, err := q.EnsureContact(ctx, &models.Contact{
			ID:        uuid.New().String(),
			ClientID:  clientID,
			DriverID:  driverID,
			CreatedAt: job.CreatedAt,
		})
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create direct job: %w", storeErr(err))
	}

	log.Info().
		Str("job_id", job.ID).
		Str("client_id", clientID).
		Str("driver_id", driverID).
		Msg("Direct job created")

	s.notifier.Notify(ctx, driverID, Notification{
		Type:  EventJobRequestCreated,
		Title: "New job offer",
		Body:  job.Title,
		Data:  req,
		Refs:  map[string]string{"job_id": job.ID, "request_id": req.ID},
	})

	return job, req, nil
}

// GetJob looks a job up by id
func (s *JobService) GetJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return job, nil
}

// ListClientJobs lists the jobs posted by clientID
func (s *JobService) ListClientJobs(ctx context.Context, clientID string) ([]*models.Job, error) {
	return s.store.ListJobsByClient(ctx, clientID)
}

// ListOpenJobs lists jobs drivers can still request
func (s *JobService) ListOpenJobs(ctx context.Context, limit, offset int) ([]*models.Job, error) {
	limit, offset = page(limit, offset)
	return s.store.ListJobsByStatus(ctx, models.JobStatusOpen, limit, offset)
}

// ListAllJobs lists every job regardless of status
func (s *JobService) ListAllJobs(ctx context.Context, limit, offset int) ([]*models.Job, error) {
	limit, offset = page(limit, offset)
	return s.store.ListAllJobs(ctx, limit, offset)
}

// UpdateJob edits an open job of clientID
func (s *JobService) UpdateJob(ctx context.Context, clientID, id string, upd models.JobUpdate) (*models.Job, error) {
	if upd.Empty() {
		return nil, invalid("body", "has no fields to update")
	}
	for field, v := range map[string]*string{
		"title":           upd.Title,
		"description":     upd.Description,
		"pickup_address":  upd.PickupAddress,
		"dropoff_address": upd.DropoffAddress,
	} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return nil, invalid(field, "must not be empty")
		}
	}
	if upd.Budget != nil && *upd.Budget <= 0 {
		return nil, invalid("budget", "must be greater than 0")
	}

	var updated *models.Job
	err := s.store.InTx(ctx, func(q Queries) error {
		job, err := q.GetJobForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if job.ClientID != clientID {
			return fmt.Errorf("%w: not the job owner", ErrForbidden)
		}
		if job.Status != models.JobStatusOpen {
			return fmt.Errorf("%w: job is %s", ErrConflict, job.Status)
		}
		updated, err = q.UpdateJob(ctx, id, upd)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}

	log.Info().Str("job_id", id).Str("client_id", clientID).Msg("Job updated")
	return updated, nil
}

// DeleteJob deletes a job of clientID. A job bound to a live active job
// cannot be deleted.
func (s *JobService) DeleteJob(ctx context.Context, clientID, id string) error {
	err := s.store.InTx(ctx, func(q Queries) error {
		job, err := q.GetJobForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if job.ClientID != clientID {
			return fmt.Errorf("%w: not the job owner", ErrForbidden)
		}
		if job.Status == models.JobStatusAssigned || job.Status == models.JobStatusCompleted {
			return fmt.Errorf("%w: job is %s", ErrConflict, job.Status)
		}
		return q.DeleteJob(ctx, id)
	})
	if err != nil {
		return storeErr(err)
	}

	log.Info().Str("job_id", id).Str("client_id", clientID).Msg("Job deleted")
	return nil
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

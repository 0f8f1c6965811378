package services

import (
	"context"
	"fmt"
	"time"

	"ship-swift-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestService is the request ledger: driver interest in jobs and the
// single approval that turns a job into an active job
type RequestService struct {
	store    Store
	roles    *RoleService
	notifier Notifier
}

// NewRequestService creates a new request service
func NewRequestService(store Store, roles *RoleService, notifier Notifier) *RequestService {
	return &RequestService{
		store:    store,
		roles:    roles,
		notifier: notifierOrNop(notifier),
	}
}

// CreateRequest registers driverID's interest in an open job
func (s *RequestService) CreateRequest(ctx context.Context, driverID, jobID string, offerAmount *float64) (*models.JobRequest, error) {
	if offerAmount != nil && *offerAmount <= 0 {
		return nil, invalid("offer_amount", "must be greater than 0")
	}
	if err := s.roles.require(ctx, driverID, models.RoleDriver); err != nil {
		return nil, err
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, storeErr(err)
	}
	if job.ClientID == driverID {
		return nil, fmt.Errorf("%w: cannot request your own job", ErrForbidden)
	}
	if job.Status != models.JobStatusOpen {
		return nil, fmt.Errorf("%w: job is %s", ErrConflict, job.Status)
	}

	now := time.Now()
	req := &models.JobRequest{
		ID:          uuid.New().String(),
		JobID:       jobID,
		DriverID:    driverID,
		OfferAmount: offerAmount,
		Status:      models.RequestStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateJobRequest(ctx, req); err != nil {
		return nil, storeErr(err)
	}

	log.Info().Str("request_id", req.ID).Str("job_id", jobID).Str("driver_id", driverID).Msg("Job request created")

	s.notifier.Notify(ctx, job.ClientID, Notification{
		Type:  EventJobRequestCreated,
		Title: "New request",
		Body:  fmt.Sprintf("A driver wants to deliver %q", job.Title),
		Data:  req,
		Refs:  map[string]string{"job_id": jobID, "request_id": req.ID},
	})

	return req, nil
}

// ListJobRequests lists the requests of a job owned by clientID
func (s *RequestService) ListJobRequests(ctx context.Context, clientID, jobID string) ([]*models.JobRequest, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, storeErr(err)
	}
	if job.ClientID != clientID {
		return nil, fmt.Errorf("%w: not the job owner", ErrForbidden)
	}
	return s.store.ListJobRequestsByJob(ctx, jobID)
}

// ListDriverRequests lists the requests made by driverID
func (s *RequestService) ListDriverRequests(ctx context.Context, driverID string) ([]*models.JobRequest, error) {
	return s.store.ListJobRequestsByDriver(ctx, driverID)
}

// UpdateOffer changes the offer of a pending request of driverID
func (s *RequestService) UpdateOffer(ctx context.Context, driverID, requestID string, amount float64) (*models.JobRequest, error) {
	if amount <= 0 {
		return nil, invalid("offer_amount", "must be greater than 0")
	}

	req, err := s.store.GetJobRequest(ctx, requestID)
	if err != nil {
		return nil, storeErr(err)
	}
	if req.DriverID != driverID {
		return nil, fmt.Errorf("%w: not the request owner", ErrForbidden)
	}
	if err := s.store.UpdateJobRequestOffer(ctx, requestID, amount); err != nil {
		return nil, storeErr(err)
	}

	req.OfferAmount = &amount
	req.UpdatedAt = time.Now()
	return req, nil
}

// ApproveRequest approves a request and creates its active job. The job owner
// approves regular requests; the invited driver accepts direct ones. The job
// row is locked for the whole transaction so concurrent approvals of the same
// job serialize and exactly one of them wins.
func (s *RequestService) ApproveRequest(ctx context.Context, actorID, requestID string) (*models.ActiveJob, error) {
	var (
		active   *models.ActiveJob
		rejected []*models.JobRequest
	)

	err := s.store.InTx(ctx, func(q Queries) error {
		req, err := q.GetJobRequest(ctx, requestID)
		if err != nil {
			return err
		}
		job, err := q.GetJobForUpdate(ctx, req.JobID)
		if err != nil {
			return err
		}

		if req.Direct {
			if req.DriverID != actorID {
				return fmt.Errorf("%w: only the invited driver can accept", ErrForbidden)
			}
		} else if job.ClientID != actorID {
			return fmt.Errorf("%w: not the job owner", ErrForbidden)
		}

		if req.Status != models.RequestStatusPending {
			return fmt.Errorf("%w: request is %s", ErrConflict, req.Status)
		}
		if job.Status != models.JobStatusOpen {
			return fmt.Errorf("%w: job is %s", ErrConflict, job.Status)
		}
		approved, err := q.HasApprovedRequest(ctx, job.ID)
		if err != nil {
			return err
		}
		if approved {
			return fmt.Errorf("%w: job already has an approved request", ErrConflict)
		}

		siblings, err := q.ListJobRequestsByJob(ctx, job.ID)
		if err != nil {
			return err
		}
		for _, sib := range siblings {
			if sib.ID != req.ID && sib.Status == models.RequestStatusPending {
				rejected = append(rejected, sib)
			}
		}

		if err := q.SetJobRequestStatus(ctx, req.ID, models.RequestStatusApproved); err != nil {
			return err
		}
		if _, err := q.RejectOtherRequests(ctx, job.ID, req.ID); err != nil {
			return err
		}

		now := time.Now()
		active = &models.ActiveJob{
			ID:        uuid.New().String(),
			JobID:     job.ID,
			RequestID: req.ID,
			DriverID:  req.DriverID,
			ClientID:  job.ClientID,
			JobStatus: models.ActiveJobOngoing,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := q.CreateActiveJob(ctx, active); err != nil {
			return err
		}
		if err := q.SetJobStatus(ctx, job.ID, []models.JobStatus{models.JobStatusOpen}, models.JobStatusAssigned); err != nil {
			return err
		}
		_, err = q.EnsureContact(ctx, &models.Contact{
			ID:        uuid.New().String(),
			ClientID:  job.ClientID,
			DriverID:  req.DriverID,
			CreatedAt: now,
		})
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}

	log.Info().
		Str("request_id", requestID).
		Str("job_id", active.JobID).
		Str("active_job_id", active.ID).
		Str("driver_id", active.DriverID).
		Int("rejected", len(rejected)).
		Msg("Job request approved")

	refs := map[string]string{"job_id": active.JobID, "active_job_id": active.ID}
	s.notifier.Notify(ctx, active.DriverID, Notification{
		Type:  EventJobRequestApproved,
		Title: "Request approved",
		Body:  "Your request was approved, the job is yours",
		Data:  active,
		Refs:  refs,
	})
	if actorID == active.DriverID {
		s.notifier.Notify(ctx, active.ClientID, Notification{
			Type:  EventJobRequestApproved,
			Title: "Offer accepted",
			Body:  "The driver accepted your job",
			Data:  active,
			Refs:  refs,
		})
	}
	for _, r := range rejected {
		s.notifier.Notify(ctx, r.DriverID, Notification{
			Type:  EventJobRequestRejected,
			Title: "Request declined",
			Body:  "Another driver was chosen for this job",
			Data:  r,
			Refs:  map[string]string{"job_id": r.JobID, "request_id": r.ID},
		})
	}

	return active, nil
}

// RejectRequest declines a pending request. The job owner declines any
// request; the invited driver may decline a direct one.
func (s *RequestService) RejectRequest(ctx context.Context, actorID, requestID string) (*models.JobRequest, error) {
	req, err := s.store.GetJobRequest(ctx, requestID)
	if err != nil {
		return nil, storeErr(err)
	}
	job, err := s.store.GetJob(ctx, req.JobID)
	if err != nil {
		return nil, storeErr(err)
	}

	allowed := job.ClientID == actorID || (req.Direct && req.DriverID == actorID)
	if !allowed {
		return nil, fmt.Errorf("%w: not the job owner", ErrForbidden)
	}
	if err := s.store.SetJobRequestStatus(ctx, requestID, models.RequestStatusRejected); err != nil {
		return nil, storeErr(err)
	}

	req.Status = models.RequestStatusRejected
	req.UpdatedAt = time.Now()

	log.Info().Str("request_id", requestID).Str("job_id", req.JobID).Msg("Job request rejected")

	notifyID := req.DriverID
	if actorID == req.DriverID {
		notifyID = job.ClientID
	}
	s.notifier.Notify(ctx, notifyID, Notification{
		Type:  EventJobRequestRejected,
		Title: "Request declined",
		Body:  job.Title,
		Data:  req,
		Refs:  map[string]string{"job_id": req.JobID, "request_id": req.ID},
	})

	return req, nil
}

// WithdrawRequest deletes an undecided request of driverID
func (s *RequestService) WithdrawRequest(ctx context.Context, driverID, requestID string) error {
	req, err := s.store.GetJobRequest(ctx, requestID)
	if err != nil {
		return storeErr(err)
	}
	if req.DriverID != driverID {
		return fmt.Errorf("%w: not the request owner", ErrForbidden)
	}
	if err := s.store.DeleteJobRequest(ctx, requestID); err != nil {
		return storeErr(err)
	}

	log.Info().Str("request_id", requestID).Str("driver_id", driverID).Msg("Job request withdrawn")
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ActiveJobService tracks the delivery progress of approved jobs
type ActiveJobService struct {
	store    Store
	notifier Notifier
}

// NewActiveJobService creates a new active job service
func NewActiveJobService(store Store, notifier Notifier) *ActiveJobService {
	return &ActiveJobService{
		store:    store,
		notifier: notifierOrNop(notifier),
	}
}

// MarkDeliveredInput carries the proof of delivery
type MarkDeliveredInput struct {
	LocationID         *string `json:"location_id,omitempty"`
	ProofOfDeliveryURL string  `json:"proof_of_delivery_url"`
}

// GetActiveJob returns an active job to one of its parties
func (s *ActiveJobService) GetActiveJob(ctx context.Context, userID, id string) (*models.ActiveJob, error) {
	aj, err := s.store.GetActiveJob(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !aj.HasParty(userID) {
		return nil, fmt.Errorf("%w: not a party of the job", ErrForbidden)
	}
	return aj, nil
}

// ListDriverActiveJobs lists the active jobs assigned to driverID
func (s *ActiveJobService) ListDriverActiveJobs(ctx context.Context, driverID string) ([]*models.ActiveJob, error) {
	return s.store.ListActiveJobsByDriver(ctx, driverID)
}

// ListClientActiveJobs lists the active jobs of jobs posted by clientID
func (s *ActiveJobService) ListClientActiveJobs(ctx context.Context, clientID string) ([]*models.ActiveJob, error) {
	return s.store.ListActiveJobsByClient(ctx, clientID)
}

// MarkCollected records that the driver picked the parcel up
func (s *ActiveJobService) MarkCollected(ctx context.Context, driverID, id string) (*models.ActiveJob, error) {
	aj, err := s.store.GetActiveJob(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if aj.DriverID != driverID {
		return nil, fmt.Errorf("%w: not the assigned driver", ErrForbidden)
	}

	if err := s.transition(ctx, s.store, aj, models.ActiveJobCollected); err != nil {
		return nil, err
	}

	s.notifyUpdate(ctx, aj.ClientID, aj, "Parcel collected")
	return aj, nil
}

// MarkDelivered records the drop-off. The status change and the delivery
// record with the driver's confirmation commit together.
func (s *ActiveJobService) MarkDelivered(ctx context.Context, driverID, id string, in MarkDeliveredInput) (*models.DeliveredJob, error) {
	in.ProofOfDeliveryURL = strings.TrimSpace(in.ProofOfDeliveryURL)
	if in.ProofOfDeliveryURL == "" {
		return nil, invalid("proof_of_delivery_url", "is required")
	}
	if u, err := url.Parse(in.ProofOfDeliveryURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalid("proof_of_delivery_url", "must be an http(s) URL")
	}

	var (
		aj        *models.ActiveJob
		delivered *models.DeliveredJob
	)
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		aj, err = q.GetActiveJob(ctx, id)
		if err != nil {
			return err
		}
		if aj.DriverID != driverID {
			return fmt.Errorf("%w: not the assigned driver", ErrForbidden)
		}
		if in.LocationID != nil {
			if _, err := q.GetLocation(ctx, *in.LocationID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return invalid("location_id", "does not exist")
				}
				return err
			}
		}
		if err := s.transition(ctx, q, aj, models.ActiveJobDelivered); err != nil {
			return err
		}

		now := time.Now()
		delivered = &models.DeliveredJob{
			ID:                 uuid.New().String(),
			ActiveJobID:        aj.ID,
			LocationID:         in.LocationID,
			ProofOfDeliveryURL: in.ProofOfDeliveryURL,
			IsDriverConfirmed:  true,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return q.CreateDeliveredJob(ctx, delivered)
	})
	if err != nil {
		return nil, storeErr(err)
	}

	log.Info().Str("active_job_id", id).Str("delivered_job_id", delivered.ID).Msg("Delivery recorded")

	s.notifyUpdate(ctx, aj.ClientID, aj, "Parcel delivered, please confirm receipt")
	return delivered, nil
}

// Cancel cancels an active job that has not been collected yet. Either party
// may cancel; the job is cancelled with it.
func (s *ActiveJobService) Cancel(ctx context.Context, userID, id string) (*models.ActiveJob, error) {
	var aj *models.ActiveJob
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		aj, err = q.GetActiveJob(ctx, id)
		if err != nil {
			return err
		}
		if !aj.HasParty(userID) {
			return fmt.Errorf("%w: not a party of the job", ErrForbidden)
		}
		if err := s.transition(ctx, q, aj, models.ActiveJobCancelled); err != nil {
			return err
		}
		return q.SetJobStatus(ctx, aj.JobID, []models.JobStatus{models.JobStatusAssigned}, models.JobStatusCancelled)
	})
	if err != nil {
		return nil, storeErr(err)
	}

	other := aj.ClientID
	if userID == aj.ClientID {
		other = aj.DriverID
	}
	s.notifyUpdate(ctx, other, aj, "Job cancelled")
	return aj, nil
}

// transition moves aj to the next status with a conditional update, so a
// concurrent writer cannot skip or repeat a step
func (s *ActiveJobService) transition(ctx context.Context, q ActiveJobQueries, aj *models.ActiveJob, to models.ActiveJobStatus) error {
	from := aj.JobStatus
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if err := q.UpdateActiveJobStatus(ctx, aj.ID, from, to); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		return err
	}

	aj.JobStatus = to
	aj.UpdatedAt = time.Now()

	log.Info().
		Str("active_job_id", aj.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Active job status changed")

	return nil
}

func (s *ActiveJobService) notifyUpdate(ctx context.Context, userID string, aj *models.ActiveJob, body string) {
	s.notifier.Notify(ctx, userID, Notification{
		Type:  EventActiveJobUpdated,
		Title: "Delivery update",
		Body:  body,
		Data:  aj,
		Refs:  map[string]string{"active_job_id": aj.ID, "job_id": aj.JobID, "status": string(aj.JobStatus)},
	})
}

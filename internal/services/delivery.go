package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// DeliveryService holds the delivery confirmations that gate payment release
type DeliveryService struct {
	store    Store
	notifier Notifier
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(store Store, notifier Notifier) *DeliveryService {
	return &DeliveryService{
		store:    store,
		notifier: notifierOrNop(notifier),
	}
}

// GetDelivery returns a delivery record to one of the parties of its job
func (s *DeliveryService) GetDelivery(ctx context.Context, userID, id string) (*models.DeliveredJob, error) {
	d, err := s.store.GetDeliveredJob(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if _, err := s.party(ctx, s.store, userID, d.ActiveJobID); err != nil {
		return nil, storeErr(err)
	}
	return d, nil
}

// GetDeliveryByActiveJob returns the delivery record of an active job
func (s *DeliveryService) GetDeliveryByActiveJob(ctx context.Context, userID, activeJobID string) (*models.DeliveredJob, error) {
	if _, err := s.party(ctx, s.store, userID, activeJobID); err != nil {
		return nil, storeErr(err)
	}
	d, err := s.store.GetDeliveredJobByActiveJob(ctx, activeJobID)
	if err != nil {
		return nil, storeErr(err)
	}
	return d, nil
}

// ConfirmClientDelivery records the client's confirmation of receipt. It can
// be given once.
func (s *DeliveryService) ConfirmClientDelivery(ctx context.Context, clientID, id string) (*models.DeliveredJob, error) {
	d, err := s.store.GetDeliveredJob(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	aj, err := s.party(ctx, s.store, clientID, d.ActiveJobID)
	if err != nil {
		return nil, storeErr(err)
	}
	if aj.ClientID != clientID {
		return nil, fmt.Errorf("%w: only the client can confirm receipt", ErrForbidden)
	}

	if err := s.store.ConfirmClientDelivery(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: delivery already confirmed", ErrConflict)
		}
		return nil, storeErr(err)
	}

	d.IsClientConfirmed = true
	d.UpdatedAt = time.Now()

	log.Info().Str("delivered_job_id", id).Str("client_id", clientID).Msg("Delivery confirmed by client")

	s.notifier.Notify(ctx, aj.DriverID, Notification{
		Type:  EventDeliveryConfirmed,
		Title: "Delivery confirmed",
		Body:  "The client confirmed receipt",
		Data:  d,
		Refs:  map[string]string{"delivered_job_id": d.ID, "active_job_id": aj.ID},
	})

	return d, nil
}

// ReleasePayment releases payment for a delivery. The confirmation flags and
// the job's payment status are re-read inside the transaction.
func (s *DeliveryService) ReleasePayment(ctx context.Context, clientID, id string) (*models.DeliveredJob, error) {
	var (
		d  *models.DeliveredJob
		aj *models.ActiveJob
	)
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		d, err = q.GetDeliveredJob(ctx, id)
		if err != nil {
			return err
		}
		aj, err = s.party(ctx, q, clientID, d.ActiveJobID)
		if err != nil {
			return err
		}
		if aj.ClientID != clientID {
			return fmt.Errorf("%w: only the client can release payment", ErrForbidden)
		}

		if d.PaymentReleasedAt != nil {
			return fmt.Errorf("%w: payment already released", ErrConflict)
		}
		if !d.ReadyForRelease() {
			return ErrNotConfirmed
		}
		job, err := q.GetJob(ctx, aj.JobID)
		if err != nil {
			return err
		}
		if job.PaymentStatus != models.PaymentStatusPaid {
			return ErrNotPaid
		}

		now := time.Now()
		if err := q.MarkPaymentReleased(ctx, id, now); err != nil {
			return err
		}
		d.PaymentReleasedAt = &now
		d.UpdatedAt = now

		return q.SetJobStatus(ctx, aj.JobID, []models.JobStatus{models.JobStatusAssigned}, models.JobStatusCompleted)
	})
	if err != nil {
		return nil, storeErr(err)
	}

	log.Info().
		Str("delivered_job_id", id).
		Str("job_id", aj.JobID).
		Str("driver_id", aj.DriverID).
		Msg("Payment released")

	s.notifier.Notify(ctx, aj.DriverID, Notification{
		Type:  EventPaymentReleased,
		Title: "Payment released",
		Body:  "Payment for your delivery was released",
		Data:  d,
		Refs:  map[string]string{"delivered_job_id": d.ID, "job_id": aj.JobID},
	})

	return d, nil
}

// party loads the active job and checks that userID belongs to it
func (s *DeliveryService) party(ctx context.Context, q ActiveJobQueries, userID, activeJobID string) (*models.ActiveJob, error) {
	aj, err := q.GetActiveJob(ctx, activeJobID)
	if err != nil {
		return nil, err
	}
	if !aj.HasParty(userID) {
		return nil, fmt.Errorf("%w: not a party of the job", ErrForbidden)
	}
	return aj, nil
}

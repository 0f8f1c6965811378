package services

import (
	"context"
	"time"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/repository"
)

// JobQueries is the persistence surface for jobs
type JobQueries interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	GetJobForUpdate(ctx context.Context, id string) (*models.Job, error)
	ListJobsByClient(ctx context.Context, clientID string) ([]*models.Job, error)
	ListJobsByStatus(ctx context.Context, status models.JobStatus, limit, offset int) ([]*models.Job, error)
	ListAllJobs(ctx context.Context, limit, offset int) ([]*models.Job, error)
	UpdateJob(ctx context.Context, id string, upd models.JobUpdate) (*models.Job, error)
	SetJobStatus(ctx context.Context, id string, from []models.JobStatus, to models.JobStatus) error
	MarkJobPaid(ctx context.Context, id string) (bool, error)
	DeleteJob(ctx context.Context, id string) error
}

// RequestQueries is the persistence surface for job requests
type RequestQueries interface {
	CreateJobRequest(ctx context.Context, req *models.JobRequest) error
	GetJobRequest(ctx context.Context, id string) (*models.JobRequest, error)
	ListJobRequestsByJob(ctx context.Context, jobID string) ([]*models.JobRequest, error)
	ListJobRequestsByDriver(ctx context.Context, driverID string) ([]*models.JobRequest, error)
	HasApprovedRequest(ctx context.Context, jobID string) (bool, error)
	UpdateJobRequestOffer(ctx context.Context, id string, amount float64) error
	SetJobRequestStatus(ctx context.Context, id string, status models.RequestStatus) error
	RejectOtherRequests(ctx context.Context, jobID, keepID string) (int64, error)
	DeleteJobRequest(ctx context.Context, id string) error
}

// ActiveJobQueries is the persistence surface for active jobs
type ActiveJobQueries interface {
	CreateActiveJob(ctx context.Context, aj *models.ActiveJob) error
	GetActiveJob(ctx context.Context, id string) (*models.ActiveJob, error)
	GetActiveJobByJob(ctx context.Context, jobID string) (*models.ActiveJob, error)
	ListActiveJobsByDriver(ctx context.Context, driverID string) ([]*models.ActiveJob, error)
	ListActiveJobsByClient(ctx context.Context, clientID string) ([]*models.ActiveJob, error)
	UpdateActiveJobStatus(ctx context.Context, id string, from, to models.ActiveJobStatus) error
}

// DeliveryQueries is the persistence surface for delivery confirmations
type DeliveryQueries interface {
	CreateDeliveredJob(ctx context.Context, d *models.DeliveredJob) error
	GetDeliveredJob(ctx context.Context, id string) (*models.DeliveredJob, error)
	GetDeliveredJobByActiveJob(ctx context.Context, activeJobID string) (*models.DeliveredJob, error)
	ConfirmClientDelivery(ctx context.Context, id string) error
	MarkPaymentReleased(ctx context.Context, id string, at time.Time) error
}

// RoleQueries is the persistence surface for user roles
type RoleQueries interface {
	UpsertUserRole(ctx context.Context, userID string, upd models.RoleUpdate) (*models.UserRole, error)
	GetUserRole(ctx context.Context, userID string) (*models.UserRole, error)
	DeleteUserRole(ctx context.Context, userID string) error
}

// ContactQueries is the persistence surface for contacts and messages
type ContactQueries interface {
	EnsureContact(ctx context.Context, c *models.Contact) (*models.Contact, error)
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	ListContactsByUser(ctx context.Context, userID string) ([]*models.Contact, error)
	CreateMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, contactID string, limit int, before time.Time) ([]*models.Message, error)
}

// LocationQueries is the persistence surface for saved locations
type LocationQueries interface {
	CreateLocation(ctx context.Context, l *models.Location) error
	GetLocation(ctx context.Context, id string) (*models.Location, error)
	ListLocationsByUser(ctx context.Context, userID string) ([]*models.Location, error)
	DeleteLocation(ctx context.Context, id string) error
}

// ReviewQueries is the persistence surface for reviews
type ReviewQueries interface {
	CreateReview(ctx context.Context, rv *models.Review) error
	GetReview(ctx context.Context, id string) (*models.Review, error)
	ListReviewsByTarget(ctx context.Context, targetID string, role models.Role) ([]*models.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// PushTokenQueries is the persistence surface for device tokens
type PushTokenQueries interface {
	UpsertPushToken(ctx context.Context, t *models.PushToken) error
	ListPushTokensByUser(ctx context.Context, userID string) ([]*models.PushToken, error)
	DeletePushToken(ctx context.Context, userID, token string) error
}

// Queries is everything the services read and write
type Queries interface {
	JobQueries
	RequestQueries
	ActiveJobQueries
	DeliveryQueries
	RoleQueries
	ContactQueries
	LocationQueries
	ReviewQueries
	PushTokenQueries
}

// Store adds transaction scoping to Queries. fn's writes commit together or
// not at all.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
}

// pgStore adapts repository.Store to Store
type pgStore struct {
	*repository.Store
}

// NewPostgresStore wraps the pgx-backed repository store
func NewPostgresStore(s *repository.Store) Store {
	return pgStore{Store: s}
}

func (p pgStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	return p.Store.InTx(ctx, func(q *repository.Queries) error {
		return fn(q)
	})
}

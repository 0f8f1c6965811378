// Package storetest provides an in-memory services.Store for tests. It keeps
// the uniqueness guards and conditional updates of the Postgres schema, and
// InTx serializes writers and rolls every write back when fn fails.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/repository"
	"ship-swift-backend/internal/services"
)

type tables struct {
	jobs       map[string]models.Job
	requests   map[string]models.JobRequest
	activeJobs map[string]models.ActiveJob
	delivered  map[string]models.DeliveredJob
	roles      map[string]models.UserRole
	contacts   map[string]models.Contact
	messages   map[string]models.Message
	locations  map[string]models.Location
	reviews    map[string]models.Review
	tokens     map[string]models.PushToken
}

func newTables() *tables {
	return &tables{
		jobs:       map[string]models.Job{},
		requests:   map[string]models.JobRequest{},
		activeJobs: map[string]models.ActiveJob{},
		delivered:  map[string]models.DeliveredJob{},
		roles:      map[string]models.UserRole{},
		contacts:   map[string]models.Contact{},
		messages:   map[string]models.Message{},
		locations:  map[string]models.Location{},
		reviews:    map[string]models.Review{},
		tokens:     map[string]models.PushToken{},
	}
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t *tables) clone() *tables {
	return &tables{
		jobs:       copyMap(t.jobs),
		requests:   copyMap(t.requests),
		activeJobs: copyMap(t.activeJobs),
		delivered:  copyMap(t.delivered),
		roles:      copyMap(t.roles),
		contacts:   copyMap(t.contacts),
		messages:   copyMap(t.messages),
		locations:  copyMap(t.locations),
		reviews:    copyMap(t.reviews),
		tokens:     copyMap(t.tokens),
	}
}

type shared struct {
	txMu sync.Mutex
	mu   sync.Mutex
	t    *tables
	fail map[string]error
}

// Store is an in-memory services.Store. Writes made outside InTx wait for
// the running transaction, so a rollback only ever discards its own writes.
type Store struct {
	*shared
	inTx bool
}

var _ services.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{shared: &shared{t: newTables(), fail: map[string]error{}}}
}

// FailOn makes the named method return err until cleared with a nil err
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, method)
		return
	}
	s.fail[method] = err
}

func (s *Store) injected(method string) error {
	return s.fail[method]
}

// InTx runs fn against the store. Transactions run one at a time; when fn
// returns an error every write it made is discarded.
func (s *Store) InTx(ctx context.Context, fn func(q services.Queries) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.t.clone()
	s.mu.Unlock()

	if err := fn(&Store{shared: s.shared, inTx: true}); err != nil {
		s.mu.Lock()
		s.t = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lockWrite locks the tables for a write and returns the unlock. Outside a
// transaction it also waits for the running one to finish.
func (s *Store) lockWrite() func() {
	if !s.inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.inTx {
			s.txMu.Unlock()
		}
	}
}

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, repository.ErrNotFound)
}

func conflict(reason string) error {
	return fmt.Errorf("%s: %w", reason, repository.ErrConflict)
}

func byCreatedDesc[T any](items []*T, at func(*T) time.Time) []*T {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).After(at(items[j])) })
	return items
}

func window[T any](items []*T, limit, offset int) []*T {
	if offset >= len(items) {
		return []*T{}
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Jobs

func (s *Store) CreateJob(ctx context.Context, job *models.Job) error {
	defer s.lockWrite()()
	if err := s.injected("CreateJob"); err != nil {
		return err
	}
	if _, ok := s.t.jobs[job.ID]; ok {
		return conflict("job already exists")
	}
	s.t.jobs[job.ID] = *job
	return nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("GetJob"); err != nil {
		return nil, err
	}
	job, ok := s.t.jobs[id]
	if !ok {
		return nil, notFound("job")
	}
	return &job, nil
}

func (s *Store) GetJobForUpdate(ctx context.Context, id string) (*models.Job, error) {
	return s.GetJob(ctx, id)
}

func (s *Store) listJobs(keep func(models.Job) bool) []*models.Job {
	jobs := []*models.Job{}
	for _, j := range s.t.jobs {
		if keep(j) {
			j := j
			jobs = append(jobs, &j)
		}
	}
	return byCreatedDesc(jobs, func(j *models.Job) time.Time { return j.CreatedAt })
}

func (s *Store) ListJobsByClient(ctx context.Context, clientID string) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listJobs(func(j models.Job) bool { return j.ClientID == clientID }), nil
}

func (s *Store) ListJobsByStatus(ctx context.Context, status models.JobStatus, limit, offset int) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return window(s.listJobs(func(j models.Job) bool { return j.Status == status }), limit, offset), nil
}

func (s *Store) ListAllJobs(ctx context.Context, limit, offset int) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return window(s.listJobs(func(models.Job) bool { return true }), limit, offset), nil
}

func (s *Store) UpdateJob(ctx context.Context, id string, upd models.JobUpdate) (*models.Job, error) {
	defer s.lockWrite()()
	if err := s.injected("UpdateJob"); err != nil {
		return nil, err
	}
	job, ok := s.t.jobs[id]
	if !ok {
		return nil, notFound("job")
	}
	if upd.Title != nil {
		job.Title = *upd.Title
	}
	if upd.Description != nil {
		job.Description = *upd.Description
	}
	if upd.Budget != nil {
		job.Budget = *upd.Budget
	}
	if upd.PickupAddress != nil {
		job.PickupAddress = *upd.PickupAddress
	}
	if upd.DropoffAddress != nil {
		job.DropoffAddress = *upd.DropoffAddress
	}
	job.UpdatedAt = time.Now()
	s.t.jobs[id] = job
	return &job, nil
}

func (s *Store) SetJobStatus(ctx context.Context, id string, from []models.JobStatus, to models.JobStatus) error {
	defer s.lockWrite()()
	if err := s.injected("SetJobStatus"); err != nil {
		return err
	}
	job, ok := s.t.jobs[id]
	if !ok {
		return notFound("job")
	}
	for _, f := range from {
		if job.Status == f {
			job.Status = to
			job.UpdatedAt = time.Now()
			s.t.jobs[id] = job
			return nil
		}
	}
	return conflict("job status changed")
}

func (s *Store) MarkJobPaid(ctx context.Context, id string) (bool, error) {
	defer s.lockWrite()()
	job, ok := s.t.jobs[id]
	if !ok {
		return false, notFound("job")
	}
	if job.PaymentStatus == models.PaymentStatusPaid {
		return false, nil
	}
	job.PaymentStatus = models.PaymentStatusPaid
	job.UpdatedAt = time.Now()
	s.t.jobs[id] = job
	return true, nil
}

// DeleteJob cascades to requests, active jobs and delivery records
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	defer s.lockWrite()()
	if _, ok := s.t.jobs[id]; !ok {
		return notFound("job")
	}
	delete(s.t.jobs, id)
	for rid, r := range s.t.requests {
		if r.JobID == id {
			delete(s.t.requests, rid)
		}
	}
	for aid, aj := range s.t.activeJobs {
		if aj.JobID != id {
			continue
		}
		delete(s.t.activeJobs, aid)
		for did, d := range s.t.delivered {
			if d.ActiveJobID == aid {
				delete(s.t.delivered, did)
			}
		}
	}
	return nil
}

// Job requests

func (s *Store) CreateJobRequest(ctx context.Context, req *models.JobRequest) error {
	defer s.lockWrite()()
	if err := s.injected("CreateJobRequest"); err != nil {
		return err
	}
	for _, r := range s.t.requests {
		if r.JobID == req.JobID && r.DriverID == req.DriverID {
			return conflict("job request already exists")
		}
	}
	s.t.requests[req.ID] = *req
	return nil
}

func (s *Store) GetJobRequest(ctx context.Context, id string) (*models.JobRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.t.requests[id]
	if !ok {
		return nil, notFound("job request")
	}
	return &r, nil
}

func (s *Store) listRequests(keep func(models.JobRequest) bool) []*models.JobRequest {
	out := []*models.JobRequest{}
	for _, r := range s.t.requests {
		if keep(r) {
			r := r
			out = append(out, &r)
		}
	}
	return byCreatedDesc(out, func(r *models.JobRequest) time.Time { return r.CreatedAt })
}

func (s *Store) ListJobRequestsByJob(ctx context.Context, jobID string) ([]*models.JobRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.listRequests(func(r models.JobRequest) bool { return r.JobID == jobID })
	// oldest first, as in the SQL query
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *Store) ListJobRequestsByDriver(ctx context.Context, driverID string) ([]*models.JobRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listRequests(func(r models.JobRequest) bool { return r.DriverID == driverID }), nil
}

func (s *Store) HasApprovedRequest(ctx context.Context, jobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.t.requests {
		if r.JobID == jobID && r.IsApproved {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UpdateJobRequestOffer(ctx context.Context, id string, amount float64) error {
	defer s.lockWrite()()
	r, ok := s.t.requests[id]
	if !ok {
		return notFound("job request")
	}
	if r.Status != models.RequestStatusPending {
		return conflict("job request already decided")
	}
	r.OfferAmount = &amount
	r.UpdatedAt = time.Now()
	s.t.requests[id] = r
	return nil
}

func (s *Store) SetJobRequestStatus(ctx context.Context, id string, status models.RequestStatus) error {
	defer s.lockWrite()()
	if err := s.injected("SetJobRequestStatus"); err != nil {
		return err
	}
	r, ok := s.t.requests[id]
	if !ok {
		return notFound("job request")
	}
	if r.Status != models.RequestStatusPending {
		return conflict("job request already decided")
	}
	approve := status == models.RequestStatusApproved
	if approve {
		for _, other := range s.t.requests {
			if other.JobID == r.JobID && other.IsApproved {
				return conflict("job already has an approved request")
			}
		}
	}
	r.Status = status
	r.IsApproved = approve
	r.UpdatedAt = time.Now()
	s.t.requests[id] = r
	return nil
}

func (s *Store) RejectOtherRequests(ctx context.Context, jobID, keepID string) (int64, error) {
	defer s.lockWrite()()
	var n int64
	for id, r := range s.t.requests {
		if r.JobID == jobID && id != keepID && r.Status == models.RequestStatusPending {
			r.Status = models.RequestStatusRejected
			r.IsApproved = false
			r.UpdatedAt = time.Now()
			s.t.requests[id] = r
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteJobRequest(ctx context.Context, id string) error {
	defer s.lockWrite()()
	r, ok := s.t.requests[id]
	if !ok {
		return notFound("job request")
	}
	if r.Status != models.RequestStatusPending {
		return conflict("job request already decided")
	}
	delete(s.t.requests, id)
	return nil
}

// Active jobs

func (s *Store) CreateActiveJob(ctx context.Context, aj *models.ActiveJob) error {
	defer s.lockWrite()()
	if err := s.injected("CreateActiveJob"); err != nil {
		return err
	}
	for _, other := range s.t.activeJobs {
		if other.JobID == aj.JobID || other.RequestID == aj.RequestID {
			return conflict("job already has an active job")
		}
	}
	s.t.activeJobs[aj.ID] = *aj
	return nil
}

func (s *Store) GetActiveJob(ctx context.Context, id string) (*models.ActiveJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	aj, ok := s.t.activeJobs[id]
	if !ok {
		return nil, notFound("active job")
	}
	return &aj, nil
}

func (s *Store) GetActiveJobByJob(ctx context.Context, jobID string) (*models.ActiveJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, aj := range s.t.activeJobs {
		if aj.JobID == jobID {
			return &aj, nil
		}
	}
	return nil, notFound("active job")
}

func (s *Store) listActiveJobs(keep func(models.ActiveJob) bool) []*models.ActiveJob {
	out := []*models.ActiveJob{}
	for _, aj := range s.t.activeJobs {
		if keep(aj) {
			aj := aj
			out = append(out, &aj)
		}
	}
	return byCreatedDesc(out, func(a *models.ActiveJob) time.Time { return a.CreatedAt })
}

func (s *Store) ListActiveJobsByDriver(ctx context.Context, driverID string) ([]*models.ActiveJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listActiveJobs(func(a models.ActiveJob) bool { return a.DriverID == driverID }), nil
}

func (s *Store) ListActiveJobsByClient(ctx context.Context, clientID string) ([]*models.ActiveJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listActiveJobs(func(a models.ActiveJob) bool { return a.ClientID == clientID }), nil
}

func (s *Store) UpdateActiveJobStatus(ctx context.Context, id string, from, to models.ActiveJobStatus) error {
	defer s.lockWrite()()
	if err := s.injected("UpdateActiveJobStatus"); err != nil {
		return err
	}
	aj, ok := s.t.activeJobs[id]
	if !ok {
		return notFound("active job")
	}
	if aj.JobStatus != from {
		return conflict("active job status changed")
	}
	aj.JobStatus = to
	aj.UpdatedAt = time.Now()
	s.t.activeJobs[id] = aj
	return nil
}

// Delivery records

func (s *Store) CreateDeliveredJob(ctx context.Context, d *models.DeliveredJob) error {
	defer s.lockWrite()()
	if err := s.injected("CreateDeliveredJob"); err != nil {
		return err
	}
	for _, other := range s.t.delivered {
		if other.ActiveJobID == d.ActiveJobID {
			return conflict("delivery already recorded")
		}
	}
	s.t.delivered[d.ID] = *d
	return nil
}

func (s *Store) GetDeliveredJob(ctx context.Context, id string) (*models.DeliveredJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.t.delivered[id]
	if !ok {
		return nil, notFound("delivered job")
	}
	return &d, nil
}

func (s *Store) GetDeliveredJobByActiveJob(ctx context.Context, activeJobID string) (*models.DeliveredJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.t.delivered {
		if d.ActiveJobID == activeJobID {
			return &d, nil
		}
	}
	return nil, notFound("delivered job")
}

func (s *Store) ConfirmClientDelivery(ctx context.Context, id string) error {
	defer s.lockWrite()()
	d, ok := s.t.delivered[id]
	if !ok {
		return notFound("delivered job")
	}
	if d.IsClientConfirmed {
		return conflict("delivery already confirmed")
	}
	d.IsClientConfirmed = true
	d.UpdatedAt = time.Now()
	s.t.delivered[id] = d
	return nil
}

func (s *Store) MarkPaymentReleased(ctx context.Context, id string, at time.Time) error {
	defer s.lockWrite()()
	if err := s.injected("MarkPaymentReleased"); err != nil {
		return err
	}
	d, ok := s.t.delivered[id]
	if !ok {
		return notFound("delivered job")
	}
	if !d.ReadyForRelease() {
		return conflict("payment not releasable")
	}
	d.PaymentReleasedAt = &at
	d.UpdatedAt = at
	s.t.delivered[id] = d
	return nil
}

// SetDelivered overwrites a delivery record, for tests that need a state the
// services never produce
func (s *Store) SetDelivered(d models.DeliveredJob) {
	defer s.lockWrite()()
	s.t.delivered[d.ID] = d
}

// Roles

func (s *Store) UpsertUserRole(ctx context.Context, userID string, upd models.RoleUpdate) (*models.UserRole, error) {
	defer s.lockWrite()()
	if err := s.injected("UpsertUserRole"); err != nil {
		return nil, err
	}
	role := s.t.roles[userID]
	role.UserID = userID
	if upd.Driver != nil {
		role.Driver = *upd.Driver
	}
	if upd.Client != nil {
		role.Client = *upd.Client
	}
	role.UpdatedAt = time.Now()
	s.t.roles[userID] = role
	return &role, nil
}

func (s *Store) GetUserRole(ctx context.Context, userID string) (*models.UserRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.t.roles[userID]
	if !ok {
		return nil, notFound("user role")
	}
	return &role, nil
}

func (s *Store) DeleteUserRole(ctx context.Context, userID string) error {
	defer s.lockWrite()()
	if _, ok := s.t.roles[userID]; !ok {
		return notFound("user role")
	}
	delete(s.t.roles, userID)
	return nil
}

// Contacts and messages

func (s *Store) EnsureContact(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	defer s.lockWrite()()
	if err := s.injected("EnsureContact"); err != nil {
		return nil, err
	}
	for _, existing := range s.t.contacts {
		if existing.ClientID == c.ClientID && existing.DriverID == c.DriverID {
			return &existing, nil
		}
	}
	s.t.contacts[c.ID] = *c
	stored := *c
	return &stored, nil
}

func (s *Store) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.t.contacts[id]
	if !ok {
		return nil, notFound("contact")
	}
	return &c, nil
}

func (s *Store) ListContactsByUser(ctx context.Context, userID string) ([]*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Contact{}
	for _, c := range s.t.contacts {
		if c.HasParty(userID) {
			c := c
			out = append(out, &c)
		}
	}
	return byCreatedDesc(out, func(c *models.Contact) time.Time { return c.CreatedAt }), nil
}

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	defer s.lockWrite()()
	if err := s.injected("CreateMessage"); err != nil {
		return err
	}
	s.t.messages[m.ID] = *m
	return nil
}

func (s *Store) ListMessages(ctx context.Context, contactID string, limit int, before time.Time) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Message{}
	for _, m := range s.t.messages {
		if m.ContactID == contactID && m.CreatedAt.Before(before) {
			m := m
			out = append(out, &m)
		}
	}
	return window(byCreatedDesc(out, func(m *models.Message) time.Time { return m.CreatedAt }), limit, 0), nil
}

// Locations

func (s *Store) CreateLocation(ctx context.Context, l *models.Location) error {
	defer s.lockWrite()()
	s.t.locations[l.ID] = *l
	return nil
}

func (s *Store) GetLocation(ctx context.Context, id string) (*models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.t.locations[id]
	if !ok {
		return nil, notFound("location")
	}
	return &l, nil
}

func (s *Store) ListLocationsByUser(ctx context.Context, userID string) ([]*models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Location{}
	for _, l := range s.t.locations {
		if l.UserID == userID {
			l := l
			out = append(out, &l)
		}
	}
	return byCreatedDesc(out, func(l *models.Location) time.Time { return l.CreatedAt }), nil
}

// DeleteLocation clears the reference from delivery records
func (s *Store) DeleteLocation(ctx context.Context, id string) error {
	defer s.lockWrite()()
	if _, ok := s.t.locations[id]; !ok {
		return notFound("location")
	}
	delete(s.t.locations, id)
	for did, d := range s.t.delivered {
		if d.LocationID != nil && *d.LocationID == id {
			d.LocationID = nil
			s.t.delivered[did] = d
		}
	}
	return nil
}

// Reviews

func (s *Store) CreateReview(ctx context.Context, rv *models.Review) error {
	defer s.lockWrite()()
	if rv.ActiveJobID != nil {
		for _, other := range s.t.reviews {
			if other.AuthorID == rv.AuthorID && other.ActiveJobID != nil && *other.ActiveJobID == *rv.ActiveJobID {
				return conflict("review already exists")
			}
		}
	}
	s.t.reviews[rv.ID] = *rv
	return nil
}

func (s *Store) GetReview(ctx context.Context, id string) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rv, ok := s.t.reviews[id]
	if !ok {
		return nil, notFound("review")
	}
	return &rv, nil
}

func (s *Store) ListReviewsByTarget(ctx context.Context, targetID string, role models.Role) ([]*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Review{}
	for _, rv := range s.t.reviews {
		if rv.TargetID == targetID && rv.TargetRole == role {
			rv := rv
			out = append(out, &rv)
		}
	}
	return byCreatedDesc(out, func(r *models.Review) time.Time { return r.CreatedAt }), nil
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	defer s.lockWrite()()
	if _, ok := s.t.reviews[id]; !ok {
		return notFound("review")
	}
	delete(s.t.reviews, id)
	return nil
}

// Push tokens

func (s *Store) UpsertPushToken(ctx context.Context, t *models.PushToken) error {
	defer s.lockWrite()()
	s.t.tokens[t.Token] = *t
	return nil
}

func (s *Store) ListPushTokensByUser(ctx context.Context, userID string) ([]*models.PushToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.PushToken{}
	for _, t := range s.t.tokens {
		if t.UserID == userID {
			t := t
			out = append(out, &t)
		}
	}
	return byCreatedDesc(out, func(t *models.PushToken) time.Time { return t.CreatedAt }), nil
}

func (s *Store) DeletePushToken(ctx context.Context, userID, token string) error {
	defer s.lockWrite()()
	t, ok := s.t.tokens[token]
	if !ok || t.UserID != userID {
		return notFound("push token")
	}
	delete(s.t.tokens, token)
	return nil
}

// Counts

// ActiveJobCount returns the number of active jobs of a job
func (s *Store) ActiveJobCount(jobID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, aj := range s.t.activeJobs {
		if aj.JobID == jobID {
			n++
		}
	}
	return n
}

// ApprovedCount returns the number of approved requests of a job
func (s *Store) ApprovedCount(jobID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.t.requests {
		if r.JobID == jobID && r.IsApproved {
			n++
		}
	}
	return n
}

// JobCount returns the number of stored jobs
func (s *Store) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.t.jobs)
}

// ContactCount returns the number of stored contacts
func (s *Store) ContactCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.t.contacts)
}

// RequestCount returns the number of stored requests
func (s *Store) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.t.requests)
}

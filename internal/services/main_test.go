package services_test

import (
	"context"
	"sync"
	"testing"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"
	"ship-swift-backend/internal/storetest"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// keep-alive connections of http.Client outlive httptest servers briefly
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		// started by an init in the Firebase client's dependencies
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

type sent struct {
	userID string
	n      services.Notification
}

// recorder is a Notifier that keeps every notification
type recorder struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recorder) Notify(_ context.Context, userID string, n services.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{userID: userID, n: n})
}

func (r *recorder) to(userID, typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, s := range r.sent {
		if s.userID == userID && s.n.Type == typ {
			count++
		}
	}
	return count
}

type env struct {
	store      *storetest.Store
	notes      *recorder
	roles      *services.RoleService
	jobs       *services.JobService
	requests   *services.RequestService
	activeJobs *services.ActiveJobService
	deliveries *services.DeliveryService
	chat       *services.ChatService
	reviews    *services.ReviewService
}

const (
	clientID = "client-1"
	driverID = "driver-1"
	driver2  = "driver-2"
	adminID  = "admin-1"
)

func newEnv(t *testing.T) *env {
	t.Helper()

	store := storetest.New()
	notes := &recorder{}
	roles := services.NewRoleService(store, nil, []string{adminID})

	e := &env{
		store:      store,
		notes:      notes,
		roles:      roles,
		jobs:       services.NewJobService(store, roles, notes),
		requests:   services.NewRequestService(store, roles, notes),
		activeJobs: services.NewActiveJobService(store, notes),
		deliveries: services.NewDeliveryService(store, notes),
		chat:       services.NewChatService(store, roles, notes, nil),
		reviews:    services.NewReviewService(store, roles),
	}

	e.grant(t, clientID, models.RoleClient)
	e.grant(t, driverID, models.RoleDriver)
	e.grant(t, driver2, models.RoleDriver)
	return e
}

func (e *env) grant(t *testing.T, userID string, role models.Role) {
	t.Helper()
	yes := true
	upd := models.RoleUpdate{}
	switch role {
	case models.RoleDriver:
		upd.Driver = &yes
	case models.RoleClient:
		upd.Client = &yes
	}
	if _, err := e.roles.UpsertRole(context.Background(), userID, upd); err != nil {
		t.Fatalf("grant %s to %s: %v", role, userID, err)
	}
}

func sofa() services.CreateJobInput {
	return services.CreateJobInput{
		Title:          "Move a sofa",
		Description:    "Three seater, needs two people",
		Budget:         250,
		PickupAddress:  "1 High Street",
		DropoffAddress: "9 Low Road",
	}
}

func (e *env) openJob(t *testing.T) *models.Job {
	t.Helper()
	job, err := e.jobs.CreateJob(context.Background(), clientID, sofa())
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

// assigned returns an active job of driverID in ongoing state
func (e *env) assigned(t *testing.T) *models.ActiveJob {
	t.Helper()
	ctx := context.Background()
	job := e.openJob(t)
	req, err := e.requests.CreateRequest(ctx, driverID, job.ID, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	aj, err := e.requests.ApproveRequest(ctx, clientID, req.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	return aj
}

// delivered returns a delivery record with the driver's confirmation only
func (e *env) delivered(t *testing.T) (*models.ActiveJob, *models.DeliveredJob) {
	t.Helper()
	ctx := context.Background()
	aj := e.assigned(t)
	if _, err := e.activeJobs.MarkCollected(ctx, driverID, aj.ID); err != nil {
		t.Fatalf("collect: %v", err)
	}
	d, err := e.activeJobs.MarkDelivered(ctx, driverID, aj.ID, services.MarkDeliveredInput{
		ProofOfDeliveryURL: "https://cdn.example.com/deliveries/" + aj.ID + "/proof.jpg",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	return aj, d
}

// markPaid records a completed checkout for jobID
func (e *env) markPaid(t *testing.T, jobID string) {
	t.Helper()
	if _, err := e.store.MarkJobPaid(context.Background(), jobID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }

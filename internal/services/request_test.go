package services_test

import (
	"context"
	"errors"
	"testing"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"
)

func TestCreateRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.openJob(t)

	cases := []struct {
		name   string
		driver string
		jobID  string
		offer  *float64
		want   error
	}{
		{"zero offer", driverID, job.ID, ptr(0.0), services.ErrValidation},
		{"not a driver", "someone", job.ID, nil, services.ErrForbidden},
		{"missing job", driverID, "missing", nil, services.ErrNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := e.requests.CreateRequest(ctx, c.driver, c.jobID, c.offer); !errors.Is(err, c.want) {
				t.Fatalf("got %v want %v", err, c.want)
			}
		})
	}

	if _, err := e.requests.CreateRequest(ctx, driverID, job.ID, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.requests.CreateRequest(ctx, driverID, job.ID, nil); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("duplicate: got %v want ErrConflict", err)
	}
}

func TestCreateRequest_OwnJob(t *testing.T) {
	e := newEnv(t)
	e.grant(t, clientID, models.RoleDriver)
	job := e.openJob(t)

	if _, err := e.requests.CreateRequest(context.Background(), clientID, job.ID, nil); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("got %v want ErrForbidden", err)
	}
}

func TestCreateRequest_ClosedJob(t *testing.T) {
	e := newEnv(t)
	aj := e.assigned(t)

	if _, err := e.requests.CreateRequest(context.Background(), driver2, aj.JobID, nil); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("got %v want ErrConflict", err)
	}
}

func TestUpdateOffer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.openJob(t)
	req, _ := e.requests.CreateRequest(ctx, driverID, job.ID, ptr(200.0))

	updated, err := e.requests.UpdateOffer(ctx, driverID, req.ID, 220)
	if err != nil {
		t.Fatalf("update offer: %v", err)
	}
	if updated.OfferAmount == nil || *updated.OfferAmount != 220 {
		t.Fatalf("offer = %v", updated.OfferAmount)
	}
	if _, err := e.requests.UpdateOffer(ctx, driver2, req.ID, 100); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("other driver: got %v want ErrForbidden", err)
	}
	if _, err := e.requests.UpdateOffer(ctx, driverID, req.ID, -1); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("negative: got %v want ErrValidation", err)
	}

	if _, err := e.requests.ApproveRequest(ctx, clientID, req.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := e.requests.UpdateOffer(ctx, driverID, req.ID, 230); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("decided request: got %v want ErrConflict", err)
	}
}

func TestRejectRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.openJob(t)
	req, _ := e.requests.CreateRequest(ctx, driverID, job.ID, nil)

	if _, err := e.requests.RejectRequest(ctx, driverID, req.ID); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("driver rejecting a regular request: got %v want ErrForbidden", err)
	}

	rejected, err := e.requests.RejectRequest(ctx, clientID, req.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.RequestStatusRejected {
		t.Fatalf("status = %s", rejected.Status)
	}
	if e.notes.to(driverID, services.EventJobRequestRejected) != 1 {
		t.Fatalf("driver was not told")
	}
	if _, err := e.requests.ApproveRequest(ctx, clientID, req.ID); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("approve rejected: got %v want ErrConflict", err)
	}
}

func TestRejectRequest_DirectByDriver(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, req, err := e.jobs.CreateDirectJob(ctx, clientID, sofa(), driverID)
	if err != nil {
		t.Fatalf("create direct: %v", err)
	}

	if _, err := e.requests.RejectRequest(ctx, driverID, req.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if e.notes.to(clientID, services.EventJobRequestRejected) != 1 {
		t.Fatalf("client was not told the driver declined")
	}
}

func TestWithdrawRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.openJob(t)
	req, _ := e.requests.CreateRequest(ctx, driverID, job.ID, nil)

	if err := e.requests.WithdrawRequest(ctx, driver2, req.ID); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("other driver: got %v want ErrForbidden", err)
	}
	if err := e.requests.WithdrawRequest(ctx, driverID, req.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	mine, _ := e.requests.ListDriverRequests(ctx, driverID)
	if len(mine) != 0 {
		t.Fatalf("withdrawn request still listed")
	}
	if _, err := e.requests.ListJobRequests(ctx, driverID, job.ID); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("driver listing job requests: got %v want ErrForbidden", err)
	}
}

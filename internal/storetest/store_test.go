package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"
)

func TestInTx_RollbackKeepsOutsideWrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	abort := errors.New("abort")

	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.InTx(ctx, func(q services.Queries) error {
			if err := q.CreateJob(ctx, &models.Job{ID: "j1", Status: models.JobStatusOpen}); err != nil {
				return err
			}
			close(inside)
			<-release
			return abort
		})
	}()
	<-inside

	wrote := make(chan error, 1)
	yes := true
	go func() {
		_, err := s.UpsertUserRole(ctx, "u1", models.RoleUpdate{Driver: &yes})
		wrote <- err
	}()

	select {
	case err := <-wrote:
		t.Fatalf("write outside the transaction did not wait for it: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	close(release)

	if err := <-done; !errors.Is(err, abort) {
		t.Fatalf("InTx = %v, want abort", err)
	}
	if err := <-wrote; err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if n := s.JobCount(); n != 0 {
		t.Fatalf("rolled back job still stored (%d jobs)", n)
	}
	role, err := s.GetUserRole(ctx, "u1")
	if err != nil || !role.Driver {
		t.Fatalf("outside write lost by the rollback: %+v %v", role, err)
	}
}

func TestInTx_CommitAndReadsInside(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.InTx(ctx, func(q services.Queries) error {
		if err := q.CreateJob(ctx, &models.Job{ID: "j1", Status: models.JobStatusOpen}); err != nil {
			return err
		}
		// reads and nested transactions see the pending write
		if _, err := s.GetJob(ctx, "j1"); err != nil {
			return err
		}
		return q.(services.Store).InTx(ctx, func(inner services.Queries) error {
			return inner.SetJobStatus(ctx, "j1", []models.JobStatus{models.JobStatusOpen}, models.JobStatusAssigned)
		})
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}

	job, err := s.GetJob(ctx, "j1")
	if err != nil || job.Status != models.JobStatusAssigned {
		t.Fatalf("committed job = %+v, %v", job, err)
	}
}

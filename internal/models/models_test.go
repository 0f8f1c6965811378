package models

import (
	"testing"
	"time"
)

func TestActiveJobStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from ActiveJobStatus
		to   ActiveJobStatus
		want bool
	}{
		{ActiveJobOngoing, ActiveJobCollected, true},
		{ActiveJobCollected, ActiveJobDelivered, true},
		{ActiveJobOngoing, ActiveJobCancelled, true},
		{ActiveJobOngoing, ActiveJobDelivered, false},
		{ActiveJobDelivered, ActiveJobCollected, false},
		{ActiveJobCollected, ActiveJobOngoing, false},
		{ActiveJobCollected, ActiveJobCancelled, false},
		{ActiveJobDelivered, ActiveJobCancelled, false},
		{ActiveJobCancelled, ActiveJobOngoing, false},
		{ActiveJobOngoing, ActiveJobOngoing, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.want {
			t.Errorf("%s -> %s: got %v want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestDeliveredJob_ReadyForRelease(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		d    DeliveredJob
		want bool
	}{
		{"both confirmed", DeliveredJob{IsDriverConfirmed: true, IsClientConfirmed: true}, true},
		{"driver only", DeliveredJob{IsDriverConfirmed: true}, false},
		{"client only", DeliveredJob{IsClientConfirmed: true}, false},
		{"already released", DeliveredJob{IsDriverConfirmed: true, IsClientConfirmed: true, PaymentReleasedAt: &now}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.d.ReadyForRelease(); got != c.want {
				t.Fatalf("got %v want %v", got, c.want)
			}
		})
	}
}

func TestContact_Other(t *testing.T) {
	c := Contact{ClientID: "c1", DriverID: "d1"}
	if c.Other("c1") != "d1" || c.Other("d1") != "c1" {
		t.Fatalf("unexpected counterpart")
	}
	if c.HasParty("x") {
		t.Fatalf("stranger should not be a party")
	}
}

func TestUserRole_Has(t *testing.T) {
	r := UserRole{Driver: true}
	if !r.Has(RoleDriver) || r.Has(RoleClient) || r.Has(RoleAdmin) {
		t.Fatalf("unexpected role flags: %+v", r)
	}
}

package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"

	"github.com/stripe/stripe-go/v76/webhook"
)

// checkout is a fake CheckoutProvider that replays a fixed event
type checkout struct {
	params  []services.CheckoutParams
	event   *services.CheckoutCompleted
	failNew error
}

func (c *checkout) CreateSession(_ context.Context, p services.CheckoutParams) (*services.CheckoutSession, error) {
	if c.failNew != nil {
		return nil, c.failNew
	}
	c.params = append(c.params, p)
	return &services.CheckoutSession{ID: "cs_test", URL: "https://checkout.example.com/cs_test"}, nil
}

func (c *checkout) ParseWebhook(payload []byte, signature string) (*services.CheckoutCompleted, error) {
	if signature != "valid" {
		return nil, services.ErrInvalidSignature
	}
	return c.event, nil
}

func TestCreateCheckoutSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.openJob(t)
	provider := &checkout{}
	payments := services.NewPaymentService(e.store, provider, "https://app.example.com/", "GBP")

	sess, err := payments.CreateCheckoutSession(ctx, clientID, job.ID)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if sess.URL == "" {
		t.Fatalf("missing checkout url")
	}

	p := provider.params[0]
	if p.AmountCents != 25000 || p.Currency != "gbp" || p.JobID != job.ID {
		t.Fatalf("unexpected params: %+v", p)
	}
	if want := "https://app.example.com/jobs/" + job.ID + "/payment/success"; p.SuccessURL != want {
		t.Fatalf("success url = %s, want %s", p.SuccessURL, want)
	}

	if _, err := payments.CreateCheckoutSession(ctx, driverID, job.ID); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("not owner: got %v want ErrForbidden", err)
	}

	provider.failNew = errors.New("stripe down")
	if _, err := payments.CreateCheckoutSession(ctx, clientID, job.ID); !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("provider failure: got %v want ErrUpstream", err)
	}
}

func TestHandleWebhook_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.openJob(t)
	provider := &checkout{event: &services.CheckoutCompleted{SessionID: "cs_test", JobID: job.ID, Paid: true}}
	payments := services.NewPaymentService(e.store, provider, "https://app.example.com", "")

	if err := payments.HandleWebhook(ctx, []byte(`{}`), "forged"); !errors.Is(err, services.ErrInvalidSignature) {
		t.Fatalf("forged: got %v want ErrInvalidSignature", err)
	}

	for i := 0; i < 2; i++ {
		if err := payments.HandleWebhook(ctx, []byte(`{}`), "valid"); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}

	got, _ := e.jobs.GetJob(ctx, job.ID)
	if got.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("payment status = %s", got.PaymentStatus)
	}
	if _, err := payments.CreateCheckoutSession(ctx, clientID, job.ID); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("paid job checkout: got %v want ErrConflict", err)
	}
}

func TestHandleWebhook_IgnoresUnpaid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.openJob(t)
	provider := &checkout{event: &services.CheckoutCompleted{SessionID: "cs_test", JobID: job.ID}}
	payments := services.NewPaymentService(e.store, provider, "", "")

	if err := payments.HandleWebhook(ctx, []byte(`{}`), "valid"); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	got, _ := e.jobs.GetJob(ctx, job.ID)
	if got.PaymentStatus != models.PaymentStatusUnpaid {
		t.Fatalf("unpaid session marked the job paid")
	}
}

func TestStripeCheckout_ParseWebhook(t *testing.T) {
	const secret = "whsec_test"
	stripe := services.NewStripeCheckout("sk_test", secret)

	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"object": "checkout.session",
			"payment_status": "paid",
			"metadata": {"job_id": "job-1"}
		}}
	}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: secret})

	evt, err := stripe.ParseWebhook(signed.Payload, signed.Header)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if evt == nil || evt.JobID != "job-1" || evt.SessionID != "cs_1" || !evt.Paid {
		t.Fatalf("unexpected event: %+v", evt)
	}

	if _, err := stripe.ParseWebhook(payload, "t=1,v1=deadbeef"); !errors.Is(err, services.ErrInvalidSignature) {
		t.Fatalf("bad signature: got %v want ErrInvalidSignature", err)
	}

	other := []byte(fmt.Sprintf(`{"id":"evt_2","object":"event","type":%q,"data":{"object":{}}}`, "customer.created"))
	signed = webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: other, Secret: secret})
	evt, err = stripe.ParseWebhook(signed.Payload, signed.Header)
	if err != nil || evt != nil {
		t.Fatalf("unrelated event: got %+v, %v", evt, err)
	}
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"ship-swift-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// ErrInvalidSignature is returned for webhook payloads that fail verification
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CheckoutParams describes a hosted checkout for one job
type CheckoutParams struct {
	JobID       string
	ClientID    string
	Title       string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the hosted checkout the client is redirected to
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutCompleted is a verified payment completion for a job
type CheckoutCompleted struct {
	SessionID string
	JobID     string
	Paid      bool
}

// CheckoutProvider creates hosted checkouts and verifies their webhooks.
// ParseWebhook returns nil for event types that need no handling.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*CheckoutCompleted, error)
}

// PaymentService handles job checkout and payment webhooks
type PaymentService struct {
	jobs      JobQueries
	provider  CheckoutProvider
	publicURL string
	currency  string
}

// NewPaymentService creates a new payment service
func NewPaymentService(jobs JobQueries, provider CheckoutProvider, publicURL, currency string) *PaymentService {
	if currency == "" {
		currency = "gbp"
	}
	return &PaymentService{
		jobs:      jobs,
		provider:  provider,
		publicURL: strings.TrimRight(publicURL, "/"),
		currency:  strings.ToLower(currency),
	}
}

// CreateCheckoutSession opens a hosted checkout for the budget of a job owned by clientID
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, clientID, jobID string) (*CheckoutSession, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, storeErr(err)
	}
	if job.ClientID != clientID {
		return nil, fmt.Errorf("%w: not the job owner", ErrForbidden)
	}
	if job.PaymentStatus == models.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: job is already paid", ErrConflict)
	}
	if job.Status == models.JobStatusCancelled {
		return nil, fmt.Errorf("%w: job is cancelled", ErrConflict)
	}

	sess, err := s.provider.CreateSession(ctx, CheckoutParams{
		JobID:       job.ID,
		ClientID:    clientID,
		Title:       job.Title,
		AmountCents: int64(math.Round(job.Budget * 100)),
		Currency:    s.currency,
		SuccessURL:  fmt.Sprintf("%s/jobs/%s/payment/success", s.publicURL, job.ID),
		CancelURL:   fmt.Sprintf("%s/jobs/%s/payment/cancel", s.publicURL, job.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	log.Info().Str("job_id", job.ID).Str("session_id", sess.ID).Msg("Checkout session created")
	return sess, nil
}

// HandleWebhook verifies a payment webhook and marks the paid job. Replays
// of the same event are no-ops.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if evt == nil || !evt.Paid {
		return nil
	}
	if evt.JobID == "" {
		log.Warn().Str("session_id", evt.SessionID).Msg("Checkout session without job_id metadata")
		return nil
	}

	changed, err := s.jobs.MarkJobPaid(ctx, evt.JobID)
	if err != nil {
		return storeErr(err)
	}
	if changed {
		log.Info().Str("job_id", evt.JobID).Str("session_id", evt.SessionID).Msg("Job paid")
	} else {
		log.Debug().Str("job_id", evt.JobID).Msg("Job already paid, webhook replay ignored")
	}
	return nil
}

// StripeCheckout is the Stripe implementation of CheckoutProvider
type StripeCheckout struct {
	sessions      *session.Client
	webhookSecret string
}

// NewStripeCheckout creates a Stripe checkout provider
func NewStripeCheckout(secretKey, webhookSecret string) *StripeCheckout {
	return &StripeCheckout{
		sessions:      &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

// CreateSession creates a Checkout Session in payment mode
func (c *StripeCheckout) CreateSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(p.JobID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("job_id", p.JobID)
	params.AddMetadata("client_id", p.ClientID)

	sess, err := c.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts completed checkouts
func (c *StripeCheckout) ParseWebhook(payload []byte, signature string) (*CheckoutCompleted, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, invalid("payload", "is not a checkout session")
	}

	return &CheckoutCompleted{
		SessionID: sess.ID,
		JobID:     sess.Metadata["job_id"],
		Paid:      sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}

package handlers

import (
	"io"
	"net/http"

	"ship-swift-backend/internal/middleware"
	"ship-swift-backend/internal/services"

	"github.com/rs/zerolog/log"
)

const maxWebhookBytes = 64 << 10

// PaymentHandler handles checkout and payment webhook requests
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler. paymentService may be nil
// when payments are not configured.
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreateCheckout handles POST /api/v1/jobs/{job_id}/checkout
func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if h.paymentService == nil {
		respondError(w, "Payments are not configured", http.StatusServiceUnavailable)
		return
	}

	jobID, ok := pathID(w, r, "job_id")
	if !ok {
		return
	}

	sess, err := h.paymentService.CreateCheckoutSession(ctx, userID, jobID)
	if err != nil {
		handleError(w, err, userID, "Failed to create checkout session")
		return
	}

	respondJSON(w, http.StatusCreated, sess)
}

// Webhook handles POST /api/v1/webhooks/stripe
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.paymentService == nil {
		respondError(w, "Payments are not configured", http.StatusServiceUnavailable)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		respondError(w, "Failed to read request body", http.StatusRequestEntityTooLarge)
		return
	}

	if err := h.paymentService.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		handleError(w, err, "", "Failed to handle payment webhook")
		return
	}

	log.Debug().Int("bytes", len(payload)).Msg("Payment webhook handled")
	w.WriteHeader(http.StatusOK)
}

package handlers

import (
	"net/http"

	"ship-swift-backend/internal/middleware"
	"ship-swift-backend/internal/services"
)

// RequestHandler handles job request HTTP requests
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

// UpdateOfferRequest changes the offer of a pending request
type UpdateOfferRequest struct {
	OfferAmount float64 `json:"offer_amount"`
}

// ListMyRequests handles GET /api/v1/me/requests
func (h *RequestHandler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	requests, err := h.requestService.ListDriverRequests(ctx, userID)
	if err != nil {
		handleError(w, err, userID, "Failed to list driver requests")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// UpdateOffer handles PATCH /api/v1/requests/{request_id}
func (h *RequestHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UpdateOfferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	requestID, ok := pathID(w, r, "request_id")
	if !ok {
		return
	}

	jobReq, err := h.requestService.UpdateOffer(ctx, userID, requestID, req.OfferAmount)
	if err != nil {
		handleError(w, err, userID, "Failed to update offer")
		return
	}

	respondJSON(w, http.StatusOK, jobReq)
}

// Approve handles POST /api/v1/requests/{request_id}/approve
func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	requestID, ok := pathID(w, r, "request_id")
	if !ok {
		return
	}

	active, err := h.requestService.ApproveRequest(ctx, userID, requestID)
	if err != nil {
		handleError(w, err, userID, "Failed to approve job request")
		return
	}

	respondJSON(w, http.StatusCreated, active)
}

// Reject handles POST /api/v1/requests/{request_id}/reject
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	requestID, ok := pathID(w, r, "request_id")
	if !ok {
		return
	}

	jobReq, err := h.requestService.RejectRequest(ctx, userID, requestID)
	if err != nil {
		handleError(w, err, userID, "Failed to reject job request")
		return
	}

	respondJSON(w, http.StatusOK, jobReq)
}

// Withdraw handles DELETE /api/v1/requests/{request_id}
func (h *RequestHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	requestID, ok := pathID(w, r, "request_id")
	if !ok {
		return
	}

	if err := h.requestService.WithdrawRequest(ctx, userID, requestID); err != nil {
		handleError(w, err, userID, "Failed to withdraw job request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

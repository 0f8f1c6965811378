package handlers

import (
	"net/http"

	"ship-swift-backend/internal/middleware"
	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// Create handles POST /api/v1/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreateReviewInput
	if !decodeJSON(w, r, &req) {
		return
	}

	rv, err := h.reviewService.CreateReview(ctx, userID, req)
	if err != nil {
		handleError(w, err, userID, "Failed to create review")
		return
	}

	respondJSON(w, http.StatusCreated, rv)
}

// List handles GET /api/v1/reviews?driver_id= or ?client_id=
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	q := r.URL.Query()
	targetID, role := q.Get("driver_id"), models.RoleDriver
	if targetID == "" {
		targetID, role = q.Get("client_id"), models.RoleClient
	}
	if targetID == "" {
		respondError(w, "driver_id or client_id is required", http.StatusBadRequest)
		return
	}

	summary, err := h.reviewService.ListReviews(ctx, targetID, role)
	if err != nil {
		handleError(w, err, userID, "Failed to list reviews")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// Delete handles DELETE /api/v1/reviews/{review_id} and the admin variant
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	reviewID, ok := pathID(w, r, "review_id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(ctx, userID, reviewID); err != nil {
		handleError(w, err, userID, "Failed to delete review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"ship-swift-backend/internal/middleware"
	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"
)

// ActiveJobHandler handles delivery progress and proof of delivery requests
type ActiveJobHandler struct {
	activeJobService *services.ActiveJobService
	deliveryService  *services.DeliveryService
	uploadService    *services.UploadService
}

// NewActiveJobHandler creates a new active job handler. uploadService may be
// nil when no bucket is configured.
func NewActiveJobHandler(
	activeJobService *services.ActiveJobService,
	deliveryService *services.DeliveryService,
	uploadService *services.UploadService,
) *ActiveJobHandler {
	return &ActiveJobHandler{
		activeJobService: activeJobService,
		deliveryService:  deliveryService,
		uploadService:    uploadService,
	}
}

// ActiveJobsResponse splits the caller's active jobs by side
type ActiveJobsResponse struct {
	AsDriver []*models.ActiveJob `json:"as_driver"`
	AsClient []*models.ActiveJob `json:"as_client"`
}

// List handles GET /api/v1/active-jobs
func (h *ActiveJobHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	asDriver, err := h.activeJobService.ListDriverActiveJobs(ctx, userID)
	if err != nil {
		handleError(w, err, userID, "Failed to list driver active jobs")
		return
	}
	asClient, err := h.activeJobService.ListClientActiveJobs(ctx, userID)
	if err != nil {
		handleError(w, err, userID, "Failed to list client active jobs")
		return
	}

	respondJSON(w, http.StatusOK, ActiveJobsResponse{AsDriver: asDriver, AsClient: asClient})
}

// Get handles GET /api/v1/active-jobs/{active_job_id}
func (h *ActiveJobHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	activeJobID, ok := pathID(w, r, "active_job_id")
	if !ok {
		return
	}

	aj, err := h.activeJobService.GetActiveJob(ctx, userID, activeJobID)
	if err != nil {
		handleError(w, err, userID, "Failed to get active job")
		return
	}

	respondJSON(w, http.StatusOK, aj)
}

// Collect handles POST /api/v1/active-jobs/{active_job_id}/collect
func (h *ActiveJobHandler) Collect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	activeJobID, ok := pathID(w, r, "active_job_id")
	if !ok {
		return
	}

	aj, err := h.activeJobService.MarkCollected(ctx, userID, activeJobID)
	if err != nil {
		handleError(w, err, userID, "Failed to mark job collected")
		return
	}

	respondJSON(w, http.StatusOK, aj)
}

// Deliver handles POST /api/v1/active-jobs/{active_job_id}/deliver
func (h *ActiveJobHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.MarkDeliveredInput
	if !decodeJSON(w, r, &req) {
		return
	}

	activeJobID, ok := pathID(w, r, "active_job_id")
	if !ok {
		return
	}

	delivered, err := h.activeJobService.MarkDelivered(ctx, userID, activeJobID, req)
	if err != nil {
		handleError(w, err, userID, "Failed to mark job delivered")
		return
	}

	respondJSON(w, http.StatusCreated, delivered)
}

// Cancel handles POST /api/v1/active-jobs/{active_job_id}/cancel
func (h *ActiveJobHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	activeJobID, ok := pathID(w, r, "active_job_id")
	if !ok {
		return
	}

	aj, err := h.activeJobService.Cancel(ctx, userID, activeJobID)
	if err != nil {
		handleError(w, err, userID, "Failed to cancel active job")
		return
	}

	respondJSON(w, http.StatusOK, aj)
}

// ProofUpload handles POST /api/v1/active-jobs/{active_job_id}/proof-upload
func (h *ActiveJobHandler) ProofUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if h.uploadService == nil {
		respondError(w, "Uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	var req services.UploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	activeJobID, ok := pathID(w, r, "active_job_id")
	if !ok {
		return
	}

	resp, err := h.uploadService.PresignProofUpload(ctx, userID, activeJobID, req)
	if err != nil {
		handleError(w, err, userID, "Failed to generate pre-signed URL")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetDelivery handles GET /api/v1/active-jobs/{active_job_id}/delivery
func (h *ActiveJobHandler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	activeJobID, ok := pathID(w, r, "active_job_id")
	if !ok {
		return
	}

	d, err := h.deliveryService.GetDeliveryByActiveJob(ctx, userID, activeJobID)
	if err != nil {
		handleError(w, err, userID, "Failed to get delivery")
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// GetDeliveryByID handles GET /api/v1/deliveries/{delivery_id}
func (h *ActiveJobHandler) GetDeliveryByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	deliveryID, ok := pathID(w, r, "delivery_id")
	if !ok {
		return
	}

	d, err := h.deliveryService.GetDelivery(ctx, userID, deliveryID)
	if err != nil {
		handleError(w, err, userID, "Failed to get delivery")
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// ConfirmDelivery handles POST /api/v1/deliveries/{delivery_id}/confirm
func (h *ActiveJobHandler) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	deliveryID, ok := pathID(w, r, "delivery_id")
	if !ok {
		return
	}

	d, err := h.deliveryService.ConfirmClientDelivery(ctx, userID, deliveryID)
	if err != nil {
		handleError(w, err, userID, "Failed to confirm delivery")
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// ReleasePayment handles POST /api/v1/deliveries/{delivery_id}/release
func (h *ActiveJobHandler) ReleasePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	deliveryID, ok := pathID(w, r, "delivery_id")
	if !ok {
		return
	}

	d, err := h.deliveryService.ReleasePayment(ctx, userID, deliveryID)
	if err != nil {
		handleError(w, err, userID, "Failed to release payment")
		return
	}

	respondJSON(w, http.StatusOK, d)
}

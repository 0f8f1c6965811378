package handlers

import (
	"net/http"

	"ship-swift-backend/internal/middleware"
	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	jobService     *services.JobService
	requestService *services.RequestService
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobService *services.JobService, requestService *services.RequestService) *JobHandler {
	return &JobHandler{
		jobService:     jobService,
		requestService: requestService,
	}
}

// CreateDirectJobRequest is a job posted straight to a known driver
type CreateDirectJobRequest struct {
	services.CreateJobInput
	DriverID string `json:"driver_id"`
}

// CreateDirectJobResponse carries the job and the driver's invitation
type CreateDirectJobResponse struct {
	Job     *models.Job        `json:"job"`
	Request *models.JobRequest `json:"request"`
}

// CreateRequestBody is a driver's request for a job
type CreateRequestBody struct {
	OfferAmount *float64 `json:"offer_amount,omitempty"`
}

// CreateJob handles POST /api/v1/jobs
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreateJobInput
	if !decodeJSON(w, r, &req) {
		return
	}

	job, err := h.jobService.CreateJob(ctx, userID, req)
	if err != nil {
		handleError(w, err, userID, "Failed to create job")
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

// CreateDirectJob handles POST /api/v1/jobs/direct
func (h *JobHandler) CreateDirectJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateDirectJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	job, jobReq, err := h.jobService.CreateDirectJob(ctx, userID, req.CreateJobInput, req.DriverID)
	if err != nil {
		handleError(w, err, userID, "Failed to create direct job")
		return
	}

	respondJSON(w, http.StatusCreated, CreateDirectJobResponse{Job: job, Request: jobReq})
}

// ListOpenJobs handles GET /api/v1/jobs
func (h *JobHandler) ListOpenJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	jobs, err := h.jobService.ListOpenJobs(ctx, queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		handleError(w, err, userID, "Failed to list jobs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// ListMyJobs handles GET /api/v1/me/jobs
func (h *JobHandler) ListMyJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	jobs, err := h.jobService.ListClientJobs(ctx, userID)
	if err != nil {
		handleError(w, err, userID, "Failed to list client jobs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// ListAllJobs handles GET /api/v1/admin/jobs
func (h *JobHandler) ListAllJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	jobs, err := h.jobService.ListAllJobs(ctx, queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		handleError(w, err, userID, "Failed to list all jobs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// GetJob handles GET /api/v1/jobs/{job_id}
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathID(w, r, "job_id")
	if !ok {
		return
	}

	job, err := h.jobService.GetJob(r.Context(), jobID)
	if err != nil {
		handleError(w, err, "", "Failed to get job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// UpdateJob handles PATCH /api/v1/jobs/{job_id}
func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	jobID, ok := pathID(w, r, "job_id")
	if !ok {
		return
	}

	var req models.JobUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	job, err := h.jobService.UpdateJob(ctx, userID, jobID, req)
	if err != nil {
		handleError(w, err, userID, "Failed to update job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// DeleteJob handles DELETE /api/v1/jobs/{job_id}
func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	jobID, ok := pathID(w, r, "job_id")
	if !ok {
		return
	}

	if err := h.jobService.DeleteJob(ctx, userID, jobID); err != nil {
		handleError(w, err, userID, "Failed to delete job")
		return
	}

	log.Info().Str("user_id", userID).Str("job_id", jobID).Msg("Job deleted via API")
	w.WriteHeader(http.StatusNoContent)
}

// ListJobRequests handles GET /api/v1/jobs/{job_id}/requests
func (h *JobHandler) ListJobRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	jobID, ok := pathID(w, r, "job_id")
	if !ok {
		return
	}

	requests, err := h.requestService.ListJobRequests(ctx, userID, jobID)
	if err != nil {
		handleError(w, err, userID, "Failed to list job requests")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// CreateRequest handles POST /api/v1/jobs/{job_id}/requests
func (h *JobHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	jobID, ok := pathID(w, r, "job_id")
	if !ok {
		return
	}

	var req CreateRequestBody
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	jobReq, err := h.requestService.CreateRequest(ctx, userID, jobID, req.OfferAmount)
	if err != nil {
		handleError(w, err, userID, "Failed to create job request")
		return
	}

	respondJSON(w, http.StatusCreated, jobReq)
}

package handlers

import (
	"net/http"

	"ship-swift-backend/internal/middleware"
	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// LocationHandler handles saved locations and device tokens
type LocationHandler struct {
	locationService     *services.LocationService
	notificationService *services.NotificationService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locationService *services.LocationService, notificationService *services.NotificationService) *LocationHandler {
	return &LocationHandler{
		locationService:     locationService,
		notificationService: notificationService,
	}
}

// RegisterPushTokenRequest registers a device for push notifications
type RegisterPushTokenRequest struct {
	Token    string          `json:"token"`
	Platform models.Platform `json:"platform"`
}

// ListLocations handles GET /api/v1/locations
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	locations, err := h.locationService.ListLocations(ctx, userID)
	if err != nil {
		handleError(w, err, userID, "Failed to list locations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"locations": locations})
}

// CreateLocation handles POST /api/v1/locations
func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreateLocationInput
	if !decodeJSON(w, r, &req) {
		return
	}

	loc, err := h.locationService.CreateLocation(ctx, userID, req)
	if err != nil {
		handleError(w, err, userID, "Failed to create location")
		return
	}

	respondJSON(w, http.StatusCreated, loc)
}

// DeleteLocation handles DELETE /api/v1/locations/{location_id}
func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	locationID, ok := pathID(w, r, "location_id")
	if !ok {
		return
	}

	if err := h.locationService.DeleteLocation(ctx, userID, locationID); err != nil {
		handleError(w, err, userID, "Failed to delete location")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RegisterPushToken handles POST /api/v1/push-tokens
func (h *LocationHandler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req RegisterPushTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.notificationService.RegisterToken(ctx, userID, req.Token, req.Platform)
	if err != nil {
		handleError(w, err, userID, "Failed to register push token")
		return
	}

	respondJSON(w, http.StatusCreated, t)
}

// UnregisterPushToken handles DELETE /api/v1/push-tokens/{token}
func (h *LocationHandler) UnregisterPushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.notificationService.UnregisterToken(ctx, userID, chi.URLParam(r, "token")); err != nil {
		handleError(w, err, userID, "Failed to unregister push token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

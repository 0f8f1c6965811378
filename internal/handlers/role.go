package handlers

import (
	"net/http"
	"strings"

	"ship-swift-backend/internal/middleware"
	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"
)

// RoleHandler handles role-related HTTP requests
type RoleHandler struct {
	roleService *services.RoleService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleService *services.RoleService) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
	}
}

// RolesResponse is the role view of the current user
type RolesResponse struct {
	*models.UserRole
	Admin bool `json:"admin"`
}

// GetMyRoles handles GET /api/v1/me/roles
func (h *RoleHandler) GetMyRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	role, err := h.roleService.GetRole(ctx, userID)
	if err != nil {
		handleError(w, err, userID, "Failed to get roles")
		return
	}

	respondJSON(w, http.StatusOK, RolesResponse{UserRole: role, Admin: h.roleService.IsAdmin(userID)})
}

// UpdateMyRoles handles PUT /api/v1/me/roles
func (h *RoleHandler) UpdateMyRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req models.RoleUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	role, err := h.roleService.UpsertRole(ctx, userID, req)
	if err != nil {
		handleError(w, err, userID, "Failed to update roles")
		return
	}

	respondJSON(w, http.StatusOK, RolesResponse{UserRole: role, Admin: h.roleService.IsAdmin(userID)})
}

// DeleteMyRoles handles DELETE /api/v1/me/roles
func (h *RoleHandler) DeleteMyRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.roleService.DeleteRole(ctx, userID); err != nil {
		handleError(w, err, userID, "Failed to delete roles")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// IsDriver handles GET /api/v1/roles/driver. The user id comes from the
// X-User-ID header set by the identity gateway.
func (h *RoleHandler) IsDriver(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		respondError(w, "X-User-ID header required", http.StatusBadRequest)
		return
	}

	ok, err := h.roleService.IsDriver(r.Context(), userID)
	if err != nil {
		handleError(w, err, userID, "Failed to check driver role")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"is_driver": ok})
}

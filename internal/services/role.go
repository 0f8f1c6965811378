package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// RoleCache caches role flags per user. Implementations expire entries on
// their own TTL. Invalidate must drop the entry immediately, and a Set racing
// with it must not bring the old flags back.
type RoleCache interface {
	Get(ctx context.Context, userID string) (*models.UserRole, bool, error)
	Set(ctx context.Context, role *models.UserRole) error
	Invalidate(ctx context.Context, userID string) error
}

// RoleService is the role/access guard
type RoleService struct {
	roles  RoleQueries
	cache  RoleCache
	admins map[string]struct{}
}

// NewRoleService creates a new role service. cache may be nil.
func NewRoleService(roles RoleQueries, cache RoleCache, adminIDs []string) *RoleService {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &RoleService{
		roles:  roles,
		cache:  cache,
		admins: admins,
	}
}

// GetRole returns the role flags of a user. A user without a stored row has no roles.
func (s *RoleService) GetRole(ctx context.Context, userID string) (*models.UserRole, error) {
	if userID == "" {
		return nil, invalid("user_id", "is required")
	}

	if s.cache != nil {
		role, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Role cache read failed")
		} else if ok {
			return role, nil
		}
	}

	role, err := s.roles.GetUserRole(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get role: %w", err)
		}
		role = &models.UserRole{UserID: userID}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, role); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Role cache write failed")
		}
	}

	return role, nil
}

// UpsertRole stores the role flags of a user and drops the cached copy.
// Upserting the same flags twice leaves the same stored state.
func (s *RoleService) UpsertRole(ctx context.Context, userID string, upd models.RoleUpdate) (*models.UserRole, error) {
	if userID == "" {
		return nil, invalid("user_id", "is required")
	}

	role, err := s.roles.UpsertUserRole(ctx, userID, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert role: %w", err)
	}

	s.invalidate(ctx, userID)

	log.Info().
		Str("user_id", userID).
		Bool("driver", role.Driver).
		Bool("client", role.Client).
		Msg("Role updated")

	return role, nil
}

// DeleteRole removes the role flags of a user on account deletion
func (s *RoleService) DeleteRole(ctx context.Context, userID string) error {
	if err := s.roles.DeleteUserRole(ctx, userID); err != nil {
		return storeErr(err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// HasRole reports whether userID holds role
func (s *RoleService) HasRole(ctx context.Context, userID string, role models.Role) (bool, error) {
	if role == models.RoleAdmin {
		return s.IsAdmin(userID), nil
	}
	r, err := s.GetRole(ctx, userID)
	if err != nil {
		return false, err
	}
	return r.Has(role), nil
}

// IsDriver reports whether userID holds the driver role
func (s *RoleService) IsDriver(ctx context.Context, userID string) (bool, error) {
	return s.HasRole(ctx, userID, models.RoleDriver)
}

// IsClient reports whether userID holds the client role
func (s *RoleService) IsClient(ctx context.Context, userID string) (bool, error) {
	return s.HasRole(ctx, userID, models.RoleClient)
}

// IsAdmin reports whether userID is in the configured admin list
func (s *RoleService) IsAdmin(userID string) bool {
	_, ok := s.admins[userID]
	return ok
}

// require returns ErrForbidden unless userID holds role
func (s *RoleService) require(ctx context.Context, userID string, role models.Role) error {
	ok, err := s.HasRole(ctx, userID, role)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s role required", ErrForbidden, role)
	}
	return nil
}

func (s *RoleService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to invalidate role cache")
	}
}

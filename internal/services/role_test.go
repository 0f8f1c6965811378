package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ship-swift-backend/internal/cache"
	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"
	"ship-swift-backend/internal/storetest"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// mapCache is an in-process RoleCache
type mapCache struct {
	mu          sync.Mutex
	roles       map[string]models.UserRole
	invalidated int
}

func newMapCache() *mapCache {
	return &mapCache{roles: map[string]models.UserRole{}}
}

func (c *mapCache) Get(_ context.Context, userID string) (*models.UserRole, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.roles[userID]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

func (c *mapCache) Set(_ context.Context, role *models.UserRole) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[role.UserID] = *role
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.roles, userID)
	c.invalidated++
	return nil
}

func TestUpsertRole_Idempotent(t *testing.T) {
	store := storetest.New()
	roles := services.NewRoleService(store, nil, nil)
	ctx := context.Background()
	yes := true

	first, err := roles.UpsertRole(ctx, "u1", models.RoleUpdate{Driver: &yes})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := roles.UpsertRole(ctx, "u1", models.RoleUpdate{Driver: &yes})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first.Driver != second.Driver || first.Client != second.Client {
		t.Fatalf("state changed: %+v vs %+v", first, second)
	}

	// a partial update keeps the other flag
	if _, err := roles.UpsertRole(ctx, "u1", models.RoleUpdate{Client: &yes}); err != nil {
		t.Fatalf("client upsert: %v", err)
	}
	r, _ := roles.GetRole(ctx, "u1")
	if !r.Driver || !r.Client {
		t.Fatalf("flags = %+v, want both", r)
	}
}

func TestGetRole_Unknown(t *testing.T) {
	roles := services.NewRoleService(storetest.New(), nil, nil)

	r, err := roles.GetRole(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.Driver || r.Client {
		t.Fatalf("unknown user has roles: %+v", r)
	}
	if _, err := roles.GetRole(context.Background(), ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty id: got %v want ErrValidation", err)
	}
}

func TestRoleCache_InvalidatedOnUpsert(t *testing.T) {
	store := storetest.New()
	cache := newMapCache()
	roles := services.NewRoleService(store, cache, nil)
	ctx := context.Background()
	yes, no := true, false

	if _, err := roles.UpsertRole(ctx, "u1", models.RoleUpdate{Driver: &yes}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ok, _ := roles.IsDriver(ctx, "u1"); !ok {
		t.Fatalf("driver flag not visible")
	}
	if _, cached, _ := cache.Get(ctx, "u1"); !cached {
		t.Fatalf("role not cached after read")
	}

	if _, err := roles.UpsertRole(ctx, "u1", models.RoleUpdate{Driver: &no}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ok, _ := roles.IsDriver(ctx, "u1"); ok {
		t.Fatalf("stale cached role served after update")
	}
	if cache.invalidated != 2 {
		t.Fatalf("invalidations = %d, want 2", cache.invalidated)
	}
}

// racingRoles runs interleave once, after a row was read and before it is returned
type racingRoles struct {
	services.RoleQueries
	interleave func()
}

func (r *racingRoles) GetUserRole(ctx context.Context, userID string) (*models.UserRole, error) {
	role, err := r.RoleQueries.GetUserRole(ctx, userID)
	if f := r.interleave; f != nil {
		r.interleave = nil
		f()
	}
	return role, err
}

func TestRoleCache_ConcurrentUpsertNotOverwritten(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	q := &racingRoles{RoleQueries: storetest.New()}
	roles := services.NewRoleService(q, cache.NewRoleCache(client, time.Minute), nil)
	ctx := context.Background()
	yes, no := true, false

	if _, err := roles.UpsertRole(ctx, "u1", models.RoleUpdate{Driver: &yes}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	q.interleave = func() {
		if _, err := roles.UpsertRole(ctx, "u1", models.RoleUpdate{Driver: &no}); err != nil {
			t.Errorf("concurrent upsert: %v", err)
		}
	}
	if _, err := roles.GetRole(ctx, "u1"); err != nil {
		t.Fatalf("get: %v", err)
	}

	if ok, _ := roles.IsDriver(ctx, "u1"); ok {
		t.Fatalf("flags read before the upsert were cached over it")
	}
}

func TestRoleService_Admin(t *testing.T) {
	roles := services.NewRoleService(storetest.New(), nil, []string{" admin-1 ", ""})
	ctx := context.Background()

	if ok, _ := roles.HasRole(ctx, "admin-1", models.RoleAdmin); !ok {
		t.Fatalf("configured admin not recognised")
	}
	if ok, _ := roles.HasRole(ctx, "", models.RoleAdmin); ok {
		t.Fatalf("empty id is admin")
	}
}

func TestDeleteRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.roles.DeleteRole(ctx, driverID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := e.roles.IsDriver(ctx, driverID); ok {
		t.Fatalf("deleted user still a driver")
	}
	if err := e.roles.DeleteRole(ctx, driverID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("second delete: got %v want ErrNotFound", err)
	}
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ship-swift-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const rolePrefix = "roles:"

// DefaultRoleTTL is how long role flags stay cached
const DefaultRoleTTL = 60 * time.Second

// Invalidate leaves a tombstone for invalidationFence. A reader that loaded
// the row before the write cannot cache it while the tombstone lives.
const (
	tombstone         = "-"
	invalidationFence = 5 * time.Second
)

// RoleCache caches user role flags in Redis
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoleCache creates a new Redis-backed role cache
func NewRoleCache(client *redis.Client, ttl time.Duration) *RoleCache {
	if ttl <= 0 {
		ttl = DefaultRoleTTL
	}
	return &RoleCache{client: client, ttl: ttl}
}

func roleKey(userID string) string {
	return rolePrefix + userID
}

// Get returns the cached flags of userID. ok is false on a miss.
func (c *RoleCache) Get(ctx context.Context, userID string) (*models.UserRole, bool, error) {
	data, err := c.client.Get(ctx, roleKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached role: %w", err)
	}
	if string(data) == tombstone {
		return nil, false, nil
	}

	var role models.UserRole
	if err := json.Unmarshal(data, &role); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached role: %w", err)
	}
	return &role, true, nil
}

// Set caches the flags of a user for the configured TTL. It never replaces
// an existing entry, so a recent invalidation wins over a late write-back.
func (c *RoleCache) Set(ctx context.Context, role *models.UserRole) error {
	data, err := json.Marshal(role)
	if err != nil {
		return fmt.Errorf("failed to encode role: %w", err)
	}
	if err := c.client.SetNX(ctx, roleKey(role.UserID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache role: %w", err)
	}
	return nil
}

// Invalidate replaces the cached flags of userID with a short-lived tombstone
func (c *RoleCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Set(ctx, roleKey(userID), tombstone, invalidationFence).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached role: %w", err)
	}
	return nil
}

// Connect opens a Redis client and checks the connection
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

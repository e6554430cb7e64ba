package discord

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RoleProvider yields the guild role set for a user.
type RoleProvider interface {
	MemberRoles(ctx context.Context, userID string) ([]string, error)
}

// Oracle answers role-entitlement and admin questions for the shop.
// Unknown guild members simply hold no roles.
type Oracle struct {
	roles       RoleProvider
	adminRoleID string
}

// NewOracle creates an oracle over a role provider.
func NewOracle(roles RoleProvider, adminRoleID string) *Oracle {
	return &Oracle{roles: roles, adminRoleID: adminRoleID}
}

// HasRole reports whether the user holds the given guild role.
func (o *Oracle) HasRole(ctx context.Context, userID, roleID string) (bool, error) {
	memberRoles, err := o.roles.MemberRoles(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUnknownMember) {
			return false, nil
		}
		return false, err
	}
	for _, r := range memberRoles {
		if r == roleID {
			return true, nil
		}
	}
	return false, nil
}

// IsAdmin reports whether the user holds the configured admin role.
func (o *Oracle) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if o.adminRoleID == "" {
		return false, nil
	}
	return o.HasRole(ctx, userID, o.adminRoleID)
}

// RoleCache is a Redis-backed RoleProvider decorator. With a nil client it
// passes straight through to the underlying provider.
type RoleCache struct {
	next  RoleProvider
	redis *redis.Client
	ttl   time.Duration
}

// NewRoleCache creates a caching decorator around a role provider.
func NewRoleCache(next RoleProvider, client *redis.Client, ttl time.Duration) *RoleCache {
	return &RoleCache{next: next, redis: client, ttl: ttl}
}

// MemberRoles returns cached roles when fresh, otherwise fetches and caches.
func (c *RoleCache) MemberRoles(ctx context.Context, userID string) ([]string, error) {
	if c.redis == nil {
		return c.next.MemberRoles(ctx, userID)
	}

	key := "discord:roles:" + userID
	if cached, err := c.redis.Get(ctx, key).Result(); err == nil {
		var roles []string
		if err := json.Unmarshal([]byte(cached), &roles); err == nil {
			return roles, nil
		}
	}

	roles, err := c.next.MemberRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(roles); err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("failed to cache member roles")
		}
	}
	return roles, nil
}

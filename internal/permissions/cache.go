// Package permissions caches the signed-in user's capabilities and
// evaluates permission requirements against them.
package permissions

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"teamplanner/internal/backend"
	"teamplanner/internal/model"
)

// DefaultTTL is how long a fetched permission set stays fresh.
const DefaultTTL = 5 * time.Minute

// fetchTimeout bounds a shared lookup, which outlives any one caller's context.
const fetchTimeout = 30 * time.Second

// ErrCleared is returned to callers whose lookup was overtaken by Clear.
var ErrCleared = errors.New("permissions cleared during lookup")

// CapRunOrchestrator gates schedule dispatch and state resets.
const CapRunOrchestrator = "can_run_orchestrator"

// Mode selects how Evaluate combines several required permissions.
type Mode string

const (
	ModeAll Mode = "all"
	ModeAny Mode = "any"
)

// Evaluate reports whether user satisfies required under mode. An empty
// requirement is always satisfied; a nil user satisfies nothing else.
func Evaluate(required []string, user *model.UserPermissions, mode Mode) bool {
	if len(required) == 0 {
		return true
	}
	if user == nil {
		return false
	}
	if mode == ModeAny {
		for _, p := range required {
			if slices.Contains(user.Permissions, p) {
				return true
			}
		}
		return false
	}
	for _, p := range required {
		if !slices.Contains(user.Permissions, p) {
			return false
		}
	}
	return true
}

// Cache holds one UserPermissions value fetched from the backend.
type Cache struct {
	fetcher backend.PermissionsFetcher
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger

	group     singleflight.Group
	mu        sync.RWMutex
	user      *model.UserPermissions
	lastFetch time.Time
	gen       uint64 // bumped by Clear
}

// NewCache builds a cache. now defaults to time.Now and ttl to DefaultTTL.
func NewCache(fetcher backend.PermissionsFetcher, ttl time.Duration, now func() time.Time, logger zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{fetcher: fetcher, ttl: ttl, now: now, logger: logger.With().Str("component", "permissions").Logger()}
}

// Get returns the cached permissions, fetching them when missing or stale.
func (c *Cache) Get(ctx context.Context) (*model.UserPermissions, error) {
	return c.Refresh(ctx, false)
}

// Refresh fetches unless the cached value is fresh and force is false.
// Concurrent callers share a single backend lookup.
func (c *Cache) Refresh(ctx context.Context, force bool) (*model.UserPermissions, error) {
	if !force {
		c.mu.RLock()
		u, fresh := c.user, c.user != nil && c.now().Sub(c.lastFetch) < c.ttl
		c.mu.RUnlock()
		if fresh {
			return u, nil
		}
	}
	v, err, _ := c.group.Do("permissions", func() (any, error) {
		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		u, err := c.fetcher.Permissions(fctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			c.logger.Debug().Str("user", u.Username).Msg("discarding permissions fetched before clear")
			return nil, ErrCleared
		}
		c.user = u
		c.lastFetch = c.now()
		c.mu.Unlock()
		c.logger.Debug().Str("user", u.Username).Str("role", u.Role).Int("permissions", len(u.Permissions)).Msg("permissions refreshed")
		return u, nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("permission lookup failed")
		return nil, err
	}
	return v.(*model.UserPermissions), nil
}

// Clear drops the cached value, as on sign-out. A lookup already in flight
// is not stored and later callers start a new one.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.gen++
	c.user = nil
	c.lastFetch = time.Time{}
	c.mu.Unlock()
	c.group.Forget("permissions")
}

// Cached returns the held value without fetching, or nil.
func (c *Cache) Cached() *model.UserPermissions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// The Has*/IsRole helpers read the held value and never fetch.

func (c *Cache) HasPermission(p string) bool {
	return Evaluate([]string{p}, c.Cached(), ModeAll)
}

func (c *Cache) HasAnyPermission(ps ...string) bool {
	if len(ps) == 0 {
		return false
	}
	return Evaluate(ps, c.Cached(), ModeAny)
}

func (c *Cache) HasAllPermissions(ps ...string) bool {
	return Evaluate(ps, c.Cached(), ModeAll)
}

func (c *Cache) IsRole(role string) bool {
	u := c.Cached()
	return u != nil && u.Role == role
}

package repository

import (
	"context"
	"fmt"
	"time"

	"mediavault_backend/internal/profileimages/domain"
	"mediavault_backend/platform/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	ownerCacheKeyPrefix = "mediavault:owner:"
	ownerLookupTimeout  = 5 * time.Second
)

// CachedOwners memoizes positive owner lookups in Redis.
// Negative answers are never cached so a newly created owner is visible
// immediately. Redis failures fall through to the wrapped reader.
type CachedOwners struct {
	next  OwnerReader
	rdb   redis.UniversalClient
	ttl   time.Duration
	group singleflight.Group
	log   *logger.Logger
}

// NewCachedOwners wraps next with a Redis-backed cache.
func NewCachedOwners(next OwnerReader, rdb redis.UniversalClient, ttl time.Duration, log *logger.Logger) *CachedOwners {
	return &CachedOwners{next: next, rdb: rdb, ttl: ttl, log: log}
}

var _ OwnerReader = (*CachedOwners)(nil)

func ownerCacheKey(owner domain.Owner) string {
	return fmt.Sprintf("%s%d:%d", ownerCacheKeyPrefix, owner.Type, owner.ID)
}

func (c *CachedOwners) OwnerExists(ctx context.Context, owner domain.Owner) (bool, error) {
	key := ownerCacheKey(owner)

	n, err := c.rdb.Exists(ctx, key).Result()
	if err == nil && n > 0 {
		return true, nil
	}
	if err != nil && c.log != nil {
		c.log.Warn("owner cache read failed", "key", key, "error", err)
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// Shared by every waiter, so it must not die with the first caller.
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ownerLookupTimeout)
		defer cancel()

		exists, err := c.next.OwnerExists(lookupCtx, owner)
		if err != nil || !exists {
			return exists, err
		}
		if setErr := c.rdb.Set(lookupCtx, key, "1", c.ttl).Err(); setErr != nil && c.log != nil {
			c.log.Warn("owner cache write failed", "key", key, "error", setErr)
		}
		return true, nil
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	}
}

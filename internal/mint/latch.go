package mint

import (
	"context"
	"time"

	"github.com/consensuslabs/pavilion-mint/internal/cache"
)

const latchKeyPrefix = "mint:latch:"

// CacheLatch acquires latches with SETNX on a cache
type CacheLatch struct {
	cache cache.Service
	ttl   time.Duration
	owner string
}

// NewCacheLatch creates a latch; owner is stored as the latch value
func NewCacheLatch(cache cache.Service, ttl time.Duration, owner string) *CacheLatch {
	return &CacheLatch{cache: cache, ttl: ttl, owner: owner}
}

// Acquire reports true exactly once per key while the latch lives
func (l *CacheLatch) Acquire(ctx context.Context, key string) (bool, error) {
	return l.cache.SetNX(ctx, latchKeyPrefix+key, l.owner, l.ttl)
}

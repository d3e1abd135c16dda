package probe

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "vidcap:probe:"

// Cached is a read-through Redis cache in front of another Prober. The same
// source video is often edited repeatedly, and each miss costs a process
// spawn.
type Cached struct {
	rdb  *redis.Client
	next Prober
	ttl  time.Duration
}

func NewCached(rdb *redis.Client, next Prober, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cached{rdb: rdb, next: next, ttl: ttl}
}

func (c *Cached) DurationSeconds(ctx context.Context, videoRef string) (float64, error) {
	key := cacheKeyPrefix + videoRef

	if v, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if sec, perr := strconv.ParseFloat(v, 64); perr == nil {
			return sec, nil
		}
	}

	sec, err := c.next.DurationSeconds(ctx, videoRef)
	if err != nil {
		return 0, err
	}

	// Cache failures are not the caller's problem.
	_ = c.rdb.Set(ctx, key, strconv.FormatFloat(sec, 'f', -1, 64), c.ttl).Err()

	return sec, nil
}

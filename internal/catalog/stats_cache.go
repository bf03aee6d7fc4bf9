package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	statsVersionKey = "library:stats:version"
	statsKeyPrefix  = "library:stats:v"

	statsLoadTimeout = 10 * time.Second
)

// StatsCache keeps the home page counts in Redis under a versioned key.
// Bump moves every reader to a fresh key; stale entries expire on their own.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewStatsCache builds a cache. A nil client disables caching.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Fetch returns cached stats or loads, stores and returns them. Concurrent
// misses share one load.
func (c *StatsCache) Fetch(ctx context.Context, load func(context.Context) (Stats, error)) (Stats, error) {
	if c == nil || c.client == nil {
		return load(ctx)
	}
	key, err := c.key(ctx)
	if err != nil {
		return Stats{}, err
	}
	if payload, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var stats Stats
		if err := json.Unmarshal(payload, &stats); err == nil {
			return stats, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return Stats{}, err
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// The flight outlives any single caller; waiters share its result.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsLoadTimeout)
		defer cancel()
		stats, err := load(ctx)
		if err != nil {
			return Stats{}, err
		}
		raw, err := json.Marshal(stats)
		if err != nil {
			return Stats{}, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return Stats{}, err
		}
		return stats, nil
	})
	select {
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Stats{}, res.Err
		}
		return res.Val.(Stats), nil
	}
}

// Bump invalidates cached stats.
func (c *StatsCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, statsVersionKey).Err()
}

func (c *StatsCache) key(ctx context.Context) (string, error) {
	ver, err := c.client.Get(ctx, statsVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		ver, err = 0, nil
	}
	if err != nil {
		return "", err
	}
	return statsKeyPrefix + strconv.FormatInt(ver, 10), nil
}

// Package cache is the Redis-backed search response cache. Entries are the
// marshalled response bytes keyed by a hash of the query shape; every
// document mutation invalidates the whole keyspace.
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/RaphScript0/mini-engine/pkg/config"
	"github.com/RaphScript0/mini-engine/pkg/metrics"
	pkgredis "github.com/RaphScript0/mini-engine/pkg/redis"
	"github.com/RaphScript0/mini-engine/pkg/resilience"
)

const keyPrefix = "search:"

// SearchCache stores marshalled search responses in Redis. A circuit
// breaker guards every Redis call so an unreachable cache degrades to
// computed responses instead of adding its timeout to each search.
type SearchCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	breaker *resilience.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a SearchCache. metrics may be nil.
func New(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *SearchCache {
	return &SearchCache{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewBreaker("redis-cache", 0, 0),
		metrics: m,
		logger:  slog.Default().With("component", "search-cache"),
	}
}

// Key builds the cache key for one query shape. The raw query is folded to
// lowercase fields so trivially different spellings share an entry.
func Key(query, mode string, topK int, cursor string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	raw := fmt.Sprintf("%s|mode=%s|k=%d|cursor=%s", normalized, mode, topK, cursor)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, sum[:16])
}

// GetOrCompute returns the cached response for key, or runs compute once —
// concurrent misses for the same key are collapsed — and caches its result.
// The second return reports whether the response came from the cache.
func (c *SearchCache) GetOrCompute(ctx context.Context, key string, compute func() ([]byte, error)) ([]byte, bool, error) {
	if data, ok := c.get(ctx, key); ok {
		return data, true, nil
	}
	val, err, _ := c.group.Do(key, func() (any, error) {
		if data, ok := c.get(ctx, key); ok {
			return data, nil
		}
		data, err := compute()
		if err != nil {
			return nil, err
		}
		setErr := c.breaker.Do(func() error {
			return c.client.Set(ctx, key, data, c.cfg.CacheTTL)
		})
		if setErr != nil && !errors.Is(setErr, resilience.ErrOpen) {
			c.logger.Error("cache set failed", "key", key, "error", setErr)
		}
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]byte), false, nil
}

// Invalidate removes every cached response. Called after any document
// mutation; cursors handed out earlier may reset, which the engine already
// tolerates.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	var deleted int
	err := c.breaker.Do(func() error {
		var err error
		deleted, err = c.client.FlushByPattern(ctx, keyPrefix+"*")
		return err
	})
	if err != nil {
		return fmt.Errorf("invalidating search cache: %w", err)
	}
	c.logger.Debug("search cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *SearchCache) get(ctx context.Context, key string) ([]byte, bool) {
	var data string
	var missing bool
	err := c.breaker.Do(func() error {
		var err error
		data, err = c.client.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			// A missing key is a healthy answer, not a backend failure.
			missing = true
			return nil
		}
		return err
	})
	if err != nil || missing {
		if err != nil && !errors.Is(err, resilience.ErrOpen) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		if c.metrics != nil {
			c.metrics.CacheMissesTotal.Inc()
		}
		return nil, false
	}
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	return []byte(data), true
}

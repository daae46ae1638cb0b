package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/CharacterVault/internal/app/model"
	"go.uber.org/zap"
)

const (
	pageCachePrefix     = "charactervault:collection"
	pageCacheGeneration = pageCachePrefix + ":generation"
	defaultPageCacheTTL = 30 * time.Second
)

// PageCache stores rendered collection pages. Get returns the key the page
// should be stored under; an empty key means the cache is unusable right now.
type PageCache interface {
	Get(ctx context.Context, page, limit int) (*model.CollectionPage, string)
	Set(ctx context.Context, key string, p *model.CollectionPage)
	Invalidate(ctx context.Context)
}

// RedisPageCache keys pages by a generation counter that every create bumps,
// so stale pages are never read after a write. Redis failures degrade to a miss.
type RedisPageCache struct {
	rdb     redis.UniversalClient
	ttl     time.Duration
	logger  *zap.Logger
	lookups *prometheus.CounterVec
}

func NewRedisPageCache(rdb redis.UniversalClient, ttl time.Duration, logger *zap.Logger, lookups *prometheus.CounterVec) *RedisPageCache {
	if ttl <= 0 {
		ttl = defaultPageCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPageCache{rdb: rdb, ttl: ttl, logger: logger, lookups: lookups}
}

func (c *RedisPageCache) Get(ctx context.Context, page, limit int) (*model.CollectionPage, string) {
	gen, err := c.rdb.Get(ctx, pageCacheGeneration).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.record("error")
		c.logger.Debug("page cache generation lookup failed", zap.Error(err))
		return nil, ""
	}

	key := fmt.Sprintf("%s:%d:%d:%d", pageCachePrefix, gen, page, limit)
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.record("miss")
			return nil, key
		}
		c.record("error")
		c.logger.Debug("page cache read failed", zap.String("key", key), zap.Error(err))
		return nil, ""
	}

	var cached model.CollectionPage
	if err := json.Unmarshal(data, &cached); err != nil {
		c.record("miss")
		return nil, key
	}
	c.record("hit")
	return &cached, key
}

func (c *RedisPageCache) Set(ctx context.Context, key string, p *model.CollectionPage) {
	if key == "" || p == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug("page cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisPageCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, pageCacheGeneration).Err(); err != nil {
		c.logger.Warn("page cache invalidation failed", zap.Error(err))
	}
}

func (c *RedisPageCache) record(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}

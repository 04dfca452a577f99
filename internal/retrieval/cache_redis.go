package retrieval

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores retrieval results in redis with a native TTL, letting
// multiple pipeline instances share one cache. Backend errors degrade to
// misses: a flaky redis slows retrieval down, it never breaks it.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// RedisCacheConfig configures the redis cache backend.
type RedisCacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisCacheConfig, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}, nil
}

// Get implements ResultCache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]ScoredDocument, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis cache read failed, treating as miss", "error", err)
		}
		return nil, false
	}
	var docs []ScoredDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		c.logger.Warn("redis cache entry unreadable, treating as miss", "error", err)
		return nil, false
	}
	return docs, true
}

// Set implements ResultCache.
func (c *RedisCache) Set(ctx context.Context, key string, docs []ScoredDocument) {
	raw, err := json.Marshal(docs)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("redis cache write failed", "error", err)
	}
}

// Close implements ResultCache.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

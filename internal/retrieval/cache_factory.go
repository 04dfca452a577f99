package retrieval

import (
	"context"
	"log/slog"

	"github.com/parthkaria14/GenAdvisor/internal/config"
	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// NewResultCache builds the configured cache backend. "none" (and the
// empty string) disable caching via NopCache.
func NewResultCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (ResultCache, error) {
	switch cfg.Type {
	case "none", "":
		return NopCache{}, nil
	case "memory":
		return NewMemoryCache(cfg.TTL, cfg.MaxEntries), nil
	case "redis":
		return NewRedisCache(ctx, RedisCacheConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.TTL,
		}, logger)
	case "badger":
		if cfg.Badger.Path == "" {
			return nil, types.NewError(types.INVALID_INPUT, "badger cache requires a path")
		}
		return NewBadgerCache(cfg.Badger.Path, cfg.TTL, logger)
	default:
		return nil, types.NewErrorf(types.INVALID_INPUT, "unknown cache type: %q", cfg.Type)
	}
}

package storage

import (
	"context"
	"fmt"
	"log/slog"

	"foodreel/internal/platform/config"
	"foodreel/internal/platform/redis"
)

// Open builds the store selected by cfg.Storage. The returned close function
// releases any connection the store holds and is never nil.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return NewMemoryStore(), noop, nil
	case config.StorageFile:
		fs, err := OpenFile(cfg.Storage.Path)
		if err != nil {
			return nil, noop, err
		}
		if aside := fs.Quarantined(); aside != "" {
			logger.WarnContext(ctx, "storage file unparsable, starting with an empty session",
				"path", cfg.Storage.Path,
				"moved_to", aside,
			)
		}
		return fs, noop, nil
	case config.StorageRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis storage: %w", err)
		}
		if client == nil {
			return nil, noop, fmt.Errorf("redis storage selected but no redis url configured")
		}
		store := NewRedisStore(client.Client,
			WithKeyPrefix(cfg.Redis.KeyPrefix),
			WithHealthCheck(client.Health),
		)
		return store, client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

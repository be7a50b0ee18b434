package repository

import (
	"context"
	"fmt"

	"familybooking/internal/config"
	"familybooking/internal/domain"

	"github.com/rs/zerolog"
)

// Open builds the blob store for the configured backend.
func Open(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.BlobStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return NewMemoryBlobStore(), nil
	case config.BackendFile:
		return NewFileBlobStore(cfg.Storage.FilePath, cfg.Storage.Key)
	case config.BackendSQLite:
		return NewSQLiteBlobStore(cfg.Storage.SQLitePath, logger)
	case config.BackendRedis:
		client := NewRedisClient(cfg.Redis)
		primary := NewRedisBlobStore(client)
		if !cfg.Storage.RedisFallback {
			if err := Ping(ctx, client); err != nil {
				_ = client.Close()
				return nil, err
			}
			return primary, nil
		}
		if err := Ping(ctx, client); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable at startup, writes fail until it recovers")
		}
		return NewFailoverBlobStore(primary, NewMemoryBlobStore(), logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

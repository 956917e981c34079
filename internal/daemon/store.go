package daemon

import (
	"context"
	"fmt"

	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/infra/postgres"
	"github.com/sleepsheep/sheep/internal/infra/redisstore"
	"github.com/sleepsheep/sheep/internal/infra/sqlite"
	"github.com/sleepsheep/sheep/internal/logging"
)

// OpenStore opens the backend named in cfg.Storage.
func OpenStore(ctx context.Context, cfg StorageConfig, log logging.Logger) (domain.Store, error) {
	switch cfg.Backend {
	case "", BackendSQLite:
		dir := cfg.Dir
		if dir == "" {
			dir = sheepHome()
		}
		db, err := sqlite.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil

	case BackendPostgres:
		st, err := postgres.Open(ctx, cfg.PostgresDSN, log)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return st, nil

	case BackendRedis:
		st, err := redisstore.Open(ctx, redisstore.Config{
			Addr:   cfg.RedisAddr,
			DB:     cfg.RedisDB,
			Prefix: cfg.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		return st, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tair/furniture-storefront/internal/config"
	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/pkg/database"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// Backend is an opened key-value store plus the function releasing its connections
type Backend struct {
	Store domain.KeyValueStore
	Close func() error
}

// NewKeyValueStore opens the backend selected by cfg.Storage. The returned
// store is wrapped with tracing; its keys are not yet scoped to a visitor.
func NewKeyValueStore(ctx context.Context, cfg *config.Config) (*Backend, error) {
	var store domain.KeyValueStore
	closeFn := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store = NewMemoryStore(cfg.Storage.QuotaBytes)

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = NewRedisStore(client, cfg.Storage.Namespace)
		closeFn = client.Close

	case config.BackendGorm:
		db, err := database.NewGormConnection(cfg.Database)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		gs := NewGormStore(db)
		if err := gs.AutoMigrate(); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		store = gs
		closeFn = sqlDB.Close

	case config.BackendPostgres, config.BackendSQLite:
		db, dialect, err := openSQL(cfg)
		if err != nil {
			return nil, err
		}
		ss := NewSQLStore(db, dialect)
		if err := ss.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		store = ss
		closeFn = db.Close

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	logger.Logger.Info().
		Str("backend", cfg.Storage.Backend).
		Msg("Favorites storage ready")

	return &Backend{
		Store: NewTracingStore(store, cfg.Storage.Backend),
		Close: closeFn,
	}, nil
}

func openSQL(cfg *config.Config) (*sql.DB, Dialect, error) {
	if cfg.Storage.Backend == config.BackendSQLite {
		db, err := database.NewSQLiteConnection(cfg.Storage.SQLitePath)
		return db, SQLiteDialect, err
	}
	db, err := database.NewPostgresConnection(cfg.Database)
	return db, PostgresDialect, err
}

// Package bootstrap opens the configured stores and Redis for the server and tools.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/mrJackie7/coderdev-hub/internal/cache"
	"github.com/mrJackie7/coderdev-hub/internal/config"
	"github.com/mrJackie7/coderdev-hub/internal/database"
	"github.com/mrJackie7/coderdev-hub/internal/middleware"
	"github.com/mrJackie7/coderdev-hub/internal/repository"
	"github.com/mrJackie7/coderdev-hub/internal/repository/mongostore"

	"github.com/redis/go-redis/v9"
)

// InitRuntime connects the store selected by STORE_DRIVER and Redis.
// The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config) (*repository.Stores, *redis.Client, error) {
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)

	return stores, cache.GetClient(), nil
}

// OpenStores connects the repositories for cfg.StoreDriver.
func OpenStores(ctx context.Context, cfg *config.Config) (*repository.Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("document store connection failed: %w", err)
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = database.DisconnectMongo(client)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return mongostore.NewMongoStores(client, db), nil
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		middleware.Logger.InfoContext(ctx, "relational store ready", "driver", db.Dialector.Name())
		return repository.NewGormStores(db), nil
	}
}

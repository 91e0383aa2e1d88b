package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/caddyboard/internal/catalog"
	"github.com/MrSnakeDoc/caddyboard/internal/config"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
	"github.com/MrSnakeDoc/caddyboard/internal/redis"
	redisstore "github.com/MrSnakeDoc/caddyboard/internal/store/redis"
	"github.com/MrSnakeDoc/caddyboard/internal/store/snapshot"
	"github.com/MrSnakeDoc/caddyboard/internal/utils"
)

// Backend is the snapshot store selected by configuration.
type Backend struct {
	Store catalog.SnapshotStore
	Redis *goredis.Client   // nil with the file backend
	Meta  *redisstore.Store // last-write metadata, nil with the file backend
}

// OpenBackend opens the configured snapshot store. With the redis backend it
// connects (with retries) before returning.
func OpenBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (*Backend, error) {
	switch cfg.SnapshotBackend {
	case config.BackendRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Info("Redis initialized successfully")
		store := redisstore.NewStore(client)
		return &Backend{Store: store, Redis: client, Meta: store}, nil

	case config.BackendFile, "":
		log.Info("using file snapshot", logger.String("path", cfg.DBFile))
		return &Backend{Store: snapshot.NewFileStore(cfg.DBFile)}, nil

	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}
}

// Close releases the redis connection, if any.
func (b *Backend) Close(log logger.Logger) {
	if b.Redis != nil {
		utils.MustClose(b.Redis, log, "redis")
	}
}

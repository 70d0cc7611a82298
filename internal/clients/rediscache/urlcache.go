package rediscache

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/utils"
)

// URLCache memoizes signed read URLs by storage path. The TTL handed to Set
// must stay below the signed URL's own expiry so a cached entry never
// outlives the grant. Optional collaborator: services tolerate a nil cache.
type URLCache interface {
	Get(ctx context.Context, storagePath string) (string, bool)
	Set(ctx context.Context, storagePath, url string, ttl time.Duration)
	Close() error
}

type urlCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewURLCache(log *logger.Logger) (URLCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &urlCache{
		log:    log.With("service", "RedisURLCache"),
		rdb:    rdb,
		prefix: "signed_url:",
	}, nil
}

func (c *urlCache) Get(ctx context.Context, storagePath string) (string, bool) {
	val, err := c.rdb.Get(ctx, c.prefix+storagePath).Result()
	if err == goredis.Nil {
		return "", false
	}
	if err != nil {
		c.log.Warn("signed url cache read failed", "error", err)
		return "", false
	}
	return val, true
}

func (c *urlCache) Set(ctx context.Context, storagePath, url string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+storagePath, url, ttl).Err(); err != nil {
		c.log.Warn("signed url cache write failed", "error", err)
	}
}

func (c *urlCache) Close() error {
	return c.rdb.Close()
}

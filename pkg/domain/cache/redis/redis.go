package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opst/mlpipe/pkg/domain"
	"github.com/opst/mlpipe/pkg/domain/cache"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultPrefix = "mlpipe:execution:"
	DefaultTTL    = 24 * time.Hour
)

type Config struct {
	Addr     string
	Password string
	DB       int

	// TTL of cached executions. DefaultTTL when it is not positive.
	TTL time.Duration

	// Prefix of keys. DefaultPrefix when empty.
	Prefix string
}

type redisCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

var _ cache.Cache = &redisCache{}

// Connect creates a client for conf and pings the server.
func Connect(ctx context.Context, conf Config, logger *zap.Logger) (*redisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s is not reachable: %w", conf.Addr, err)
	}
	return New(client, conf, logger), nil
}

func New(client *goredis.Client, conf Config, logger *zap.Logger) *redisCache {
	prefix := conf.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	ttl := conf.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "execution-cache")),
	}
}

func (r *redisCache) Lookup(ctx context.Context, fingerprint string) (domain.CachedExecution, error) {
	data, err := r.client.Get(ctx, r.prefix+fingerprint).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.CachedExecution{}, cache.ErrCacheMiss
	} else if err != nil {
		return domain.CachedExecution{}, err
	}

	e := domain.CachedExecution{}
	if err := json.Unmarshal(data, &e); err != nil {
		r.logger.Warn("broken cache entry", zap.String("fingerprint", fingerprint), zap.Error(err))
		return domain.CachedExecution{}, fmt.Errorf("%w: broken entry: %w", cache.ErrCacheMiss, err)
	}

	r.logger.Debug("cache hit", zap.String("fingerprint", fingerprint), zap.Int64("execution_id", e.ExecutionId))
	return e, nil
}

func (r *redisCache) Store(ctx context.Context, fingerprint string, execution domain.CachedExecution) error {
	data, err := json.Marshal(execution)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+fingerprint, data, r.ttl).Err(); err != nil {
		return err
	}
	r.logger.Debug(
		"cached", zap.String("fingerprint", fingerprint),
		zap.Int64("execution_id", execution.ExecutionId), zap.Duration("ttl", r.ttl),
	)
	return nil
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

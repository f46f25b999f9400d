package common

import (
	"context"
	"errors"
	"fmt"
	"os"

	kconf "github.com/opst/mlpipe/pkg/configs/mlpipe"
	"github.com/opst/mlpipe/pkg/domain/artifact/db/open"
	"github.com/opst/mlpipe/pkg/domain/cache"
	"github.com/opst/mlpipe/pkg/domain/cache/memory"
	"github.com/opst/mlpipe/pkg/domain/cache/redis"
	"github.com/opst/mlpipe/pkg/logging"
	"github.com/youta-t/flarc"
	"go.uber.org/zap"
)

type Task[T any] func(
	ctx context.Context,
	logger *zap.Logger,
	conf *kconf.Config,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTask loads the config file specified by common flags, and then runs task.
//
// The logger writes to stderr of the command line.
func NewTask[T any](task Task[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		conf, err := kconf.LoadConfig(commonFlag.Config)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: config file (%s) is not found. Use --config or %s", err, commonFlag.Config, EnvConfig)
			}
			return fmt.Errorf("%w: failed to load config (%s)", err, commonFlag.Config)
		}

		logger, err := logging.NewTo(conf.Log().Level(), cl.Stderr())
		if err != nil {
			return err
		}
		defer logger.Sync()

		return task(ctx, logger.With(zap.String("command", cl.Fullname())), conf, cl, newpos)
	}
}

type StoreOpener func(ctx context.Context, conf *kconf.Config) (open.Store, error)

// OpenStore opens the metadata store in config.
//
// It returns kconf.ErrMisconfigured when metadata.uri is not configured.
func OpenStore(ctx context.Context, conf *kconf.Config) (open.Store, error) {
	uri, err := conf.Metadata().StoreUri()
	if err != nil {
		return nil, err
	}
	options := []open.Option{}
	if conf.Metadata().Gorm() {
		options = append(options, open.WithGorm())
	}
	return open.Open(ctx, uri, options...)
}

type CacheOpener func(ctx context.Context, conf *kconf.Config, logger *zap.Logger) (cache.Cache, func() error, error)

// OpenCache connects to redis in config.
//
// When redis is not configured, the cache is in memory and lives only in the process.
// Such a cache is cache.IsVolatile.
func OpenCache(ctx context.Context, conf *kconf.Config, logger *zap.Logger) (cache.Cache, func() error, error) {
	r := conf.Cache().Redis()
	if r == nil {
		logger.Debug("redis is not configured. cache is in memory")
		return memory.New(), func() error { return nil }, nil
	}
	c, err := redis.Connect(ctx, redis.Config{
		Addr: r.Addr(), Password: r.Password(), DB: r.DB(), TTL: r.TTL(),
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

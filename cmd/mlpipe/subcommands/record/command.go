package record

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opst/mlpipe/cmd/mlpipe/subcommands/common"
	kconf "github.com/opst/mlpipe/pkg/configs/mlpipe"
	"github.com/opst/mlpipe/pkg/domain"
	"github.com/opst/mlpipe/pkg/domain/cache"
	"github.com/opst/mlpipe/pkg/driver"
	"github.com/opst/mlpipe/pkg/metrics"
	"github.com/youta-t/flarc"
	"go.uber.org/zap"
)

type Option struct {
	openCache common.CacheOpener
}

func WithCacheOpener(openCache common.CacheOpener) func(*Option) *Option {
	return func(o *Option) *Option {
		o.openCache = openCache
		return o
	}
}

const (
	ARG_REQUEST      = "REQUEST"
	ARG_EXECUTION_ID = "EXECUTION_ID"
)

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{openCache: common.OpenCache}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Remember a finished execution for caching.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_REQUEST, Required: true,
				Help: `yaml file of the request which has been executed. "-" for stdin`,
			},
			{
				Name: ARG_EXECUTION_ID, Required: true,
				Help: "id of the finished execution",
			},
		},
		common.NewTask(Task(option.openCache)),
		flarc.WithDescription(`
Remember a finished execution for caching.

Later "mlpipe prepare" with the same inputs, outputs and execution properties
finds the execution. It prints the fingerprint of the request.

Executions are recorded in redis (cache.redis in config).
Without redis, this command fails, since nothing outlives the process.
`),
	)
}

func Task(openCache common.CacheOpener) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *zap.Logger,
		conf *kconf.Config,
		cl flarc.Commandline[struct{}],
		_ []any,
	) error {
		path := cl.Args()[ARG_REQUEST][0]
		executionId, err := strconv.ParseInt(cl.Args()[ARG_EXECUTION_ID][0], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s should be an integer", flarc.ErrUsage, ARG_EXECUTION_ID)
		}

		req, err := common.ReadRequest(cl.Stdin(), path)
		if err != nil {
			return err
		}
		in, out, props, _, err := req.ToDomain()
		if err != nil {
			return fmt.Errorf("%w: %s", err, path)
		}

		fingerprint, err := driver.Fingerprint(in, out, props)
		if err != nil {
			return err
		}

		c, closeCache, err := openCache(ctx, conf, logger)
		if err != nil {
			return err
		}
		defer closeCache()

		if cache.IsVolatile(c) {
			return fmt.Errorf(
				"%w: the execution would be lost when this command exits. configure cache.redis to record executions",
				cache.ErrNotPersistent,
			)
		}

		caching := driver.NewDefaultCaching(c, logger, metrics.Nop())
		if err := caching.Record(ctx, fingerprint, domain.CachedExecution{
			ExecutionId:    executionId,
			ExecProperties: props,
			OutputDict:     out,
		}); err != nil {
			return err
		}

		_, err = fmt.Fprintln(cl.Stdout(), fingerprint)
		return err
	}
}

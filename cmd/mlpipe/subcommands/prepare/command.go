package prepare

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opst/mlpipe/cmd/mlpipe/subcommands/common"
	"github.com/opst/mlpipe/pkg/api/types/executions"
	kconf "github.com/opst/mlpipe/pkg/configs/mlpipe"
	"github.com/opst/mlpipe/pkg/driver"
	"github.com/opst/mlpipe/pkg/driver/modelvalidator"
	"github.com/opst/mlpipe/pkg/metrics"
	"github.com/youta-t/flarc"
	"go.uber.org/zap"
)

type Option struct {
	openStore common.StoreOpener
	openCache common.CacheOpener
}

func WithOpeners(openStore common.StoreOpener, openCache common.CacheOpener) func(*Option) *Option {
	return func(o *Option) *Option {
		o.openStore = openStore
		o.openCache = openCache
		return o
	}
}

const ARG_REQUEST = "REQUEST"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		openStore: common.OpenStore,
		openCache: common.OpenCache,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Decide how to run a model validator step.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_REQUEST, Required: true,
				Help: `yaml file of the request. "-" for stdin`,
			},
		},
		common.NewTask(Task(option.openStore, option.openCache)),
		flarc.WithDescription(`
Decide how to run a model validator step, and print the decision as json.

The request yaml has "input_dict", "output_dict", "exec_properties" and "enable_cache".
"exec_properties" should have "component_unique_name".

When the execution is found in the cache, the decision has its "execution_id"
and the last blessed model is resolved again into "exec_properties".
`),
	)
}

func Task(openStore common.StoreOpener, openCache common.CacheOpener) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *zap.Logger,
		conf *kconf.Config,
		cl flarc.Commandline[struct{}],
		_ []any,
	) error {
		path := cl.Args()[ARG_REQUEST][0]
		req, err := common.ReadRequest(cl.Stdin(), path)
		if err != nil {
			return err
		}
		in, out, props, args, err := req.ToDomain()
		if err != nil {
			return fmt.Errorf("%w: %s", err, path)
		}

		store, err := openStore(ctx, conf)
		if err != nil {
			return err
		}
		defer store.Close()

		cache, closeCache, err := openCache(ctx, conf, logger)
		if err != nil {
			return err
		}
		defer closeCache()

		m := metrics.Nop()
		d := modelvalidator.NewDriver(
			modelvalidator.NewResolver(
				store, modelvalidator.WithLogger(logger), modelvalidator.WithMetrics(m),
			),
			driver.NewDefaultCaching(cache, logger, m),
			logger,
		)

		decision, err := d.PrepareExecution(ctx, in, out, props, args)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(executions.ComposeDecision(decision))
	}
}

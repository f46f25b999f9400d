package check

import (
	"context"
	"fmt"

	"github.com/opst/mlpipe/cmd/mlpipe/subcommands/common"
	kconf "github.com/opst/mlpipe/pkg/configs/mlpipe"
	"github.com/opst/mlpipe/pkg/engine"
	"github.com/opst/mlpipe/pkg/engine/airflow"
	"github.com/opst/mlpipe/pkg/engine/kubeflow"
	"github.com/youta-t/flarc"
	"go.uber.org/zap"
)

type Flags struct {
	Engine string `flag:"engine" metavar:"airflow|kubeflow|auto" help:"orchestration engine. When not set, engine in config is used."`
}

type Option struct {
	packages engine.PackageLister
}

// WithPackageLister replaces the way to list installed python packages for "auto".
func WithPackageLister(p engine.PackageLister) func(*Option) *Option {
	return func(o *Option) *Option {
		o.packages = p
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Check the orchestration engine is ready.",
		Flags{},
		flarc.Args{},
		common.NewTask(Task(option.packages)),
		flarc.WithDescription(`
Check the orchestration engine is ready.

With "auto", the engine is detected from installed python packages:
"apache-airflow" for airflow, and "kfp" for kubeflow.
`),
	)
}

// Task checks the engine.
//
// When packages is nil, installed packages are listed by "pip freeze"
// with the python in config.
func Task(packages engine.PackageLister) common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *zap.Logger,
		conf *kconf.Config,
		cl flarc.Commandline[Flags],
		_ []any,
	) error {
		flags := &engine.Flags{
			Engine:   cl.Flags().Engine,
			Airflow:  airflow.Config{Home: conf.Airflow().Home()},
			Kubeflow: kubeflow.Config{Namespace: conf.Kubeflow().Namespace(), Kubeconfig: conf.Kubeflow().Kubeconfig()},
			Packages: packages,
		}
		if flags.Engine == "" {
			flags.Engine = conf.Engine()
		}
		if flags.Packages == nil {
			flags.Packages = engine.PipFreeze{Python: conf.Python()}
		}

		handler, err := engine.CreateHandler(ctx, flags)
		if err != nil {
			return err
		}
		logger.Debug("engine is selected", zap.String("engine", handler.Engine()))

		if err := handler.Check(ctx); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cl.Stdout(), "%s is ready.\n", handler.Engine())
		return err
	}
}

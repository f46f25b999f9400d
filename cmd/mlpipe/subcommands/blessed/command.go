package blessed

import (
	"context"
	"encoding/json"

	"github.com/opst/mlpipe/cmd/mlpipe/subcommands/common"
	apiartifacts "github.com/opst/mlpipe/pkg/api/types/artifacts"
	kconf "github.com/opst/mlpipe/pkg/configs/mlpipe"
	"github.com/opst/mlpipe/pkg/driver/modelvalidator"
	"github.com/youta-t/flarc"
	"go.uber.org/zap"
)

type Option struct {
	openStore common.StoreOpener
}

func WithStoreOpener(openStore common.StoreOpener) func(*Option) *Option {
	return func(o *Option) *Option {
		o.openStore = openStore
		return o
	}
}

const ARG_COMPONENT = "COMPONENT_UNIQUE_NAME"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{openStore: common.OpenStore}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Show the last blessed model of a model validator.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_COMPONENT, Required: true,
				Help: "unique name of the model validator component",
			},
		},
		common.NewTask(Task(option.openStore)),
		flarc.WithDescription(`
Show the last blessed model of a model validator.

The blessed model is the one blessed by the model validator with the largest span.
When nothing is blessed, "blessed_model" and "blessed_model_id" are null.
`),
	)
}

func Task(openStore common.StoreOpener) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *zap.Logger,
		conf *kconf.Config,
		cl flarc.Commandline[struct{}],
		_ []any,
	) error {
		component := cl.Args()[ARG_COMPONENT][0]

		store, err := openStore(ctx, conf)
		if err != nil {
			return err
		}
		defer store.Close()

		resolver := modelvalidator.NewResolver(store, modelvalidator.WithLogger(logger))
		blessed, err := resolver.FetchLastBlessedModel(ctx, component)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(apiartifacts.ComposeBlessedModel(component, blessed))
	}
}

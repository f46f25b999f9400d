package modelvalidator

import (
	"context"

	"github.com/opst/mlpipe/pkg/domain"
	"github.com/opst/mlpipe/pkg/driver"
	"go.uber.org/zap"
)

type Driver struct {
	resolver BlessedModelResolver
	caching  driver.CachingHandler
	logger   *zap.Logger
}

func NewDriver(resolver BlessedModelResolver, caching driver.CachingHandler, logger *zap.Logger) *Driver {
	return &Driver{
		resolver: resolver,
		caching:  caching,
		logger:   logger.With(zap.String("component", "model-validator")),
	}
}

// ResolveExecProperties sets the last blessed model of the component into execProperties.
//
// The component is identified by componentInfo.ComponentId.
// execProperties is updated in place and returned.
func (d *Driver) ResolveExecProperties(
	ctx context.Context,
	execProperties domain.ExecProperties,
	componentInfo domain.ComponentInfo,
) (domain.ExecProperties, error) {
	if execProperties == nil {
		execProperties = domain.ExecProperties{}
	}

	blessed, err := d.resolver.FetchLastBlessedModel(ctx, componentInfo.ComponentId)
	if err != nil {
		return nil, err
	}
	execProperties.SetBlessedModel(blessed)

	d.logger.Info("resolved last blessed model", zap.Stringer("blessed_model", blessed))
	return execProperties, nil
}

// PrepareExecution makes an execution decision with the caching handler,
// and then, when the decision has an execution id, re-resolves the last blessed model.
//
// The component is identified by "component_unique_name" in properties of the decision.
//
// A decision without execution id is returned as the caching handler made.
func (d *Driver) PrepareExecution(
	ctx context.Context,
	inputDict domain.ArtifactDict,
	outputDict domain.ArtifactDict,
	execProperties domain.ExecProperties,
	args domain.DriverArgs,
) (domain.ExecutionDecision, error) {
	decision, err := d.caching.Handle(ctx, inputDict, outputDict, execProperties, args)
	if err != nil {
		return domain.ExecutionDecision{}, err
	}

	componentUniqueName, err := decision.ExecProperties.ComponentUniqueName()
	if err != nil {
		return domain.ExecutionDecision{}, err
	}

	if decision.ExecutionId == nil {
		return decision, nil
	}

	blessed, err := d.resolver.FetchLastBlessedModel(ctx, componentUniqueName)
	if err != nil {
		return domain.ExecutionDecision{}, err
	}
	decision.ExecProperties.SetBlessedModel(blessed)

	d.logger.Info(
		"resolved last blessed model",
		zap.Int64("execution_id", *decision.ExecutionId),
		zap.Stringer("blessed_model", blessed),
	)
	return decision, nil
}

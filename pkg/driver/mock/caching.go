package mock

import (
	"context"
	"errors"

	"github.com/opst/mlpipe/pkg/domain"
	"github.com/opst/mlpipe/pkg/driver"
)

type HandleArgs struct {
	InputDict      domain.ArtifactDict
	OutputDict     domain.ArtifactDict
	ExecProperties domain.ExecProperties
	Args           domain.DriverArgs
}

type CachingHandler struct {
	Impl struct {
		Handle func(
			ctx context.Context,
			inputDict domain.ArtifactDict,
			outputDict domain.ArtifactDict,
			execProperties domain.ExecProperties,
			args domain.DriverArgs,
		) (domain.ExecutionDecision, error)
	}
	Calls struct {
		Handle []HandleArgs
	}
}

var _ driver.CachingHandler = &CachingHandler{}

func NewCachingHandler() *CachingHandler {
	return &CachingHandler{}
}

func (m *CachingHandler) Handle(
	ctx context.Context,
	inputDict domain.ArtifactDict,
	outputDict domain.ArtifactDict,
	execProperties domain.ExecProperties,
	args domain.DriverArgs,
) (domain.ExecutionDecision, error) {
	m.Calls.Handle = append(m.Calls.Handle, HandleArgs{
		InputDict: inputDict, OutputDict: outputDict,
		ExecProperties: execProperties, Args: args,
	})
	if m.Impl.Handle != nil {
		return m.Impl.Handle(ctx, inputDict, outputDict, execProperties, args)
	}
	panic(errors.New("it should no be called"))
}

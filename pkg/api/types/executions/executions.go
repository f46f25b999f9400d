package executions

import (
	apiartifacts "github.com/opst/mlpipe/pkg/api/types/artifacts"
	"github.com/opst/mlpipe/pkg/domain"
)

// Request is an invocation of a pipeline step.
type Request struct {
	InputDict      map[string][]apiartifacts.Detail `json:"input_dict" yaml:"input_dict"`
	OutputDict     map[string][]apiartifacts.Detail `json:"output_dict" yaml:"output_dict"`
	ExecProperties map[string]any                   `json:"exec_properties" yaml:"exec_properties"`
	EnableCache    bool                             `json:"enable_cache" yaml:"enable_cache"`
}

// Decision is the wire format of domain.ExecutionDecision.
type Decision struct {
	// null unless a prior execution has been found.
	ExecutionId    *int64                           `json:"execution_id"`
	InputDict      map[string][]apiartifacts.Detail `json:"input_dict"`
	OutputDict     map[string][]apiartifacts.Detail `json:"output_dict"`
	ExecProperties map[string]any                   `json:"exec_properties"`
}

func parseDict(d map[string][]apiartifacts.Detail) (domain.ArtifactDict, error) {
	result := make(domain.ArtifactDict, len(d))
	for k, details := range d {
		artifacts := make([]domain.Artifact, 0, len(details))
		for _, detail := range details {
			a, err := detail.ToDomain()
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, a)
		}
		result[k] = artifacts
	}
	return result, nil
}

func composeDict(d domain.ArtifactDict) map[string][]apiartifacts.Detail {
	result := make(map[string][]apiartifacts.Detail, len(d))
	for k, artifacts := range d {
		details := make([]apiartifacts.Detail, 0, len(artifacts))
		for _, a := range artifacts {
			details = append(details, apiartifacts.ComposeDetail(a))
		}
		result[k] = details
	}
	return result
}

// ToDomain converts the request into arguments of drivers.
//
// Integers in properties are read as int64.
func (r Request) ToDomain() (domain.ArtifactDict, domain.ArtifactDict, domain.ExecProperties, domain.DriverArgs, error) {
	in, err := parseDict(r.InputDict)
	if err != nil {
		return nil, nil, nil, domain.DriverArgs{}, err
	}
	out, err := parseDict(r.OutputDict)
	if err != nil {
		return nil, nil, nil, domain.DriverArgs{}, err
	}
	props := domain.ExecProperties{}
	for k, v := range r.ExecProperties {
		props[k] = asInt64(v)
	}
	return in, out, props, domain.DriverArgs{EnableCache: r.EnableCache}, nil
}

func asInt64(v any) any {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	default:
		return v
	}
}

func ComposeDecision(d domain.ExecutionDecision) Decision {
	props := map[string]any{}
	for k, v := range d.ExecProperties {
		props[k] = v
	}
	return Decision{
		ExecutionId:    d.ExecutionId,
		InputDict:      composeDict(d.InputDict),
		OutputDict:     composeDict(d.OutputDict),
		ExecProperties: props,
	}
}

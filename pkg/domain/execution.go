package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// execution property keys.
const (
	ExecPropComponentUniqueName = "component_unique_name"
	ExecPropBlessedModel        = "blessed_model"
	ExecPropBlessedModelId      = "blessed_model_id"
)

var ErrMissingComponentUniqueName = errors.New("component_unique_name is missing in execution properties")

// ArtifactDict maps a channel name to artifacts in the channel.
type ArtifactDict map[string][]Artifact

// ExecProperties is a mutable bag of execution properties.
type ExecProperties map[string]any

// ComponentUniqueName reads "component_unique_name".
//
// It returns ErrMissingComponentUniqueName when the key is missing or is not a string.
func (p ExecProperties) ComponentUniqueName() (string, error) {
	v, ok := p[ExecPropComponentUniqueName]
	if !ok {
		return "", ErrMissingComponentUniqueName
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: not a string (%T)", ErrMissingComponentUniqueName, v)
	}
	return s, nil
}

// SetBlessedModel writes "blessed_model" and "blessed_model_id".
//
// Absent reference is written as nil.
func (p ExecProperties) SetBlessedModel(b BlessedModel) {
	if b.Model == nil {
		p[ExecPropBlessedModel] = nil
	} else {
		p[ExecPropBlessedModel] = *b.Model
	}
	if b.ModelId == nil {
		p[ExecPropBlessedModelId] = nil
	} else {
		p[ExecPropBlessedModelId] = *b.ModelId
	}
}

// UnmarshalJSON reads integral numbers as int64, and other numbers as float64.
func (p *ExecProperties) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	raw := map[string]any{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	for k, v := range raw {
		raw[k] = fromJSONNumber(v)
	}
	*p = raw
	return nil
}

func fromJSONNumber(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []any:
		for i := range v {
			v[i] = fromJSONNumber(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = fromJSONNumber(v[k])
		}
		return v
	default:
		return v
	}
}

// ComponentInfo identifies a component instance in a pipeline.
type ComponentInfo struct {
	ComponentType string
	ComponentId   string
}

// DriverArgs are options passed from the orchestrator to drivers.
type DriverArgs struct {
	EnableCache bool
}

// ExecutionDecision is the outcome of a driver for a pipeline step invocation.
type ExecutionDecision struct {
	InputDict      ArtifactDict
	OutputDict     ArtifactDict
	ExecProperties ExecProperties

	// id of an execution. nil unless the caching layer has found a prior execution.
	ExecutionId *int64
}

// CachedExecution is a finished execution remembered by the caching layer.
type CachedExecution struct {
	ExecutionId    int64          `json:"execution_id"`
	ExecProperties ExecProperties `json:"exec_properties"`
	OutputDict     ArtifactDict   `json:"output_dict"`
	CachedAt       time.Time      `json:"cached_at"`
}

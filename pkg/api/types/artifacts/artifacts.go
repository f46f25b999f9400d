package artifacts

import (
	"github.com/opst/mlpipe/pkg/domain"
)

type Value struct {
	Type        string `json:"type" yaml:"type"`
	StringValue string `json:"string_value,omitempty" yaml:"string_value,omitempty"`
	IntValue    int64  `json:"int_value,omitempty" yaml:"int_value,omitempty"`
}

// Detail is the wire format of an artifact.
//
// It is also used in yaml files of the command line.
type Detail struct {
	Id               int64            `json:"id" yaml:"id"`
	TypeName         string           `json:"type_name" yaml:"type_name"`
	Uri              string           `json:"uri" yaml:"uri"`
	Span             int64            `json:"span" yaml:"span"`
	Properties       map[string]Value `json:"properties" yaml:"properties,omitempty"`
	CustomProperties map[string]Value `json:"custom_properties" yaml:"custom_properties,omitempty"`
}

// BlessedModel is the wire format of a resolved blessed model.
//
// Both of fields are null when there are no blessed models.
type BlessedModel struct {
	Component string  `json:"component_unique_name"`
	Model     *string `json:"blessed_model"`
	ModelId   *int64  `json:"blessed_model_id"`
}

func composeProperties(p domain.Properties) map[string]Value {
	result := make(map[string]Value, len(p))
	for k, v := range p {
		result[k] = Value{Type: string(v.Type), StringValue: v.StringValue, IntValue: v.IntValue}
	}
	return result
}

func ComposeDetail(a domain.Artifact) Detail {
	return Detail{
		Id:               a.Id,
		TypeName:         a.TypeName,
		Uri:              a.Uri,
		Span:             a.Span,
		Properties:       composeProperties(a.Properties),
		CustomProperties: composeProperties(a.CustomProperties),
	}
}

func ComposeBlessedModel(component string, b domain.BlessedModel) BlessedModel {
	return BlessedModel{Component: component, Model: b.Model, ModelId: b.ModelId}
}

func parseProperties(p map[string]Value) (domain.Properties, error) {
	result := make(domain.Properties, len(p))
	for k, v := range p {
		t, err := domain.AsValueType(v.Type)
		if err != nil {
			return nil, err
		}
		result[k] = domain.Value{Type: t, StringValue: v.StringValue, IntValue: v.IntValue}
	}
	return result, nil
}

// ToDomain converts Detail into domain.Artifact.
//
// It returns domain.ErrUnknownValueType when a property has unknown type,
// and domain.ErrInconsistentArtifact when span or type_name in properties
// disagree with the fields. Absent fields are filled from properties.
func (d Detail) ToDomain() (domain.Artifact, error) {
	props, err := parseProperties(d.Properties)
	if err != nil {
		return domain.Artifact{}, err
	}
	customProps, err := parseProperties(d.CustomProperties)
	if err != nil {
		return domain.Artifact{}, err
	}
	return domain.Artifact{
		Id:               d.Id,
		TypeName:         d.TypeName,
		Uri:              d.Uri,
		Span:             d.Span,
		Properties:       props,
		CustomProperties: customProps,
	}.Reconcile()
}

func (b BlessedModel) ToDomain() domain.BlessedModel {
	return domain.BlessedModel{Model: b.Model, ModelId: b.ModelId}
}

package domain

import (
	"errors"
	"fmt"
)

// Type tag of artifacts written by a model validation step.
const TypeModelBlessing = "ModelBlessingPath"

// well known property keys.
const (
	// system property: version/time marker of an artifact.
	PropSpan = "span"

	// system property: type tag. mirrored into Artifact.TypeName.
	PropTypeName = "type_name"

	// custom property: 1 when the model has passed validation.
	CustomBlessed = "blessed"

	// custom property: name of the component instance which produced the artifact.
	CustomComponentUniqueName = "component_unique_name"

	// custom property: uri of the model validated.
	CustomCurrentModel = "current_model"

	// custom property: id of the model validated.
	CustomCurrentModelId = "current_model_id"
)

var ErrUnknownValueType = errors.New("unknown value type")

// ErrInconsistentArtifact is returned when a field of Artifact and
// its mirror in Properties disagree.
var ErrInconsistentArtifact = errors.New("inconsistent artifact")

type ValueType string

const (
	StringType ValueType = "string"
	IntType    ValueType = "int"
)

func AsValueType(s string) (ValueType, error) {
	switch ValueType(s) {
	case StringType:
		return StringType, nil
	case IntType:
		return IntType, nil
	default:
		return ValueType(s), fmt.Errorf("%w: %s", ErrUnknownValueType, s)
	}
}

// Value is a typed property value of Artifact.
//
// Reading a value of the other type yields the zero value.
type Value struct {
	Type        ValueType `json:"type"`
	StringValue string    `json:"string_value,omitempty"`
	IntValue    int64     `json:"int_value,omitempty"`
}

func StringValue(s string) Value {
	return Value{Type: StringType, StringValue: s}
}

func IntValue(i int64) Value {
	return Value{Type: IntType, IntValue: i}
}

func (v Value) Equal(o Value) bool {
	return v.Type == o.Type &&
		v.StringValue == o.StringValue &&
		v.IntValue == o.IntValue
}

func (v Value) String() string {
	switch v.Type {
	case StringType:
		return v.StringValue
	case IntType:
		return fmt.Sprintf("%d", v.IntValue)
	default:
		return ""
	}
}

// Properties is a mapping from property key to its value.
//
// Missing keys read as zero Value, the same as the metadata store does.
type Properties map[string]Value

func (p Properties) Get(key string) Value {
	if p == nil {
		return Value{}
	}
	return p[key]
}

func (p Properties) Equal(o Properties) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Artifact is a record of a unit of pipeline output, tracked in a metadata store.
//
// Artifacts are immutable once registered.
type Artifact struct {
	// identifier assigned by the metadata store.
	//
	// Stores enumerate artifacts in ascending order of Id.
	Id int64 `json:"id"`

	TypeName string `json:"type_name"`
	Uri      string `json:"uri"`

	// version/time marker. Properties["span"] carries the same value.
	//
	// Use Reconcile to fill this from Properties.
	Span int64 `json:"span"`

	Properties       Properties `json:"properties,omitempty"`
	CustomProperties Properties `json:"custom_properties,omitempty"`
}

func (a *Artifact) Equal(o *Artifact) bool {
	if a == nil || o == nil {
		return a == nil && o == nil
	}
	return a.Id == o.Id &&
		a.TypeName == o.TypeName &&
		a.Uri == o.Uri &&
		a.Span == o.Span &&
		a.Properties.Equal(o.Properties) &&
		a.CustomProperties.Equal(o.CustomProperties)
}

// Reconcile fills TypeName and Span from Properties["type_name"] and
// Properties["span"] when the fields are zero.
//
// It returns ErrInconsistentArtifact when a field and its property are
// both set but differ, or the property has the wrong type.
func (a Artifact) Reconcile() (Artifact, error) {
	if v, ok := a.Properties[PropSpan]; ok {
		if v.Type != IntType {
			return Artifact{}, fmt.Errorf("%w: property %s is %s, not int", ErrInconsistentArtifact, PropSpan, v.Type)
		}
		if a.Span == 0 {
			a.Span = v.IntValue
		} else if a.Span != v.IntValue {
			return Artifact{}, fmt.Errorf(
				"%w: span is %d, but property %s is %d", ErrInconsistentArtifact, a.Span, PropSpan, v.IntValue,
			)
		}
	}
	if v, ok := a.Properties[PropTypeName]; ok {
		if v.Type != StringType {
			return Artifact{}, fmt.Errorf("%w: property %s is %s, not string", ErrInconsistentArtifact, PropTypeName, v.Type)
		}
		if a.TypeName == "" {
			a.TypeName = v.StringValue
		} else if a.TypeName != v.StringValue {
			return Artifact{}, fmt.Errorf(
				"%w: type name is %q, but property %s is %q", ErrInconsistentArtifact, a.TypeName, PropTypeName, v.StringValue,
			)
		}
	}
	return a, nil
}

// IsBlessingOf tells whether the artifact is a blessing marked "blessed"
// by the component instance componentUniqueName.
func (a *Artifact) IsBlessingOf(componentUniqueName string) bool {
	return a.TypeName == TypeModelBlessing &&
		a.CustomProperties.Get(CustomBlessed).IntValue == 1 &&
		a.CustomProperties.Get(CustomComponentUniqueName).StringValue == componentUniqueName
}

// BlessedModel is a model reference resolved from a blessing artifact.
//
// Both of fields are nil when no blessed model is found.
type BlessedModel struct {
	Model   *string
	ModelId *int64
}

// BlessedModelOf extracts the model reference from a blessing artifact.
func BlessedModelOf(a Artifact) BlessedModel {
	model := a.CustomProperties.Get(CustomCurrentModel).StringValue
	modelId := a.CustomProperties.Get(CustomCurrentModelId).IntValue
	return BlessedModel{Model: &model, ModelId: &modelId}
}

// Absent tells no blessed model has been resolved.
func (b BlessedModel) Absent() bool {
	return b.Model == nil && b.ModelId == nil
}

func (b BlessedModel) Equal(o BlessedModel) bool {
	if (b.Model == nil) != (o.Model == nil) || (b.ModelId == nil) != (o.ModelId == nil) {
		return false
	}
	if b.Model != nil && *b.Model != *o.Model {
		return false
	}
	if b.ModelId != nil && *b.ModelId != *o.ModelId {
		return false
	}
	return true
}

func (b BlessedModel) String() string {
	if b.Model == nil {
		return "None"
	}
	return *b.Model
}

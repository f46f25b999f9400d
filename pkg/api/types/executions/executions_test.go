package executions_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opst/mlpipe/pkg/api/types/executions"
	"github.com/opst/mlpipe/pkg/domain"
	"gopkg.in/yaml.v3"
)

func TestRequest_ToDomain(t *testing.T) {
	request := executions.Request{}
	if err := yaml.Unmarshal([]byte(`
input_dict:
  model:
    - id: 3
      type_name: ModelExportPath
      uri: /model/3
      custom_properties:
        span: {type: int, int_value: 2}
output_dict:
  blessing:
    - type_name: ModelBlessingPath
      uri: /blessing/new
exec_properties:
  component_unique_name: mv
  retries: 3
enable_cache: true
`), &request); err != nil {
		t.Fatal(err)
	}

	in, out, props, args, err := request.ToDomain()
	if err != nil {
		t.Fatal(err)
	}

	expectedIn := domain.ArtifactDict{
		"model": {{
			Id: 3, TypeName: "ModelExportPath", Uri: "/model/3",
			Properties:       domain.Properties{},
			CustomProperties: domain.Properties{"span": domain.IntValue(2)},
		}},
	}
	if diff := cmp.Diff(expectedIn, in); diff != "" {
		t.Errorf("input dict (-expected +actual):\n%s", diff)
	}
	if len(out["blessing"]) != 1 || out["blessing"][0].Uri != "/blessing/new" {
		t.Errorf("output dict: %+v", out)
	}
	if diff := cmp.Diff(domain.ExecProperties{"component_unique_name": "mv", "retries": int64(3)}, props); diff != "" {
		t.Errorf("exec properties (-expected +actual):\n%s", diff)
	}
	if !args.EnableCache {
		t.Error("cache should be enabled")
	}
}

func TestRequest_ToDomain_UnknownValueType(t *testing.T) {
	request := executions.Request{}
	if err := yaml.Unmarshal([]byte(`
input_dict:
  model:
    - id: 3
      properties:
        span: {type: float}
`), &request); err != nil {
		t.Fatal(err)
	}
	if _, _, _, _, err := request.ToDomain(); err == nil {
		t.Error("unknown value type should be rejected")
	}
}

func TestComposeDecision(t *testing.T) {
	id := int64(9)
	actual := executions.ComposeDecision(domain.ExecutionDecision{
		OutputDict:     domain.ArtifactDict{"blessing": {{Id: 1, TypeName: domain.TypeModelBlessing}}},
		ExecProperties: domain.ExecProperties{"blessed_model": nil},
		ExecutionId:    &id,
	})

	b, err := json.Marshal(actual)
	if err != nil {
		t.Fatal(err)
	}
	decoded := map[string]any{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["execution_id"] != 9.0 {
		t.Errorf("execution_id: %v", decoded["execution_id"])
	}
	props := decoded["exec_properties"].(map[string]any)
	if v, ok := props["blessed_model"]; !ok || v != nil {
		t.Errorf("blessed_model should be null: %+v", props)
	}
}

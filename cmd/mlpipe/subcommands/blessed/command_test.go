package blessed_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/opst/mlpipe/cmd/mlpipe/subcommands/blessed"
	"github.com/opst/mlpipe/cmd/mlpipe/subcommands/internal/commandline"
	apiartifacts "github.com/opst/mlpipe/pkg/api/types/artifacts"
	kconf "github.com/opst/mlpipe/pkg/configs/mlpipe"
	"github.com/opst/mlpipe/pkg/domain"
	mocks "github.com/opst/mlpipe/pkg/domain/artifact/db/mock"
	"github.com/opst/mlpipe/pkg/domain/artifact/db/open"
	"github.com/opst/mlpipe/pkg/utils/pointer"
	"github.com/opst/mlpipe/pkg/utils/try"
	"go.uber.org/zap"
)

type closableStore struct {
	*mocks.ArtifactInterface
	closed bool
}

func (c *closableStore) Close() error {
	c.closed = true
	return nil
}

func blessing(id int64, span int64, model int64, component string) domain.Artifact {
	return domain.Artifact{
		Id: id, TypeName: domain.TypeModelBlessing, Span: span,
		Properties:       domain.Properties{},
		CustomProperties: domain.Properties{
			domain.CustomBlessed:             domain.IntValue(1),
			domain.CustomComponentUniqueName: domain.StringValue(component),
			domain.CustomCurrentModel:        domain.StringValue(fmt.Sprintf("/model/%d", model)),
			domain.CustomCurrentModelId:      domain.IntValue(model),
		},
	}
}

func TestBlessedCommand(t *testing.T) {
	conf := try.To(kconf.Unmarshal([]byte(`metadata: {uri: "sqlite://:memory:"}`))).OrFatal(t)

	type when struct {
		component string
		artifacts []domain.Artifact
		err       error
	}
	type then struct {
		output apiartifacts.BlessedModel
		err    error
	}

	theory := func(when when, then then) func(*testing.T) {
		return func(t *testing.T) {
			store := &closableStore{ArtifactInterface: mocks.NewArtifactInterface()}
			store.Impl.GetAll = func(context.Context) ([]domain.Artifact, error) {
				return when.artifacts, when.err
			}

			stdout := new(strings.Builder)
			testee := blessed.Task(func(context.Context, *kconf.Config) (open.Store, error) {
				return store, nil
			})
			err := testee(
				context.Background(), zap.NewNop(), conf,
				commandline.MockCommandline[struct{}]{
					Fullname_: "mlpipe blessed",
					Stdout_:   stdout,
					Stderr_:   new(strings.Builder),
					Args_:     map[string][]string{blessed.ARG_COMPONENT: {when.component}},
				},
				[]any{},
			)

			if !store.closed {
				t.Error("store is not closed")
			}
			if then.err != nil {
				if !errors.Is(err, then.err) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			actual := apiartifacts.BlessedModel{}
			if err := json.Unmarshal([]byte(stdout.String()), &actual); err != nil {
				t.Fatal(err)
			}
			if actual.Component != then.output.Component ||
				!actual.ToDomain().Equal(then.output.ToDomain()) {
				t.Errorf("output: (actual, expected) = (%+v, %+v)", actual, then.output)
			}
		}
	}

	t.Run("it prints the blessed model with the largest span", theory(
		when{
			component: "mv",
			artifacts: []domain.Artifact{
				blessing(1, 3, 1, "mv"),
				blessing(2, 7, 2, "mv"),
				blessing(3, 9, 3, "other"),
			},
		},
		then{
			output: apiartifacts.BlessedModel{
				Component: "mv", Model: pointer.Ref("/model/2"), ModelId: pointer.Ref[int64](2),
			},
		},
	))

	t.Run("it prints nulls when nothing is blessed", theory(
		when{component: "mv", artifacts: []domain.Artifact{}},
		then{output: apiartifacts.BlessedModel{Component: "mv"}},
	))

	expectedErr := errors.New("fake error")
	t.Run("it returns an error from the store", theory(
		when{component: "mv", err: expectedErr},
		then{err: expectedErr},
	))
}

package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/opst/mlpipe/pkg/engine"
	"github.com/opst/mlpipe/pkg/engine/airflow"
	"github.com/opst/mlpipe/pkg/engine/kubeflow"
)

func TestCreateHandler(t *testing.T) {
	t.Run("airflow", func(t *testing.T) {
		h, err := engine.CreateHandler(context.Background(), &engine.Flags{Engine: "airflow"})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := h.(*airflow.Handler); !ok {
			t.Errorf("unexpected handler: %T", h)
		}
	})

	t.Run("kubeflow", func(t *testing.T) {
		h, err := engine.CreateHandler(context.Background(), &engine.Flags{Engine: "kubeflow"})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := h.(*kubeflow.Handler); !ok {
			t.Errorf("unexpected handler: %T", h)
		}
	})

	t.Run("other engines are not supported", func(t *testing.T) {
		_, err := engine.CreateHandler(context.Background(), &engine.Flags{Engine: "beam"})
		if err == nil {
			t.Fatal("error is expected")
		}
		if !errors.Is(err, engine.ErrUnsupportedEngine) {
			t.Errorf("unexpected error: %v", err)
		}
		if err.Error() != "Engine beam is not supported." {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})
}

func TestDetectHandler(t *testing.T) {
	type Then struct {
		engine  string
		message string
	}

	theory := func(packages string, then Then) func(*testing.T) {
		return func(t *testing.T) {
			flags := &engine.Flags{Engine: "auto", Packages: engine.PackageList(packages)}

			for name, create := range map[string]func(context.Context, *engine.Flags) (engine.Handler, error){
				"DetectHandler": engine.DetectHandler,
				"CreateHandler": engine.CreateHandler,
			} {
				flags.Engine = "auto"
				h, err := create(context.Background(), flags)

				if then.message != "" {
					var exit *engine.ExitError
					if !errors.As(err, &exit) {
						t.Fatalf("%s: ExitError is expected: %v", name, err)
					}
					if exit.Message != then.message || exit.Code != 1 {
						t.Errorf("%s: unexpected exit: %+v", name, exit)
					}
					continue
				}

				if err != nil {
					t.Fatalf("%s: %v", name, err)
				}
				if h.Engine() != then.engine {
					t.Errorf("%s: engine: (actual, expected) = (%s, %s)", name, h.Engine(), then.engine)
				}
				if flags.Engine != then.engine {
					t.Errorf("%s: flag is not updated: %s", name, flags.Engine)
				}
			}
		}
	}

	t.Run("airflow is detected", theory(
		"absl-py==0.7.1\nalembic==0.9.10\napache-airflow==1.10.3\n",
		Then{engine: "airflow"},
	))
	t.Run("kubeflow is detected", theory(
		"absl-py==0.7.1\nkfp==0.1\nkfp-server-api==0.1.18\n",
		Then{engine: "kubeflow"},
	))
	t.Run("no orchestrators", theory(
		"absl-py==0.7.1\nalembic==0.9.10\n",
		Then{message: "Orchestrator missing in the environment."},
	))
	t.Run("empty package list", theory(
		"",
		Then{message: "Orchestrator missing in the environment."},
	))
	t.Run("multiple orchestrators", theory(
		"absl-py==0.7.1\nadal==1.2.1\nalembic==0.9.10\napache-airflow==1.10.3\napache-beam==2.12.0\nkfp==0.1\n",
		Then{message: "Multiple orchestrators found. Choose one using --engine flag."},
	))

	t.Run("errors of the lister are returned", func(t *testing.T) {
		expectedErr := errors.New("fake error")
		_, err := engine.DetectHandler(context.Background(), &engine.Flags{Engine: "auto", Packages: failingLister{err: expectedErr}})
		if !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

type failingLister struct{ err error }

func (f failingLister) ListPackages(context.Context) (string, error) {
	return "", f.err
}

func TestDetectEngines(t *testing.T) {
	for packages, expected := range map[string][]string{
		"":                             {},
		"apache-airflow==1.10.3":       {"airflow"},
		"  apache-airflow==1.10.3  \n": {"airflow"},
		"kfp==0.1\napache-airflow==2":  {"airflow", "kubeflow"},
		"kfp==0.1\nkfp-server-api==1":  {"kubeflow"},
		"apache-beam==2.12.0":          {},
	} {
		actual := engine.DetectEngines(packages)
		if len(actual) != len(expected) {
			t.Errorf("%q: (actual, expected) = (%v, %v)", packages, actual, expected)
			continue
		}
		for i := range actual {
			if actual[i] != expected[i] {
				t.Errorf("%q: (actual, expected) = (%v, %v)", packages, actual, expected)
			}
		}
	}
}

// Package engine selects the orchestration engine which runs pipelines.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opst/mlpipe/pkg/engine/airflow"
	"github.com/opst/mlpipe/pkg/engine/kubeflow"
)

const (
	Airflow  = airflow.Engine
	Kubeflow = kubeflow.Engine

	// Auto detects the engine from installed packages.
	Auto = "auto"
)

// package name prefixes which indicate engines are installed.
const (
	AirflowPackage  = "apache-airflow"
	KubeflowPackage = "kfp"
)

var ErrUnsupportedEngine = errors.New("unsupported engine")

// unsupportedEngine is ErrUnsupportedEngine with the user facing message.
type unsupportedEngine struct {
	engine string
}

func (u unsupportedEngine) Error() string {
	return fmt.Sprintf("Engine %s is not supported.", u.engine)
}

func (u unsupportedEngine) Is(err error) bool {
	return err == ErrUnsupportedEngine
}

// ExitError is a fatal error. Its message is shown to users verbatim,
// and the process should exit with Code.
type ExitError struct {
	Message string
	Code    int
}

func (e *ExitError) Error() string {
	return e.Message
}

var (
	errMultipleOrchestrators = &ExitError{Message: "Multiple orchestrators found. Choose one using --engine flag.", Code: 1}
	errMissingOrchestrator   = &ExitError{Message: "Orchestrator missing in the environment.", Code: 1}
)

type Handler interface {
	// Engine name. "airflow" or "kubeflow".
	Engine() string

	// Check verifies the engine is ready to use.
	Check(ctx context.Context) error
}

var _ Handler = &airflow.Handler{}
var _ Handler = &kubeflow.Handler{}

type Flags struct {
	// "airflow", "kubeflow" or "auto".
	Engine string

	Airflow  airflow.Config
	Kubeflow kubeflow.Config

	// Packages lists installed packages for "auto". PipFreeze{} when nil.
	Packages PackageLister
}

// CreateHandler creates a handler for flags.Engine.
//
// For "auto", it detects the engine with DetectHandler.
func CreateHandler(ctx context.Context, flags *Flags) (Handler, error) {
	switch flags.Engine {
	case Airflow:
		return airflow.New(flags.Airflow), nil
	case Kubeflow:
		return kubeflow.New(flags.Kubeflow), nil
	case Auto:
		return DetectHandler(ctx, flags)
	default:
		return nil, unsupportedEngine{engine: flags.Engine}
	}
}

// DetectHandler detects the engine from installed packages,
// sets it to flags.Engine and creates the handler.
//
// When no engines or more than one engines are found, it returns *ExitError.
func DetectHandler(ctx context.Context, flags *Flags) (Handler, error) {
	lister := flags.Packages
	if lister == nil {
		lister = PipFreeze{}
	}

	packages, err := lister.ListPackages(ctx)
	if err != nil {
		return nil, err
	}

	found := DetectEngines(packages)
	switch len(found) {
	case 0:
		return nil, errMissingOrchestrator
	case 1:
		flags.Engine = found[0]
		return CreateHandler(ctx, flags)
	default:
		return nil, errMultipleOrchestrators
	}
}

// DetectEngines finds engines from a package list,
// formatted as newline-delimited "name==version".
//
// Each engine appears at most once in the result, in order of Airflow and Kubeflow.
func DetectEngines(packages string) []string {
	airflowFound, kubeflowFound := false, false
	for _, line := range strings.Split(packages, "\n") {
		name, _, _ := strings.Cut(strings.TrimSpace(line), "==")
		switch {
		case strings.HasPrefix(name, AirflowPackage):
			airflowFound = true
		case strings.HasPrefix(name, KubeflowPackage):
			kubeflowFound = true
		}
	}

	found := []string{}
	if airflowFound {
		found = append(found, Airflow)
	}
	if kubeflowFound {
		found = append(found, Kubeflow)
	}
	return found
}

package engine

import (
	engine_check "github.com/opst/mlpipe/cmd/mlpipe/subcommands/engine/check"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	check, err := engine_check.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Inspect orchestration engines.",
		struct{}{},
		flarc.WithSubcommand("check", check),
	)
}

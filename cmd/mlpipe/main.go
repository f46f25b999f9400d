package main

import (
	"context"
	"os"
	"os/signal"

	subblessed "github.com/opst/mlpipe/cmd/mlpipe/subcommands/blessed"
	"github.com/opst/mlpipe/cmd/mlpipe/subcommands/common"
	subengine "github.com/opst/mlpipe/cmd/mlpipe/subcommands/engine"
	subprepare "github.com/opst/mlpipe/cmd/mlpipe/subcommands/prepare"
	subrecord "github.com/opst/mlpipe/cmd/mlpipe/subcommands/record"
	subver "github.com/opst/mlpipe/cmd/mlpipe/subcommands/version"
	"github.com/opst/mlpipe/pkg/utils/try"
	"github.com/youta-t/flarc"
	"go.uber.org/zap"
)

func main() {
	logger := zap.Must(zap.NewProduction()).Sugar().Named("mlpipe")
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.DefaultCommonFlags(".")).OrFatal(logger)
	blessed := try.To(subblessed.New()).OrFatal(logger)
	prepare := try.To(subprepare.New()).OrFatal(logger)
	record := try.To(subrecord.New()).OrFatal(logger)
	engine := try.To(subengine.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	mlpipe := try.To(
		flarc.NewCommandGroup(
			"Drivers of ML pipeline steps",
			cf,
			flarc.WithSubcommand("blessed", blessed),
			flarc.WithSubcommand("prepare", prepare),
			flarc.WithSubcommand("record", record),
			flarc.WithSubcommand("engine", engine),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, mlpipe, flarc.WithHelp(true)))
}

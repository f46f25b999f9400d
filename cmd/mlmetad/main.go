package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	kconf "github.com/opst/mlpipe/pkg/configs/mlpipe"
	"github.com/opst/mlpipe/pkg/domain/artifact/db/open"
	"github.com/opst/mlpipe/pkg/logging"
	"github.com/opst/mlpipe/pkg/utils/filewatch"
	"github.com/opst/mlpipe/pkg/utils/try"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// errConfigUpdated tells the server has stopped to be restarted with new config.
var errConfigUpdated = errors.New("config file is updated. quit to restart server")

type storeOpener func(ctx context.Context, uri string, options ...open.Option) (open.Store, error)

func main() {
	configPath := flag.String("config", "mlpipe.yaml", "path to mlpipe config file")
	loglevel := flag.String("loglevel", "", "log level. debug|info|warn|error. When empty, log level in config is used")
	flag.Parse()

	boot := zap.Must(zap.NewProduction()).Sugar().Named("mlmetad")
	conf := try.To(kconf.LoadConfig(*configPath)).OrFatal(boot)

	level := *loglevel
	if level == "" {
		level = conf.Log().Level()
	}
	logger := try.To(logging.New(level)).OrFatal(boot).Named("mlmetad")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, logger, level, conf, *configPath, open.Open)
	cancel()

	if err != nil {
		logger.Error("mlmetad stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// run serves the metadata store until ctx is done or the config file is modified.
//
// Everything opened in run is released before it returns.
// When the config file is modified, it returns errConfigUpdated.
func run(
	ctx context.Context,
	logger *zap.Logger,
	level string,
	conf *kconf.Config,
	configPath string,
	openStore storeOpener,
) error {
	uri, err := conf.Metadata().StoreUri()
	if err != nil {
		return err
	}
	options := []open.Option{}
	if conf.Metadata().Gorm() {
		options = append(options, open.WithGorm())
	}
	store, err := openStore(ctx, uri, options...)
	if err != nil {
		return fmt.Errorf("can not open metadata store: %w", err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	e := newServer(logger, level, store, reg)

	watchCtx, stopWatch, err := filewatch.UntilModifyContext(ctx, configPath)
	if err != nil {
		return fmt.Errorf("can not watch config: %w", err)
	}
	defer stopWatch()

	g, gctx := errgroup.WithContext(watchCtx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", conf.Server().Port())
		logger.Info("start server", zap.String("addr", addr))
		if err := e.Start(addr); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.NamedError("cause", context.Cause(gctx)))

		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return e.Shutdown(graceful)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	if ctx.Err() == nil && watchCtx.Err() != nil {
		return fmt.Errorf("%w: %w", errConfigUpdated, context.Cause(watchCtx))
	}
	return nil
}

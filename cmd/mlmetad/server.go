package main

import (
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/opst/mlpipe/cmd/mlmetad/handlers"
	kdbartifact "github.com/opst/mlpipe/pkg/domain/artifact/db"
	"github.com/opst/mlpipe/pkg/driver/modelvalidator"
	"github.com/opst/mlpipe/pkg/echoutil"
	"github.com/opst/mlpipe/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// api builds a path under /api, terminated with "/".
func api(p ...string) string {
	return path.Join(append([]string{"/api"}, p...)...) + "/"
}

// newServer sets up routes of the metadata server.
//
// Metrics are registered to reg, and exposed at /metrics.
func newServer(
	logger *zap.Logger,
	loglevel string,
	store kdbartifact.ArtifactInterface,
	reg *prometheus.Registry,
	options ...modelvalidator.Option,
) *echo.Echo {
	m := metrics.New(reg)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.AddTrailingSlash())

	echoutil.SetLevel(e, loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		logger.Debug("error response", zap.Error(err))
	}
	e.Use(echoutil.LogHandler(logger), echoutil.Metrics(m))

	resolver := modelvalidator.NewResolver(
		store,
		append([]modelvalidator.Option{
			modelvalidator.WithLogger(logger), modelvalidator.WithMetrics(m),
		}, options...)...,
	)

	e.GET(api("artifacts"), handlers.GetArtifactsHandler(store))
	e.POST(api("artifacts"), handlers.PostArtifactHandler(store))
	e.GET(api("blessings", ":component"), handlers.GetBlessedModelHandler(resolver, "component"))

	e.GET("/metrics/", echo.WrapHandler(
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	))
	e.GET("/healthz/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for _, r := range e.Routes() {
		logger.Debug("registered route", zap.String("method", r.Method), zap.String("path", r.Path))
	}
	return e
}

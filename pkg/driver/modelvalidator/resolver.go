// Package modelvalidator is the driver of model validation steps.
//
// It feeds the model blessed last time by the same component instance
// into the next validation, as execution properties "blessed_model" and "blessed_model_id".
package modelvalidator

import (
	"context"

	"github.com/opst/mlpipe/pkg/domain"
	kdbartifact "github.com/opst/mlpipe/pkg/domain/artifact/db"
	"github.com/opst/mlpipe/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/opst/mlpipe/pkg/driver/modelvalidator"

type BlessedModelResolver interface {
	FetchLastBlessedModel(ctx context.Context, componentUniqueName string) (domain.BlessedModel, error)
}

type Resolver struct {
	store   kdbartifact.ArtifactInterface
	logger  *zap.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

var _ BlessedModelResolver = &Resolver{}

type Option func(*Resolver) *Resolver

func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) *Resolver {
		r.logger = logger
		return r
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) *Resolver {
		r.metrics = m
		return r
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Resolver) *Resolver {
		r.tracer = tp.Tracer(instrumentationName)
		return r
	}
}

// NewResolver creates a resolver reading artifacts from store.
//
// When store is also a kdbartifact.BlessingFinder, blessings are looked up with it.
func NewResolver(store kdbartifact.ArtifactInterface, options ...Option) *Resolver {
	r := &Resolver{
		store:   store,
		logger:  zap.NewNop(),
		metrics: metrics.Nop(),
		tracer:  otel.GetTracerProvider().Tracer(instrumentationName),
	}
	for _, opt := range options {
		r = opt(r)
	}
	r.logger = r.logger.With(zap.String("component", "model-validator"))
	return r
}

// FetchLastBlessedModel resolves the model blessed last time (= with the largest span)
// by the component instance componentUniqueName.
//
// When no such model is there, both fields of the result are nil. It is not an error.
func (r *Resolver) FetchLastBlessedModel(ctx context.Context, componentUniqueName string) (domain.BlessedModel, error) {
	ctx, span := r.tracer.Start(
		ctx, "modelvalidator.FetchLastBlessedModel",
		trace.WithAttributes(attribute.String("component_unique_name", componentUniqueName)),
	)
	defer span.End()

	candidates, err := r.candidates(ctx, componentUniqueName)
	if err != nil {
		r.metrics.Resolved(metrics.ResolutionError)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.BlessedModel{}, err
	}

	blessed := domain.BlessedModel{}
	if last, ok := LastBlessed(candidates, componentUniqueName); ok {
		blessed = domain.BlessedModelOf(last)
		r.metrics.Resolved(metrics.ResolutionFound)
		span.SetAttributes(
			attribute.Int64("blessing.id", last.Id),
			attribute.Int64("blessing.span", last.Span),
			attribute.String("blessed_model", *blessed.Model),
		)
	} else {
		r.metrics.Resolved(metrics.ResolutionAbsent)
	}

	r.logger.Info(
		"resolved last blessed model",
		zap.String("component_unique_name", componentUniqueName),
		zap.Stringp("blessed_model", blessed.Model),
		zap.Int64p("blessed_model_id", blessed.ModelId),
	)
	return blessed, nil
}

func (r *Resolver) candidates(ctx context.Context, componentUniqueName string) ([]domain.Artifact, error) {
	if finder, ok := r.store.(kdbartifact.BlessingFinder); ok {
		return finder.FindBlessed(ctx, componentUniqueName)
	}
	return r.store.GetAll(ctx)
}

// LastBlessed picks the blessing with the largest span from artifacts,
// among blessings marked "blessed" by componentUniqueName.
//
// On a tie, the earliest one in artifacts wins.
func LastBlessed(artifacts []domain.Artifact, componentUniqueName string) (domain.Artifact, bool) {
	var last *domain.Artifact
	for i := range artifacts {
		a := &artifacts[i]
		if !a.IsBlessingOf(componentUniqueName) {
			continue
		}
		if last == nil || last.Span < a.Span {
			last = a
		}
	}
	if last == nil {
		return domain.Artifact{}, false
	}
	return *last, true
}

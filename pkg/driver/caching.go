// Package driver decides whether a pipeline step should be executed,
// or outputs of a prior execution can be reused.
package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/opst/mlpipe/pkg/domain"
	"github.com/opst/mlpipe/pkg/domain/cache"
	"github.com/opst/mlpipe/pkg/metrics"
	"go.uber.org/zap"
)

type CachingHandler interface {
	// Handle makes an execution decision.
	//
	// When a prior execution for the same inputs and properties is found,
	// the decision has its ExecutionId. Otherwise ExecutionId is nil.
	Handle(
		ctx context.Context,
		inputDict domain.ArtifactDict,
		outputDict domain.ArtifactDict,
		execProperties domain.ExecProperties,
		args domain.DriverArgs,
	) (domain.ExecutionDecision, error)
}

// DefaultCaching is the caching handler backed by a cache.Cache.
type DefaultCaching struct {
	cache   cache.Cache
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

var _ CachingHandler = &DefaultCaching{}

func NewDefaultCaching(c cache.Cache, logger *zap.Logger, m *metrics.Metrics) *DefaultCaching {
	return &DefaultCaching{
		cache:   c,
		logger:  logger.With(zap.String("component", "caching")),
		metrics: m,
		now:     time.Now,
	}
}

func (d *DefaultCaching) Handle(
	ctx context.Context,
	inputDict domain.ArtifactDict,
	outputDict domain.ArtifactDict,
	execProperties domain.ExecProperties,
	args domain.DriverArgs,
) (domain.ExecutionDecision, error) {
	decision := domain.ExecutionDecision{
		InputDict:      inputDict,
		OutputDict:     outputDict,
		ExecProperties: execProperties,
	}
	if decision.ExecProperties == nil {
		decision.ExecProperties = domain.ExecProperties{}
	}

	if !args.EnableCache {
		d.metrics.CacheDecided(metrics.CacheDisabled)
		return decision, nil
	}

	fp, err := Fingerprint(inputDict, outputDict, execProperties)
	if err != nil {
		return domain.ExecutionDecision{}, err
	}

	cached, err := d.cache.Lookup(ctx, fp)
	if errors.Is(err, cache.ErrCacheMiss) {
		d.metrics.CacheDecided(metrics.CacheMiss)
		d.logger.Debug("no cached execution", zap.String("fingerprint", fp))
		return decision, nil
	} else if err != nil {
		return domain.ExecutionDecision{}, err
	}

	d.metrics.CacheDecided(metrics.CacheHit)
	d.logger.Info(
		"reuse cached execution",
		zap.String("fingerprint", fp), zap.Int64("execution_id", cached.ExecutionId),
	)

	// given properties take precedence over cached ones.
	merged := domain.ExecProperties{}
	maps.Copy(merged, cached.ExecProperties)
	maps.Copy(merged, execProperties)

	id := cached.ExecutionId
	decision.ExecutionId = &id
	decision.OutputDict = cached.OutputDict
	decision.ExecProperties = merged
	return decision, nil
}

// Record remembers a finished execution, so that later Handle can reuse it.
//
// When CachedAt is zero, it is set to the current time.
func (d *DefaultCaching) Record(ctx context.Context, fingerprint string, execution domain.CachedExecution) error {
	if execution.CachedAt.IsZero() {
		execution.CachedAt = d.now()
	}
	return d.cache.Store(ctx, fingerprint, execution)
}

type artifactRef struct {
	Id  int64  `json:"id"`
	Uri string `json:"uri"`
}

type channelRef struct {
	Name      string        `json:"name"`
	Artifacts []artifactRef `json:"artifacts"`
}

// Fingerprint identifies an execution by its inputs, output channels and properties.
//
// It is a sha256 hex digest of a canonical json.
// Only ids and uris of input artifacts and names of output channels are involved.
func Fingerprint(inputDict domain.ArtifactDict, outputDict domain.ArtifactDict, execProperties domain.ExecProperties) (string, error) {
	inputs := []channelRef{}
	for _, name := range slices.Sorted(maps.Keys(inputDict)) {
		refs := []artifactRef{}
		for _, a := range inputDict[name] {
			refs = append(refs, artifactRef{Id: a.Id, Uri: a.Uri})
		}
		inputs = append(inputs, channelRef{Name: name, Artifacts: refs})
	}

	outputs := slices.Sorted(maps.Keys(outputDict))
	if outputs == nil {
		outputs = []string{}
	}

	props := execProperties
	if props == nil {
		props = domain.ExecProperties{}
	}

	// encoding/json writes map keys in sorted order.
	data, err := json.Marshal(struct {
		Inputs         []channelRef          `json:"inputs"`
		Outputs        []string              `json:"outputs"`
		ExecProperties domain.ExecProperties `json:"exec_properties"`
	}{
		Inputs: inputs, Outputs: outputs, ExecProperties: props,
	})
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

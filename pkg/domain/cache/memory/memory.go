package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/opst/mlpipe/pkg/domain"
	"github.com/opst/mlpipe/pkg/domain/cache"
)

type memoryCache struct {
	lock    sync.RWMutex
	entries map[string]domain.CachedExecution
}

var _ cache.Cache = &memoryCache{}

// New returns a cache living in the process.
//
// It is used when no redis is configured.
func New() *memoryCache {
	return &memoryCache{entries: map[string]domain.CachedExecution{}}
}

// Volatile is always true. Entries do not outlive the process.
func (*memoryCache) Volatile() bool {
	return true
}

func (m *memoryCache) Lookup(_ context.Context, fingerprint string) (domain.CachedExecution, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	e, ok := m.entries[fingerprint]
	if !ok {
		return domain.CachedExecution{}, cache.ErrCacheMiss
	}
	return clone(e), nil
}

func (m *memoryCache) Store(_ context.Context, fingerprint string, execution domain.CachedExecution) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.entries[fingerprint] = clone(execution)
	return nil
}

// clone copies maps so that callers cannot mutate cached entries.
func clone(e domain.CachedExecution) domain.CachedExecution {
	e.ExecProperties = maps.Clone(e.ExecProperties)
	out := make(domain.ArtifactDict, len(e.OutputDict))
	for k, v := range e.OutputDict {
		out[k] = append([]domain.Artifact{}, v...)
	}
	e.OutputDict = out
	return e
}

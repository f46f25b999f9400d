package cache

import (
	"context"
	"errors"

	"github.com/opst/mlpipe/pkg/domain"
)

// ErrCacheMiss is returned by Lookup when no execution is cached for the fingerprint.
var ErrCacheMiss = errors.New("cache miss")

// ErrNotPersistent is returned when cached executions would be lost as the process exits.
var ErrNotPersistent = errors.New("cache is not persistent")

// Cache remembers finished executions by their fingerprints.
type Cache interface {
	// Lookup returns the execution cached for fingerprint.
	//
	// # Returns
	//
	// - domain.CachedExecution: the cached execution.
	//
	// - error: ErrCacheMiss when nothing is cached, or other errors from backing store.
	Lookup(ctx context.Context, fingerprint string) (domain.CachedExecution, error)

	// Store caches the execution for fingerprint, replacing older one.
	Store(ctx context.Context, fingerprint string, execution domain.CachedExecution) error
}

// Volatile is implemented by caches which lose their entries when the process exits.
type Volatile interface {
	Volatile() bool
}

// IsVolatile tells whether entries in c are lost when the process exits.
//
// Caches not implementing Volatile are treated as persistent.
func IsVolatile(c Cache) bool {
	v, ok := c.(Volatile)
	return ok && v.Volatile()
}

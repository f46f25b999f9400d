package open

import (
	"context"
	"fmt"
	"strings"

	kpool "github.com/opst/mlpipe/pkg/conn/db/postgres/pool"
	kdbartifact "github.com/opst/mlpipe/pkg/domain/artifact/db"
	"github.com/opst/mlpipe/pkg/domain/artifact/db/orm"
	kpgartifact "github.com/opst/mlpipe/pkg/domain/artifact/db/postgres"
	"github.com/opst/mlpipe/pkg/domain/artifact/db/rest"
)

// Store is an artifact store which can be closed.
type Store interface {
	kdbartifact.ArtifactInterface
	Close() error
}

type config struct {
	gormPostgres bool
}

type Option func(*config) *config

// WithGorm makes postgres:// uri be opened via gorm, instead of pgx.
func WithGorm() Option {
	return func(c *config) *config {
		c.gormPostgres = true
		return c
	}
}

// Open opens an artifact store for the uri.
//
// Supported schemes are:
//
// - postgres://, postgresql:// : pgx (or gorm, WithGorm)
//
// - sqlite://, mysql:// : gorm
//
// - http://, https:// : metadata server
func Open(ctx context.Context, uri string, options ...Option) (Store, error) {
	conf := &config{}
	for _, opt := range options {
		conf = opt(conf)
	}

	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return nil, fmt.Errorf("%w: %s", orm.ErrUnsupportedScheme, uri)
	}

	switch scheme {
	case "postgres", "postgresql":
		if conf.gormPostgres {
			return openORM(uri)
		}
		pool, err := kpool.Connect(ctx, uri)
		if err != nil {
			return nil, err
		}
		store := kpgartifact.New(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return &pgStore{blessingStore: store, pool: pool}, nil
	case "sqlite", "mysql":
		return openORM(uri)
	case "http", "https":
		c, err := rest.New(uri)
		if err != nil {
			return nil, err
		}
		return nopCloser{c}, nil
	default:
		return nil, fmt.Errorf("%w: %s", orm.ErrUnsupportedScheme, scheme)
	}
}

type blessingStore interface {
	kdbartifact.ArtifactInterface
	kdbartifact.BlessingFinder
}

// pgStore owns the pool under the store.
type pgStore struct {
	blessingStore
	pool kpool.Pool
}

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}

type nopCloser struct {
	blessingStore
}

func (nopCloser) Close() error { return nil }

func openORM(uri string) (Store, error) {
	s, err := orm.Open(uri)
	if err != nil {
		return nil, err
	}
	return s, nil
}

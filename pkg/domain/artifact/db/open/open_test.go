package open_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/opst/mlpipe/pkg/domain"
	kdbartifact "github.com/opst/mlpipe/pkg/domain/artifact/db"
	"github.com/opst/mlpipe/pkg/domain/artifact/db/open"
	"github.com/opst/mlpipe/pkg/domain/artifact/db/orm"
)

func TestOpen(t *testing.T) {
	t.Run("sqlite uri is opened with gorm, and it finds blessings", func(t *testing.T) {
		ctx := context.Background()
		uri := "sqlite://" + filepath.Join(t.TempDir(), "mlmd.db")

		store, err := open.Open(ctx, uri)
		if err != nil {
			t.Fatal(err)
		}
		defer store.Close()

		if _, err := store.Put(ctx, domain.Artifact{TypeName: domain.TypeModelBlessing}); err != nil {
			t.Fatal(err)
		}
		if _, ok := store.(kdbartifact.BlessingFinder); !ok {
			t.Errorf("store should find blessings: %T", store)
		}
	})

	t.Run("http uri is opened as metadata server client", func(t *testing.T) {
		store, err := open.Open(context.Background(), "http://mlmetad.invalid:8080")
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Close(); err != nil {
			t.Error(err)
		}
	})

	for _, uri := range []string{"mongodb://localhost", "./mlmd.db"} {
		t.Run("unknown scheme is rejected: "+uri, func(t *testing.T) {
			_, err := open.Open(context.Background(), uri)
			if !errors.Is(err, orm.ErrUnsupportedScheme) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

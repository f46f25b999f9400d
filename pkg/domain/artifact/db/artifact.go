package db

import (
	"context"
	"errors"

	"github.com/opst/mlpipe/pkg/domain"
)

// ErrMetadataNotInitialized is returned when the metadata store has no schema yet.
var ErrMetadataNotInitialized = errors.New("metadata store is not initialized")

type ArtifactInterface interface {
	// Retrieve all artifacts known to the metadata store.
	//
	// args:
	//     - ctx: context
	//
	// returns:
	//     - []Artifact: artifacts, in ascending order of Id
	//     - error
	//
	GetAll(ctx context.Context) ([]domain.Artifact, error)

	// Register a new artifact.
	//
	// Args
	//
	// - context.Context
	//
	// - Artifact: artifact to be registered. Its Id is ignored.
	//
	// Return
	//
	// - int64: Id assigned to the new artifact
	//
	// - error
	Put(ctx context.Context, artifact domain.Artifact) (int64, error)
}

// BlessingFinder is implemented by stores which can filter blessings at their query layer.
type BlessingFinder interface {
	// Find the last artifact of type ModelBlessingPath which is blessed by the component.
	//
	// Args
	//
	// - context.Context
	//
	// - string: component unique name
	//
	// Return
	//
	// - []Artifact: the last blessing, which has the largest span
	// (the smallest Id on a tie). It is empty when there are no blessings,
	// and never has more than one item.
	//
	// - error
	FindBlessed(ctx context.Context, componentUniqueName string) ([]domain.Artifact, error)
}

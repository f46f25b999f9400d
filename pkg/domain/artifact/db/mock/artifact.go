package mocks

import (
	"context"
	"errors"

	"github.com/opst/mlpipe/pkg/domain"
	kdbartifact "github.com/opst/mlpipe/pkg/domain/artifact/db"
	dbmock "github.com/opst/mlpipe/pkg/domain/internal/db/mock"
)

type ArtifactInterface struct {
	Impl struct {
		GetAll func(context.Context) ([]domain.Artifact, error)
		Put    func(context.Context, domain.Artifact) (int64, error)
	}
	Calls struct {
		GetAll dbmock.CallLog[struct{}]
		Put    dbmock.CallLog[struct{ Artifact domain.Artifact }]
	}
}

func NewArtifactInterface() *ArtifactInterface {
	return &ArtifactInterface{}
}

var _ kdbartifact.ArtifactInterface = &ArtifactInterface{}

func (ai *ArtifactInterface) GetAll(ctx context.Context) ([]domain.Artifact, error) {
	ai.Calls.GetAll = append(ai.Calls.GetAll, struct{}{})
	if ai.Impl.GetAll != nil {
		return ai.Impl.GetAll(ctx)
	}
	panic(errors.New("it should no be called"))
}

func (ai *ArtifactInterface) Put(ctx context.Context, artifact domain.Artifact) (int64, error) {
	ai.Calls.Put = append(ai.Calls.Put, struct{ Artifact domain.Artifact }{Artifact: artifact})
	if ai.Impl.Put != nil {
		return ai.Impl.Put(ctx, artifact)
	}
	panic(errors.New("it should no be called"))
}

// BlessingFinder is ArtifactInterface which also pushes blessing filter down.
type BlessingFinder struct {
	ArtifactInterface
	ImplFindBlessed  func(context.Context, string) ([]domain.Artifact, error)
	CallsFindBlessed dbmock.CallLog[struct{ ComponentUniqueName string }]
}

func NewBlessingFinder() *BlessingFinder {
	return &BlessingFinder{}
}

var _ kdbartifact.BlessingFinder = &BlessingFinder{}

func (bf *BlessingFinder) FindBlessed(ctx context.Context, componentUniqueName string) ([]domain.Artifact, error) {
	bf.CallsFindBlessed = append(
		bf.CallsFindBlessed,
		struct{ ComponentUniqueName string }{ComponentUniqueName: componentUniqueName},
	)
	if bf.ImplFindBlessed != nil {
		return bf.ImplFindBlessed(ctx, componentUniqueName)
	}
	panic(errors.New("it should no be called"))
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	apiartifacts "github.com/opst/mlpipe/pkg/api/types/artifacts"
	apierr "github.com/opst/mlpipe/pkg/api/types/errors"
	"github.com/opst/mlpipe/pkg/domain"
	kdbartifact "github.com/opst/mlpipe/pkg/domain/artifact/db"
	"github.com/opst/mlpipe/pkg/driver/modelvalidator"
)

// storeError converts errors from the metadata store into responses.
func storeError(err error) error {
	if errors.Is(err, kdbartifact.ErrMetadataNotInitialized) {
		return apierr.ServiceUnavailable("initialize the metadata store, then retry", err)
	}
	return apierr.InternalServerError(err)
}

// GetArtifactsHandler lists artifacts.
//
// With query "blessed_by", it responds the last blessing by the component
// only. The list has one item at most.
func GetArtifactsHandler(store kdbartifact.ArtifactInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var found []domain.Artifact
		var err error
		if component := c.QueryParam("blessed_by"); component == "" {
			found, err = store.GetAll(ctx)
		} else {
			found, err = lastBlessing(ctx, store, component)
		}
		if err != nil {
			return storeError(err)
		}

		resp := make([]apiartifacts.Detail, 0, len(found))
		for _, a := range found {
			resp = append(resp, apiartifacts.ComposeDetail(a))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func lastBlessing(ctx context.Context, store kdbartifact.ArtifactInterface, component string) ([]domain.Artifact, error) {
	var candidates []domain.Artifact
	var err error
	if finder, ok := store.(kdbartifact.BlessingFinder); ok {
		candidates, err = finder.FindBlessed(ctx, component)
	} else {
		candidates, err = store.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	last, ok := modelvalidator.LastBlessed(candidates, component)
	if !ok {
		return []domain.Artifact{}, nil
	}
	return []domain.Artifact{last}, nil
}

// PostArtifactHandler registers an artifact. Id in the request is ignored.
func PostArtifactHandler(store kdbartifact.ArtifactInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if !strings.HasPrefix(strings.ToLower(req.Header.Get("content-type")), "application/json") {
			return apierr.BadRequest(
				"unexpected content type. it should be application/json", nil,
			)
		}

		detail := apiartifacts.Detail{}
		if err := json.NewDecoder(req.Body).Decode(&detail); err != nil {
			return apierr.BadRequest("can not understand the requested json", err)
		}
		artifact, err := detail.ToDomain()
		if err != nil {
			return apierr.BadRequest(
				`invalid artifact. property type should be "string" or "int", and span and type_name should agree with properties`,
				err,
			)
		}

		id, err := store.Put(req.Context(), artifact)
		if err != nil {
			return storeError(err)
		}
		artifact.Id = id
		return c.JSON(http.StatusCreated, apiartifacts.ComposeDetail(artifact))
	}
}

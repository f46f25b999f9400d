package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	apiartifacts "github.com/opst/mlpipe/pkg/api/types/artifacts"
	apierr "github.com/opst/mlpipe/pkg/api/types/errors"
	"github.com/opst/mlpipe/pkg/domain"
	"github.com/opst/mlpipe/pkg/driver/modelvalidator"
	"golang.org/x/sync/singleflight"
)

// GetBlessedModelHandler resolves the last blessed model of the component in the path parameter.
//
// Concurrent requests for the same component share one resolution.
func GetBlessedModelHandler(resolver modelvalidator.BlessedModelResolver, param string) echo.HandlerFunc {
	group := new(singleflight.Group)

	return func(c echo.Context) error {
		component := c.Param(param)
		if component == "" {
			return apierr.BadRequest("component unique name is required", nil)
		}

		// shared with other requests. one of them going away should not cancel others.
		ctx := context.WithoutCancel(c.Request().Context())
		v, err, _ := group.Do(component, func() (any, error) {
			return resolver.FetchLastBlessedModel(ctx, component)
		})
		if err != nil {
			return storeError(err)
		}

		return c.JSON(
			http.StatusOK,
			apiartifacts.ComposeBlessedModel(component, v.(domain.BlessedModel)),
		)
	}
}

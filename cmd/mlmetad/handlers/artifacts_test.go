package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	httptestutil "github.com/opst/mlpipe/internal/testutils/http"
	apiartifacts "github.com/opst/mlpipe/pkg/api/types/artifacts"
	"github.com/opst/mlpipe/pkg/domain"
	kdbartifact "github.com/opst/mlpipe/pkg/domain/artifact/db"
	mocks "github.com/opst/mlpipe/pkg/domain/artifact/db/mock"

	"github.com/opst/mlpipe/cmd/mlmetad/handlers"
)

func blessing(id int64, span int64, component string) domain.Artifact {
	return domain.Artifact{
		Id: id, TypeName: domain.TypeModelBlessing, Uri: "/blessing", Span: span,
		Properties:       domain.Properties{},
		CustomProperties: domain.Properties{
			domain.CustomBlessed:             domain.IntValue(1),
			domain.CustomComponentUniqueName: domain.StringValue(component),
			domain.CustomCurrentModel:        domain.StringValue("/model"),
			domain.CustomCurrentModelId:      domain.IntValue(id * 10),
		},
	}
}

func decodeIds(t *testing.T, body string) []int64 {
	t.Helper()
	details := []apiartifacts.Detail{}
	if err := json.Unmarshal([]byte(body), &details); err != nil {
		t.Fatal(err)
	}
	ids := []int64{}
	for _, d := range details {
		ids = append(ids, d.Id)
	}
	return ids
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	herr := new(echo.HTTPError)
	if !errors.As(err, &herr) {
		t.Fatalf("error is not HTTPError: %v", err)
	}
	if herr.Code != code {
		t.Errorf("status code: (actual, expected) = (%d, %d)", herr.Code, code)
	}
}

func TestGetArtifactsHandler(t *testing.T) {
	artifacts := []domain.Artifact{
		blessing(1, 3, "mv"),
		{Id: 2, TypeName: "Model", Uri: "/model/2"},
		blessing(3, 5, "other"),
		blessing(4, 7, "mv"),
	}

	t.Run("it lists all artifacts", func(t *testing.T) {
		store := mocks.NewArtifactInterface()
		store.Impl.GetAll = func(context.Context) ([]domain.Artifact, error) {
			return artifacts, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/artifacts/")
		if err := handlers.GetArtifactsHandler(store)(c); err != nil {
			t.Fatal(err)
		}
		if resp.Code != http.StatusOK {
			t.Errorf("status: %d", resp.Code)
		}
		if ids := decodeIds(t, resp.Body.String()); len(ids) != 4 {
			t.Errorf("ids: %v", ids)
		}
	})

	t.Run("it responds the last blessing by scanning when the store cannot find them", func(t *testing.T) {
		store := mocks.NewArtifactInterface()
		store.Impl.GetAll = func(context.Context) ([]domain.Artifact, error) {
			return artifacts, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/artifacts/?blessed_by=mv")
		if err := handlers.GetArtifactsHandler(store)(c); err != nil {
			t.Fatal(err)
		}
		if ids := decodeIds(t, resp.Body.String()); len(ids) != 1 || ids[0] != 4 {
			t.Errorf("ids: %v", ids)
		}
	})

	t.Run("it responds an empty list when there are no blessings by the component", func(t *testing.T) {
		store := mocks.NewArtifactInterface()
		store.Impl.GetAll = func(context.Context) ([]domain.Artifact, error) {
			return artifacts, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/artifacts/?blessed_by=unknown")
		if err := handlers.GetArtifactsHandler(store)(c); err != nil {
			t.Fatal(err)
		}
		if ids := decodeIds(t, resp.Body.String()); len(ids) != 0 {
			t.Errorf("ids: %v", ids)
		}
	})

	t.Run("it responds the last blessing with the store when it can find them", func(t *testing.T) {
		store := mocks.NewBlessingFinder()
		store.ImplFindBlessed = func(_ context.Context, component string) ([]domain.Artifact, error) {
			return []domain.Artifact{blessing(4, 7, component)}, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/artifacts/?blessed_by=mv")
		if err := handlers.GetArtifactsHandler(store)(c); err != nil {
			t.Fatal(err)
		}
		if ids := decodeIds(t, resp.Body.String()); len(ids) != 1 || ids[0] != 4 {
			t.Errorf("ids: %v", ids)
		}
		if len(store.CallsFindBlessed) != 1 || store.CallsFindBlessed[0].ComponentUniqueName != "mv" {
			t.Errorf("FindBlessed calls: %+v", store.CallsFindBlessed)
		}
		if len(store.Calls.GetAll) != 0 {
			t.Error("GetAll should not be called")
		}
	})

	t.Run("when the store is not initialized, it responds 503", func(t *testing.T) {
		store := mocks.NewArtifactInterface()
		store.Impl.GetAll = func(context.Context) ([]domain.Artifact, error) {
			return nil, kdbartifact.ErrMetadataNotInitialized
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/artifacts/")
		assertHTTPError(t, handlers.GetArtifactsHandler(store)(c), http.StatusServiceUnavailable)
	})

	t.Run("when the store fails, it responds 500", func(t *testing.T) {
		store := mocks.NewArtifactInterface()
		store.Impl.GetAll = func(context.Context) ([]domain.Artifact, error) {
			return nil, errors.New("fake error")
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/artifacts/")
		assertHTTPError(t, handlers.GetArtifactsHandler(store)(c), http.StatusInternalServerError)
	})
}

func TestPostArtifactHandler(t *testing.T) {
	body := `{
		"id": 99, "type_name": "ModelBlessingPath", "uri": "/blessing/1", "span": 3,
		"properties": {},
		"custom_properties": {
			"blessed": {"type": "int", "int_value": 1},
			"component_unique_name": {"type": "string", "string_value": "mv"}
		}
	}`

	t.Run("it registers the artifact and responds it with new id", func(t *testing.T) {
		store := mocks.NewArtifactInterface()
		store.Impl.Put = func(_ context.Context, a domain.Artifact) (int64, error) {
			return 5, nil
		}

		e := echo.New()
		c, resp := httptestutil.Post(
			e, "/api/artifacts/", strings.NewReader(body),
			httptestutil.ContentType("application/json"),
		)
		if err := handlers.PostArtifactHandler(store)(c); err != nil {
			t.Fatal(err)
		}
		if resp.Code != http.StatusCreated {
			t.Errorf("status: %d", resp.Code)
		}

		put := store.Calls.Put[0].Artifact
		if !put.IsBlessingOf("mv") || put.Span != 3 {
			t.Errorf("unexpected artifact is put: %+v", put)
		}

		actual := apiartifacts.Detail{}
		if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
			t.Fatal(err)
		}
		if actual.Id != 5 || actual.Uri != "/blessing/1" {
			t.Errorf("response: %+v", actual)
		}
	})

	t.Run("it takes span and type name from properties when they are omitted", func(t *testing.T) {
		store := mocks.NewArtifactInterface()
		store.Impl.Put = func(_ context.Context, a domain.Artifact) (int64, error) {
			return 6, nil
		}

		e := echo.New()
		c, resp := httptestutil.Post(
			e, "/api/artifacts/", strings.NewReader(`{
				"uri": "/blessing/6",
				"properties": {
					"span": {"type": "int", "int_value": 8},
					"type_name": {"type": "string", "string_value": "ModelBlessingPath"}
				},
				"custom_properties": {
					"blessed": {"type": "int", "int_value": 1},
					"component_unique_name": {"type": "string", "string_value": "mv"}
				}
			}`),
			httptestutil.ContentType("application/json"),
		)
		if err := handlers.PostArtifactHandler(store)(c); err != nil {
			t.Fatal(err)
		}

		put := store.Calls.Put[0].Artifact
		if put.Span != 8 || !put.IsBlessingOf("mv") {
			t.Errorf("unexpected artifact is put: %+v", put)
		}

		actual := apiartifacts.Detail{}
		if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
			t.Fatal(err)
		}
		if actual.Span != 8 || actual.TypeName != domain.TypeModelBlessing {
			t.Errorf("response: %+v", actual)
		}
	})

	for name, req := range map[string]struct {
		body  string
		ctype string
	}{
		"not json":              {body: body, ctype: "text/plain"},
		"broken json":           {body: `{"id": `, ctype: "application/json"},
		"unknown property type": {body: `{"properties": {"size": {"type": "float"}}}`, ctype: "application/json"},
		"span disagreeing with properties": {
			body:  `{"span": 3, "properties": {"span": {"type": "int", "int_value": 4}}}`,
			ctype: "application/json",
		},
	} {
		t.Run("when the request is "+name+", it responds 400", func(t *testing.T) {
			store := mocks.NewArtifactInterface()

			e := echo.New()
			c, _ := httptestutil.Post(
				e, "/api/artifacts/", strings.NewReader(req.body),
				httptestutil.ContentType(req.ctype),
			)
			assertHTTPError(t, handlers.PostArtifactHandler(store)(c), http.StatusBadRequest)
			if len(store.Calls.Put) != 0 {
				t.Error("Put should not be called")
			}
		})
	}
}

package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apiartifacts "github.com/opst/mlpipe/pkg/api/types/artifacts"
	apierr "github.com/opst/mlpipe/pkg/api/types/errors"
	"github.com/opst/mlpipe/pkg/domain"
	kdbartifact "github.com/opst/mlpipe/pkg/domain/artifact/db"
)

var ErrServerResponse = errors.New("metadata server responded with error")

// client of the metadata server (cmd/mlmetad).
type client struct { // implements kdbartifact.ArtifactInterface & kdbartifact.BlessingFinder
	apiRoot    string
	httpclient *http.Client
}

var _ kdbartifact.ArtifactInterface = &client{}
var _ kdbartifact.BlessingFinder = &client{}

type Option func(*client) *client

func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) *client {
		cl.httpclient = c
		return cl
	}
}

// New creates a client of the metadata server.
//
// args:
//   - apiRoot: url to the server, like "http://mlmetad.example.com:8080/api"
func New(apiRoot string, options ...Option) (*client, error) {
	u, err := url.Parse(apiRoot)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api root should be http(s) url: %s", apiRoot)
	}
	if !strings.HasSuffix(u.Path, "/api") && !strings.HasSuffix(u.Path, "/api/") {
		u = u.JoinPath("api")
	}

	c := &client{
		apiRoot:    strings.TrimSuffix(u.String(), "/"),
		httpclient: http.DefaultClient,
	}
	for _, opt := range options {
		c = opt(c)
	}
	return c, nil
}

func (c *client) url(path string, query url.Values) string {
	u := c.apiRoot + "/" + strings.TrimPrefix(path, "/")
	if len(query) != 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *client) GetAll(ctx context.Context) ([]domain.Artifact, error) {
	return c.getArtifacts(ctx, nil)
}

// FindBlessed asks the server for the last blessing by the component.
func (c *client) FindBlessed(ctx context.Context, componentUniqueName string) ([]domain.Artifact, error) {
	return c.getArtifacts(ctx, url.Values{"blessed_by": []string{componentUniqueName}})
}

func (c *client) getArtifacts(ctx context.Context, query url.Values) ([]domain.Artifact, error) {
	details := []apiartifacts.Detail{}
	if err := c.do(ctx, http.MethodGet, c.url("artifacts/", query), nil, &details); err != nil {
		return nil, err
	}

	result := make([]domain.Artifact, 0, len(details))
	for _, d := range details {
		a, err := d.ToDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

func (c *client) Put(ctx context.Context, artifact domain.Artifact) (int64, error) {
	body, err := json.Marshal(apiartifacts.ComposeDetail(artifact))
	if err != nil {
		return 0, err
	}

	created := apiartifacts.Detail{}
	if err := c.do(ctx, http.MethodPost, c.url("artifacts/", nil), bytes.NewReader(body), &created); err != nil {
		return 0, err
	}
	return created.Id, nil
}

// GetBlessedModel asks the server to resolve the last blessed model of the component.
func (c *client) GetBlessedModel(ctx context.Context, componentUniqueName string) (domain.BlessedModel, error) {
	resp := apiartifacts.BlessedModel{}
	if err := c.do(
		ctx, http.MethodGet,
		c.url("blessings/"+url.PathEscape(componentUniqueName)+"/", nil),
		nil, &resp,
	); err != nil {
		return domain.BlessedModel{}, err
	}
	return resp.ToDomain(), nil
}

func (c *client) do(ctx context.Context, method string, u string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		return parseErrorResponse(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func parseErrorResponse(resp *http.Response) error {
	msg := apierr.ErrorMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		msg.Reason = resp.Status
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("%w: %w", kdbartifact.ErrMetadataNotInitialized, msg)
	}
	return fmt.Errorf("%w (%d): %w", ErrServerResponse, resp.StatusCode, msg)
}

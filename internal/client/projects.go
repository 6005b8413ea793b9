package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/querio-io/qapi/internal/http"
	"github.com/querio-io/qapi/pkg/qapi"
)

// ProjectsClient implements qapi.ProjectsClient.
type ProjectsClient struct {
	httpClient *http.Client
	cache      qapi.Cache
}

// NewProjectsClient creates a new projects client.
func NewProjectsClient(httpClient *http.Client, cache qapi.Cache) *ProjectsClient {
	return &ProjectsClient{httpClient: httpClient, cache: cache}
}

// Create implements qapi.ProjectsClient.Create.
func (c *ProjectsClient) Create(ctx context.Context, request *qapi.ProjectCreateRequest) (*qapi.Project, error) {
	if request == nil {
		return nil, qapi.ErrRequestRequired
	}

	resp, err := c.httpClient.Post(ctx, "/v1/projects", request)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	var project qapi.Project
	if err := json.Unmarshal(resp.Body, &project); err != nil {
		return nil, fmt.Errorf("parsing project response: %w", err)
	}

	return &project, nil
}

// Get implements qapi.ProjectsClient.Get.
func (c *ProjectsClient) Get(ctx context.Context, guid string) (*qapi.Project, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	path := "/v1/projects/" + guid

	body, err := cachedGet(ctx, c.httpClient, c.cache, path)
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}

	var project qapi.Project
	if err := json.Unmarshal(body, &project); err != nil {
		return nil, fmt.Errorf("parsing project response: %w", err)
	}

	return &project, nil
}

// List implements qapi.ProjectsClient.List.
func (c *ProjectsClient) List(ctx context.Context, params *qapi.QueryParams) (*qapi.ListResponse[qapi.Project], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, "/v1/projects", query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	var result qapi.ListResponse[qapi.Project]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing projects list response: %w", err)
	}

	return &result, nil
}

// Update implements qapi.ProjectsClient.Update.
func (c *ProjectsClient) Update(ctx context.Context, guid string, request *qapi.ProjectUpdateRequest) (*qapi.Project, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	path := "/v1/projects/" + guid

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}

	invalidateCached(ctx, c.cache, path)

	var project qapi.Project
	if err := json.Unmarshal(resp.Body, &project); err != nil {
		return nil, fmt.Errorf("parsing project response: %w", err)
	}

	return &project, nil
}

// Delete implements qapi.ProjectsClient.Delete. Deletion is asynchronous;
// the returned job tracks its progress.
func (c *ProjectsClient) Delete(ctx context.Context, guid string) (*qapi.Job, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	path := "/v1/projects/" + guid

	resp, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("deleting project: %w", err)
	}

	invalidateCached(ctx, c.cache, path)

	var job qapi.Job
	if err := json.Unmarshal(resp.Body, &job); err != nil {
		return nil, fmt.Errorf("parsing job response: %w", err)
	}

	return &job, nil
}

// cachedGet serves a GET from the response cache when a live entry exists,
// falling back to the API and storing the fresh body. The entry carries no
// expiry so the backend applies its configured TTL.
func cachedGet(ctx context.Context, httpClient *http.Client, cache qapi.Cache, path string) ([]byte, error) {
	if cache != nil {
		if entry, err := cache.Get(ctx, path); err == nil {
			return entry.Data, nil
		}
	}

	resp, err := httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		_ = cache.Set(ctx, path, &qapi.CacheEntry{
			Data: resp.Body,
			ETag: resp.Headers.Get("ETag"),
		})
	}

	return resp.Body, nil
}

// invalidateCached drops a stale entry after a mutation.
func invalidateCached(ctx context.Context, cache qapi.Cache, path string) {
	if cache != nil {
		_ = cache.Delete(ctx, path)
	}
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/querio-io/qapi/internal/http"
	"github.com/querio-io/qapi/pkg/qapi"
)

// OrganizationsClient implements qapi.OrganizationsClient.
type OrganizationsClient struct {
	httpClient *http.Client
	cache      qapi.Cache
}

// NewOrganizationsClient creates a new organizations client.
func NewOrganizationsClient(httpClient *http.Client, cache qapi.Cache) *OrganizationsClient {
	return &OrganizationsClient{httpClient: httpClient, cache: cache}
}

// Get implements qapi.OrganizationsClient.Get.
func (c *OrganizationsClient) Get(ctx context.Context, guid string) (*qapi.Organization, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	path := "/v1/organizations/" + guid

	body, err := cachedGet(ctx, c.httpClient, c.cache, path)
	if err != nil {
		return nil, fmt.Errorf("getting organization: %w", err)
	}

	var org qapi.Organization
	if err := json.Unmarshal(body, &org); err != nil {
		return nil, fmt.Errorf("parsing organization response: %w", err)
	}

	return &org, nil
}

// List implements qapi.OrganizationsClient.List.
func (c *OrganizationsClient) List(ctx context.Context, params *qapi.QueryParams) (*qapi.ListResponse[qapi.Organization], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, "/v1/organizations", query)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}

	var result qapi.ListResponse[qapi.Organization]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing organizations list response: %w", err)
	}

	return &result, nil
}

// Update implements qapi.OrganizationsClient.Update.
func (c *OrganizationsClient) Update(ctx context.Context, guid string, request *qapi.OrganizationUpdateRequest) (*qapi.Organization, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	path := "/v1/organizations/" + guid

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating organization: %w", err)
	}

	invalidateCached(ctx, c.cache, path)

	var org qapi.Organization
	if err := json.Unmarshal(resp.Body, &org); err != nil {
		return nil, fmt.Errorf("parsing organization response: %w", err)
	}

	return &org, nil
}

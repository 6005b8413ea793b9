// Package client implements qapi.Client against the Querio REST API.
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/querio-io/qapi/internal/http"
	"github.com/querio-io/qapi/pkg/qapi"
)

// Client implements the qapi.Client interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     qapi.Logger
	cache      qapi.Cache

	projects      qapi.ProjectsClient
	datasources   qapi.DatasourcesClient
	queryPrograms qapi.QueryProgramsClient
	chat          qapi.ChatClient
	jobs          qapi.JobsClient
	organizations qapi.OrganizationsClient
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(config *qapi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.AuthScheme != "" {
		httpOpts = append(httpOpts, http.WithAuthScheme(config.AuthScheme))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RateLimit))
	}

	if config.RetryMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	return httpOpts
}

// New creates a new Querio API client. The config is snapshotted here; later
// mutations of the passed struct have no effect on the client.
func New(config *qapi.Config) (*Client, error) {
	if config == nil {
		return nil, qapi.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, qapi.ErrAPIEndpointRequired
	}

	httpClient := http.NewClient(config.APIEndpoint, config.APIKey, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient: httpClient,
		baseURL:    config.APIEndpoint,
		logger:     config.Logger,
	}

	if config.Cache != nil {
		cache, err := qapi.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("creating cache: %w", err)
		}

		client.cache = cache
	}

	client.initializeResourceClients(config)

	return client, nil
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients(config *qapi.Config) {
	c.projects = NewProjectsClient(c.httpClient, c.cache)
	c.datasources = NewDatasourcesClient(c.httpClient)
	c.queryPrograms = NewQueryProgramsClient(c.httpClient)
	c.chat = NewChatClient(c.httpClient)
	c.jobs = NewJobsClient(c.httpClient, config.Polling)
	c.organizations = NewOrganizationsClient(c.httpClient, c.cache)
}

// Projects implements qapi.Client.Projects.
func (c *Client) Projects() qapi.ProjectsClient {
	return c.projects
}

// Datasources implements qapi.Client.Datasources.
func (c *Client) Datasources() qapi.DatasourcesClient {
	return c.datasources
}

// QueryPrograms implements qapi.Client.QueryPrograms.
func (c *Client) QueryPrograms() qapi.QueryProgramsClient {
	return c.queryPrograms
}

// Chat implements qapi.Client.Chat.
func (c *Client) Chat() qapi.ChatClient {
	return c.chat
}

// Jobs implements qapi.Client.Jobs.
func (c *Client) Jobs() qapi.JobsClient {
	return c.jobs
}

// Organizations implements qapi.Client.Organizations.
func (c *Client) Organizations() qapi.OrganizationsClient {
	return c.organizations
}

// GetInfo implements qapi.Client.GetInfo.
func (c *Client) GetInfo(ctx context.Context) (*qapi.Info, error) {
	resp, err := c.httpClient.Get(ctx, "/v1/info", nil)
	if err != nil {
		return nil, fmt.Errorf("getting info: %w", err)
	}

	var info qapi.Info

	err = json.Unmarshal(resp.Body, &info)
	if err != nil {
		return nil, fmt.Errorf("parsing info response: %w", err)
	}

	return &info, nil
}

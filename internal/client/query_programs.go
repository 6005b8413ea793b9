package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/querio-io/qapi/internal/http"
	"github.com/querio-io/qapi/pkg/qapi"
)

// QueryProgramsClient implements qapi.QueryProgramsClient.
type QueryProgramsClient struct {
	httpClient *http.Client
}

// NewQueryProgramsClient creates a new query programs client.
func NewQueryProgramsClient(httpClient *http.Client) *QueryProgramsClient {
	return &QueryProgramsClient{httpClient: httpClient}
}

// Get implements qapi.QueryProgramsClient.Get.
func (c *QueryProgramsClient) Get(ctx context.Context, guid string) (*qapi.QueryProgram, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	resp, err := c.httpClient.Get(ctx, "/v1/query-programs/"+guid, nil)
	if err != nil {
		return nil, fmt.Errorf("getting query program: %w", err)
	}

	var program qapi.QueryProgram
	if err := json.Unmarshal(resp.Body, &program); err != nil {
		return nil, fmt.Errorf("parsing query program response: %w", err)
	}

	return &program, nil
}

// List implements qapi.QueryProgramsClient.List.
func (c *QueryProgramsClient) List(ctx context.Context, params *qapi.QueryParams) (*qapi.ListResponse[qapi.QueryProgram], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, "/v1/query-programs", query)
	if err != nil {
		return nil, fmt.Errorf("listing query programs: %w", err)
	}

	var result qapi.ListResponse[qapi.QueryProgram]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing query programs list response: %w", err)
	}

	return &result, nil
}

// Delete implements qapi.QueryProgramsClient.Delete.
func (c *QueryProgramsClient) Delete(ctx context.Context, guid string) (*qapi.Job, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	resp, err := c.httpClient.Delete(ctx, "/v1/query-programs/"+guid)
	if err != nil {
		return nil, fmt.Errorf("deleting query program: %w", err)
	}

	var job qapi.Job
	if err := json.Unmarshal(resp.Body, &job); err != nil {
		return nil, fmt.Errorf("parsing job response: %w", err)
	}

	return &job, nil
}

// Publish implements qapi.QueryProgramsClient.Publish.
func (c *QueryProgramsClient) Publish(ctx context.Context, guid string) (*qapi.QueryProgram, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	resp, err := c.httpClient.Post(ctx, "/v1/query-programs/"+guid+"/publish", nil)
	if err != nil {
		return nil, fmt.Errorf("publishing query program: %w", err)
	}

	var program qapi.QueryProgram
	if err := json.Unmarshal(resp.Body, &program); err != nil {
		return nil, fmt.Errorf("parsing query program response: %w", err)
	}

	return &program, nil
}

// Generate implements qapi.QueryProgramsClient.Generate.
func (c *QueryProgramsClient) Generate(ctx context.Context, request *qapi.QueryProgramGenerateRequest) (qapi.StreamOrResult[qapi.QueryProgram], error) {
	if request == nil {
		return qapi.StreamOrResult[qapi.QueryProgram]{}, qapi.ErrRequestRequired
	}

	return openStream[qapi.QueryProgram](ctx, c.httpClient, &http.Request{
		Method: "POST",
		Path:   "/v1/query-programs/generate",
		Body:   request,
	})
}

// Execute implements qapi.QueryProgramsClient.Execute.
func (c *QueryProgramsClient) Execute(ctx context.Context, guid string, request *qapi.QueryProgramExecuteRequest) (*qapi.QueryResult, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	resp, err := c.httpClient.Post(ctx, "/v1/query-programs/"+guid+"/execute", request)
	if err != nil {
		return nil, fmt.Errorf("executing query program: %w", err)
	}

	var result qapi.QueryResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing query result response: %w", err)
	}

	return &result, nil
}

// ExecuteStream implements qapi.QueryProgramsClient.ExecuteStream.
func (c *QueryProgramsClient) ExecuteStream(ctx context.Context, guid string, request *qapi.QueryProgramExecuteRequest) (qapi.StreamOrResult[qapi.QueryResult], error) {
	if guid == "" {
		return qapi.StreamOrResult[qapi.QueryResult]{}, qapi.ErrGUIDRequired
	}

	return openStream[qapi.QueryResult](ctx, c.httpClient, &http.Request{
		Method: "POST",
		Path:   "/v1/query-programs/" + guid + "/execute/stream",
		Body:   request,
	})
}

// openStream opens a server-sent event stream for req. API failures are
// carried in the Result branch so callers handle them uniformly through
// ProcessStreamOrResult; only non-API failures surface as plain errors.
func openStream[T any](ctx context.Context, httpClient *http.Client, req *http.Request) (qapi.StreamOrResult[T], error) {
	stream, err := httpClient.Stream(ctx, req)
	if err != nil {
		var apiErr *qapi.APIError
		if errors.As(err, &apiErr) {
			return qapi.StreamOrResult[T]{Result: qapi.Fail[T](apiErr)}, nil
		}

		return qapi.StreamOrResult[T]{}, fmt.Errorf("opening event stream: %w", err)
	}

	return qapi.StreamOrResult[T]{Stream: stream}, nil
}

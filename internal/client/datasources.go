package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"

	"github.com/querio-io/qapi/internal/http"
	"github.com/querio-io/qapi/pkg/qapi"
)

// DatasourcesClient implements qapi.DatasourcesClient.
type DatasourcesClient struct {
	httpClient *http.Client
}

// NewDatasourcesClient creates a new datasources client.
func NewDatasourcesClient(httpClient *http.Client) *DatasourcesClient {
	return &DatasourcesClient{httpClient: httpClient}
}

// Create implements qapi.DatasourcesClient.Create.
func (c *DatasourcesClient) Create(ctx context.Context, request *qapi.DatasourceCreateRequest) (*qapi.Datasource, error) {
	if request == nil {
		return nil, qapi.ErrRequestRequired
	}

	resp, err := c.httpClient.Post(ctx, "/v1/datasources", request)
	if err != nil {
		return nil, fmt.Errorf("creating datasource: %w", err)
	}

	var datasource qapi.Datasource
	if err := json.Unmarshal(resp.Body, &datasource); err != nil {
		return nil, fmt.Errorf("parsing datasource response: %w", err)
	}

	return &datasource, nil
}

// Get implements qapi.DatasourcesClient.Get.
func (c *DatasourcesClient) Get(ctx context.Context, guid string) (*qapi.Datasource, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	resp, err := c.httpClient.Get(ctx, "/v1/datasources/"+guid, nil)
	if err != nil {
		return nil, fmt.Errorf("getting datasource: %w", err)
	}

	var datasource qapi.Datasource
	if err := json.Unmarshal(resp.Body, &datasource); err != nil {
		return nil, fmt.Errorf("parsing datasource response: %w", err)
	}

	return &datasource, nil
}

// List implements qapi.DatasourcesClient.List.
func (c *DatasourcesClient) List(ctx context.Context, params *qapi.QueryParams) (*qapi.ListResponse[qapi.Datasource], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, "/v1/datasources", query)
	if err != nil {
		return nil, fmt.Errorf("listing datasources: %w", err)
	}

	var result qapi.ListResponse[qapi.Datasource]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing datasources list response: %w", err)
	}

	return &result, nil
}

// Delete implements qapi.DatasourcesClient.Delete.
func (c *DatasourcesClient) Delete(ctx context.Context, guid string) (*qapi.Job, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	resp, err := c.httpClient.Delete(ctx, "/v1/datasources/"+guid)
	if err != nil {
		return nil, fmt.Errorf("deleting datasource: %w", err)
	}

	var job qapi.Job
	if err := json.Unmarshal(resp.Body, &job); err != nil {
		return nil, fmt.Errorf("parsing job response: %w", err)
	}

	return &job, nil
}

// Upload implements qapi.DatasourcesClient.Upload. The file is sent as a
// multipart form; ingestion runs asynchronously and the returned datasource
// starts in the PENDING state.
func (c *DatasourcesClient) Upload(ctx context.Context, projectGUID, name, filename string, file io.Reader) (*qapi.Datasource, error) {
	if projectGUID == "" {
		return nil, qapi.ErrGUIDRequired
	}

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("project_guid", projectGUID); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}

	if err := writer.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copying file contents: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart form: %w", err)
	}

	req := &http.Request{
		Method: "POST",
		Path:   "/v1/datasources/upload",
		Headers: map[string]string{
			"Content-Type": writer.FormDataContentType(),
		},
		Body: buf.Bytes(),
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("uploading datasource: %w", err)
	}

	var datasource qapi.Datasource
	if err := json.Unmarshal(resp.Body, &datasource); err != nil {
		return nil, fmt.Errorf("parsing datasource response: %w", err)
	}

	return &datasource, nil
}

// Package http implements the request pipeline shared by every resource
// client: URL construction, body encoding, auth header injection, transient
// retry, and classification of failures into the qapi error taxonomy.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/querio-io/qapi/internal/constants"
	"github.com/querio-io/qapi/pkg/qapi"
)

// DefaultAuthScheme is used when no scheme override is configured.
const DefaultAuthScheme = "Bearer"

const defaultUserAgent = "qapi-go"

// Request describes one API call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string

	// Body is encoded by content: []byte and io.Reader pass through
	// unchanged (content type taken from Headers, if any), url.Values are
	// form-encoded, anything else is marshalled as JSON.
	Body interface{}
}

// Response is a fully buffered API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// RequestID returns the server-assigned request id, if present.
func (r *Response) RequestID() string {
	if r == nil || r.Headers == nil {
		return ""
	}

	return r.Headers.Get("X-Request-Id")
}

// Client executes requests against the Querio API. Its configuration is
// immutable after construction.
type Client struct {
	baseURL    string
	apiKey     string
	authScheme string
	userAgent  string
	logger     qapi.Logger
	debug      bool
	limiter    *rate.Limiter

	httpClient   *retryablehttp.Client
	streamClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug request/response logging.
func WithLogger(logger qapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging through the configured logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithAuthScheme overrides the Authorization scheme (default "Bearer").
func WithAuthScheme(scheme string) Option {
	return func(c *Client) {
		c.authScheme = scheme
	}
}

// WithRetryConfig tunes transient-failure retries (429, 5xx, connection
// errors).
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// WithHTTPTimeout overrides the per-request timeout of the buffered client.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// NewClient creates a transport client. An empty apiKey sends requests
// without an Authorization header.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	streamTransport := http.DefaultTransport.(*http.Transport).Clone()
	streamTransport.ResponseHeaderTimeout = constants.StreamHTTPTimeout

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		authScheme: DefaultAuthScheme,
		userAgent:  defaultUserAgent,
		httpClient: retryClient,

		// Streams bypass the retrying client: a half-consumed SSE body must
		// never be silently replayed. The header timeout covers only the
		// dial/response phase; reading the stream is bounded by the caller's
		// context.
		streamClient: &http.Client{
			Transport: streamTransport,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes a buffered request. Request-level failures are returned as a
// *qapi.APIError alongside the raw response; a nil error always carries a
// 2xx response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req, false)
	if err != nil {
		return nil, err
	}

	retryReq, err := retryablehttp.FromRequest(httpReq)
	if err != nil {
		return nil, fmt.Errorf("preparing request: %w", err)
	}

	c.logRequest(req)

	resp, err := c.httpClient.Do(retryReq)
	if err != nil {
		return nil, qapi.NetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, qapi.NetworkError(err)
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	c.logResponse(req, response)

	if resp.StatusCode >= 400 {
		return response, qapi.ParseErrorBody(
			resp.StatusCode,
			body,
			resp.Header.Get("Content-Type"),
			response.RequestID(),
		)
	}

	return response, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// buildRequest constructs the net/http request: URL, encoded body, and the
// full header set including auth.
func (c *Client) buildRequest(ctx context.Context, req *Request, stream bool) (*http.Request, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, qapi.NetworkError(err)
		}
	}

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-Id", uuid.NewString())

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	// An explicit Authorization header from the caller wins over the
	// configured key.
	if c.apiKey != "" && httpReq.Header.Get("Authorization") == "" {
		httpReq.Header.Set("Authorization", c.authScheme+" "+c.apiKey)
	}

	return httpReq, nil
}

// encodeBody turns the request body into a reader plus the content type to
// send. Raw and reader bodies get no content type here; multipart callers
// supply theirs through Request.Headers so the boundary survives.
func encodeBody(body interface{}) (io.Reader, string, error) {
	switch value := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(value), "", nil
	case io.Reader:
		return value, "", nil
	case url.Values:
		return strings.NewReader(value.Encode()), "application/x-www-form-urlencoded", nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}

		return bytes.NewReader(data), "application/json", nil
	}
}

func (c *Client) logRequest(req *Request) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method": req.Method,
		"path":   req.Path,
	})
}

func (c *Client) logResponse(req *Request, resp *Response) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"method":      req.Method,
		"path":        req.Path,
		"status_code": resp.StatusCode,
		"body_bytes":  len(resp.Body),
	})
}

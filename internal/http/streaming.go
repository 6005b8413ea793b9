package http

import (
	"context"
	"io"

	"github.com/querio-io/qapi/pkg/qapi"
)

// Stream executes a request expecting a text/event-stream response and
// returns the unconsumed body for the SSE layer. The caller owns the stream
// exclusively and must close it on every exit path.
//
// A non-2xx response never reaches the caller as a stream: the body is
// drained, classified through the error taxonomy, and returned as a
// *qapi.APIError.
func (c *Client) Stream(ctx context.Context, req *Request) (io.ReadCloser, error) {
	httpReq, err := c.buildRequest(ctx, req, true)
	if err != nil {
		return nil, err
	}

	c.logRequest(req)

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, qapi.NetworkError(err)
	}

	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, qapi.NetworkError(readErr)
		}

		response := &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Body: body}
		c.logResponse(req, response)

		return nil, qapi.ParseErrorBody(
			resp.StatusCode,
			body,
			resp.Header.Get("Content-Type"),
			response.RequestID(),
		)
	}

	return resp.Body, nil
}

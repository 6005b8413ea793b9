package qapi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querio-io/qapi/pkg/qapi"
)

var errInterceptorRejected = errors.New("rejected")

//nolint:funlen // table-style subtests
func TestInterceptorChain(t *testing.T) {
	t.Parallel()

	t.Run("request interceptors run in registration order", func(t *testing.T) {
		t.Parallel()

		chain := qapi.NewInterceptorChain()

		var order []string

		chain.AddRequestInterceptor(func(ctx context.Context, req *qapi.InterceptedRequest) error {
			order = append(order, "first")

			return nil
		})
		chain.AddRequestInterceptor(func(ctx context.Context, req *qapi.InterceptedRequest) error {
			order = append(order, "second")

			return nil
		})

		err := chain.ExecuteRequestInterceptors(context.Background(), &qapi.InterceptedRequest{
			Method: http.MethodGet,
			Path:   "/v1/projects",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("failing request interceptor halts the chain", func(t *testing.T) {
		t.Parallel()

		chain := qapi.NewInterceptorChain()

		reached := false

		chain.AddRequestInterceptor(func(ctx context.Context, req *qapi.InterceptedRequest) error {
			return errInterceptorRejected
		})
		chain.AddRequestInterceptor(func(ctx context.Context, req *qapi.InterceptedRequest) error {
			reached = true

			return nil
		})

		err := chain.ExecuteRequestInterceptors(context.Background(), &qapi.InterceptedRequest{})

		require.Error(t, err)
		assert.ErrorIs(t, err, errInterceptorRejected)
		assert.Contains(t, err.Error(), "request interceptor failed")
		assert.False(t, reached)
	})

	t.Run("response interceptors see request and response", func(t *testing.T) {
		t.Parallel()

		chain := qapi.NewInterceptorChain()

		var seenStatus int

		chain.AddResponseInterceptor(func(ctx context.Context, req *qapi.InterceptedRequest, resp *qapi.InterceptedResponse) error {
			seenStatus = resp.StatusCode

			return nil
		})

		err := chain.ExecuteResponseInterceptors(context.Background(),
			&qapi.InterceptedRequest{Method: http.MethodGet, Path: "/v1/info"},
			&qapi.InterceptedResponse{StatusCode: http.StatusOK})

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, seenStatus)
	})

	t.Run("empty chain is a no-op", func(t *testing.T) {
		t.Parallel()

		chain := qapi.NewInterceptorChain()

		require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), &qapi.InterceptedRequest{}))
		require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(),
			&qapi.InterceptedRequest{}, &qapi.InterceptedResponse{}))
	})
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := qapi.HeaderInterceptor(map[string]string{
		"X-Tenant":  "acme",
		"X-Feature": "beta",
	})

	req := &qapi.InterceptedRequest{Method: http.MethodGet, Path: "/v1/projects"}

	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "acme", req.Headers.Get("X-Tenant"))
	assert.Equal(t, "beta", req.Headers.Get("X-Feature"))
}

func TestRateLimitInterceptor(t *testing.T) {
	t.Parallel()

	t.Run("grants first request immediately", func(t *testing.T) {
		t.Parallel()

		interceptor := qapi.RateLimitInterceptor(100)

		start := time.Now()
		err := interceptor(context.Background(), &qapi.InterceptedRequest{})

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("cancelled context unblocks the wait", func(t *testing.T) {
		t.Parallel()

		interceptor := qapi.RateLimitInterceptor(0.01)

		// Burn the initial token.
		require.NoError(t, interceptor(context.Background(), &qapi.InterceptedRequest{}))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := interceptor(ctx, &qapi.InterceptedRequest{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limit wait")
	})
}

//nolint:funlen // table-style subtests
func TestMetricsCollector(t *testing.T) {
	t.Parallel()

	t.Run("records requests and latency per endpoint", func(t *testing.T) {
		t.Parallel()

		collector := qapi.NewMetricsCollector()
		requestInterceptor := qapi.MetricsRequestInterceptor(collector)
		responseInterceptor := qapi.MetricsResponseInterceptor(collector)

		ctx := context.Background()

		for range 3 {
			req := &qapi.InterceptedRequest{Method: http.MethodGet, Path: "/v1/projects"}

			require.NoError(t, requestInterceptor(ctx, req))
			require.NoError(t, responseInterceptor(ctx, req, &qapi.InterceptedResponse{StatusCode: http.StatusOK}))
		}

		metrics := collector.GetMetrics("GET /v1/projects")

		require.NotNil(t, metrics)
		assert.Equal(t, int64(3), metrics.TotalRequests)
		assert.Zero(t, metrics.TotalErrors)
		assert.False(t, metrics.LastRequestTime.IsZero())
		assert.GreaterOrEqual(t, metrics.TotalLatency, time.Duration(0))
	})

	t.Run("counts error responses", func(t *testing.T) {
		t.Parallel()

		collector := qapi.NewMetricsCollector()
		responseInterceptor := qapi.MetricsResponseInterceptor(collector)

		ctx := context.Background()
		req := &qapi.InterceptedRequest{Method: http.MethodDelete, Path: "/v1/projects/p-1"}

		require.NoError(t, responseInterceptor(ctx, req, &qapi.InterceptedResponse{StatusCode: http.StatusNotFound}))
		require.NoError(t, responseInterceptor(ctx, req, &qapi.InterceptedResponse{
			StatusCode: http.StatusOK,
			Error:      errInterceptorRejected,
		}))

		metrics := collector.GetMetrics("DELETE /v1/projects/p-1")

		require.NotNil(t, metrics)
		assert.Equal(t, int64(2), metrics.TotalRequests)
		assert.Equal(t, int64(2), metrics.TotalErrors)
	})

	t.Run("snapshot does not leak internal state", func(t *testing.T) {
		t.Parallel()

		collector := qapi.NewMetricsCollector()
		responseInterceptor := qapi.MetricsResponseInterceptor(collector)

		ctx := context.Background()
		req := &qapi.InterceptedRequest{Method: http.MethodGet, Path: "/v1/info"}

		require.NoError(t, responseInterceptor(ctx, req, &qapi.InterceptedResponse{StatusCode: http.StatusOK}))

		snapshot := collector.GetMetrics("GET /v1/info")
		require.NotNil(t, snapshot)
		snapshot.TotalRequests = 99

		assert.Equal(t, int64(1), collector.GetMetrics("GET /v1/info").TotalRequests)
	})

	t.Run("unknown endpoint returns nil", func(t *testing.T) {
		t.Parallel()

		collector := qapi.NewMetricsCollector()
		assert.Nil(t, collector.GetMetrics("GET /v1/nowhere"))
	})
}

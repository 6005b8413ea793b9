package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querio-io/qapi/pkg/qapi"
)

// writeSSE writes one server-sent event frame.
func writeSSE(t *testing.T, w http.ResponseWriter, event, data string) {
	t.Helper()

	_, err := w.Write([]byte("event: " + event + "\ndata: " + data + "\n\n"))
	require.NoError(t, err)
}

func TestQueryProgramsClient_Get(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/query-programs/qp-1", r.URL.Path)

		program := &qapi.QueryProgram{Question: "monthly revenue?", Published: true}
		program.GUID = "qp-1"

		writeJSON(t, w, http.StatusOK, program)
	}))

	program, err := c.QueryPrograms().Get(context.Background(), "qp-1")
	require.NoError(t, err)
	assert.Equal(t, "monthly revenue?", program.Question)
	assert.True(t, program.Published)
}

//nolint:funlen // covers stream, API-error, and aggregation paths
func TestQueryProgramsClient_Generate(t *testing.T) {
	t.Parallel()

	t.Run("aggregates the generation stream", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/query-programs/generate", r.URL.Path)
			assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

			var req qapi.QueryProgramGenerateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "monthly revenue?", req.Question)

			w.Header().Set("Content-Type", "text/event-stream")
			writeSSE(t, w, "progress", `{"message":"inspecting schema"}`)
			writeSSE(t, w, "progress", `{"message":"drafting program"}`)
			writeSSE(t, w, "complete", `{"guid":"qp-1","question":"monthly revenue?","program":"SELECT 1"}`)
		}))

		stream, err := c.QueryPrograms().Generate(context.Background(), &qapi.QueryProgramGenerateRequest{
			ProjectGUID: "proj-123",
			Question:    "monthly revenue?",
		})
		require.NoError(t, err)
		require.NotNil(t, stream.Stream)

		var progress []string

		result, err := qapi.ProcessStreamOrResult(stream, qapi.StreamCallbacks[qapi.QueryProgram]{
			OnEvent: func(event *qapi.StreamEvent) {
				if event.Kind == qapi.EventKindProgress {
					if msg, ok := event.Data["message"].(string); ok {
						progress = append(progress, msg)
					}
				}
			},
		})
		require.NoError(t, err)

		program, err := result.Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "qp-1", program.GUID)
		assert.Equal(t, "SELECT 1", program.Program)
		assert.Equal(t, []string{"inspecting schema", "drafting program"}, progress)
	})

	t.Run("api failure lands in the result branch", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusForbidden, map[string]string{"message": "plan does not include generation"})
		}))

		stream, err := c.QueryPrograms().Generate(context.Background(), &qapi.QueryProgramGenerateRequest{
			ProjectGUID: "proj-123",
			Question:    "monthly revenue?",
		})
		require.NoError(t, err)
		assert.Nil(t, stream.Stream)

		result, err := qapi.ProcessStreamOrResult(stream, qapi.StreamCallbacks[qapi.QueryProgram]{})
		require.NoError(t, err)

		_, err = result.Unwrap()
		require.Error(t, err)
		assert.True(t, qapi.IsPermission(err))
	})

	t.Run("nil request", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		}))

		_, err := c.QueryPrograms().Generate(context.Background(), nil)
		require.ErrorIs(t, err, qapi.ErrRequestRequired)
	})
}

func TestQueryProgramsClient_Execute(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/query-programs/qp-1/execute", r.URL.Path)

		writeJSON(t, w, http.StatusOK, &qapi.QueryResult{
			Columns: []string{"month", "revenue"},
			Rows:    [][]interface{}{{"2026-01", 1200.5}},
		})
	}))

	result, err := c.QueryPrograms().Execute(context.Background(), "qp-1", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"month", "revenue"}, result.Columns)
	require.Len(t, result.Rows, 1)
}

func TestQueryProgramsClient_ExecuteStream(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/query-programs/qp-1/execute/stream", r.URL.Path)

		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(t, w, "progress", `{"message":"running"}`)
		writeSSE(t, w, "complete", `{"columns":["month"],"rows":[["2026-01"]]}`)
	}))

	stream, err := c.QueryPrograms().ExecuteStream(context.Background(), "qp-1", nil)
	require.NoError(t, err)

	result, err := qapi.ProcessStreamOrResult(stream, qapi.StreamCallbacks[qapi.QueryResult]{})
	require.NoError(t, err)

	queryResult, err := result.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, []string{"month"}, queryResult.Columns)
}

func TestQueryProgramsClient_Publish(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/query-programs/qp-1/publish", r.URL.Path)

		program := &qapi.QueryProgram{Published: true}
		program.GUID = "qp-1"

		writeJSON(t, w, http.StatusOK, program)
	}))

	program, err := c.QueryPrograms().Publish(context.Background(), "qp-1")
	require.NoError(t, err)
	assert.True(t, program.Published)
}

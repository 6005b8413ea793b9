package qapi

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStream struct {
	data string
	read int
}

func (s *failingStream) Read(p []byte) (int, error) {
	if s.read >= len(s.data) {
		return 0, errors.New("connection reset")
	}

	n := copy(p, s.data[s.read:])
	s.read += n

	return n, nil
}

func (s *failingStream) Close() error { return nil }

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true

	return nil
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestProcessEventStream(t *testing.T) {
	t.Parallel()
	t.Run("aggregates complete event", func(t *testing.T) {
		t.Parallel()

		stream := io.NopCloser(strings.NewReader(
			"event: progress\ndata: {\"message\":\"thinking\"}\n\n" +
				"event: complete\ndata: {\"guid\":\"qp-1\",\"question\":\"top customers\"}\n\n"))

		var events []string

		var completed *QueryProgram

		result, err := ProcessEventStream(stream, StreamCallbacks[QueryProgram]{
			OnEvent: func(event *StreamEvent) {
				events = append(events, string(event.Kind))
			},
			OnComplete: func(data *QueryProgram) {
				completed = data
			},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"progress", "complete"}, events)

		data, err := result.Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "qp-1", data.GUID)
		assert.Equal(t, "top customers", data.Question)
		assert.Same(t, data, completed)
	})

	t.Run("repeated complete frames fire OnComplete once with the last payload", func(t *testing.T) {
		t.Parallel()

		stream := io.NopCloser(strings.NewReader(
			"event: complete\ndata: {\"guid\":\"qp-1\"}\n\n" +
				"event: complete\ndata: {\"guid\":\"qp-2\"}\n\n"))

		var completions []*QueryProgram

		result, err := ProcessEventStream(stream, StreamCallbacks[QueryProgram]{
			OnComplete: func(data *QueryProgram) {
				completions = append(completions, data)
			},
		})
		require.NoError(t, err)

		data, err := result.Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "qp-2", data.GUID)

		require.Len(t, completions, 1)
		assert.Same(t, data, completions[0])
	})

	t.Run("error event fails the result", func(t *testing.T) {
		t.Parallel()

		stream := io.NopCloser(strings.NewReader(
			"event: error\ndata: {\"status\":429,\"message\":\"slow down\"}\n\n"))

		var reported *APIError

		result, err := ProcessEventStream(stream, StreamCallbacks[QueryProgram]{
			OnError: func(apiErr *APIError) {
				reported = apiErr
			},
		})
		require.NoError(t, err)

		require.True(t, result.IsErr())
		assert.Equal(t, KindRateLimit, result.Err.Kind)
		assert.Equal(t, 429, result.Err.Status)
		assert.Equal(t, "slow down", result.Err.Message)
		assert.Same(t, result.Err, reported)
	})

	t.Run("error event without status is an api error", func(t *testing.T) {
		t.Parallel()

		stream := io.NopCloser(strings.NewReader(
			"event: error\ndata: {\"message\":\"model failed\"}\n\n"))

		result, err := ProcessEventStream(stream, StreamCallbacks[QueryProgram]{})
		require.NoError(t, err)

		require.True(t, result.IsErr())
		assert.Equal(t, KindAPI, result.Err.Kind)
		assert.False(t, IsNetwork(result.Err))
	})

	t.Run("non-json error payload preserved verbatim", func(t *testing.T) {
		t.Parallel()

		stream := io.NopCloser(strings.NewReader("event: error\ndata: upstream exploded\n\n"))

		result, err := ProcessEventStream(stream, StreamCallbacks[QueryProgram]{})
		require.NoError(t, err)

		require.True(t, result.IsErr())
		assert.Equal(t, "upstream exploded", result.Err.Message)
	})

	t.Run("eof without complete yields zero value", func(t *testing.T) {
		t.Parallel()

		stream := io.NopCloser(strings.NewReader("event: progress\ndata: {}\n\n"))

		result, err := ProcessEventStream(stream, StreamCallbacks[QueryProgram]{})
		require.NoError(t, err)

		data, err := result.Unwrap()
		require.NoError(t, err)
		assert.Equal(t, &QueryProgram{}, data)
	})

	t.Run("mid-stream read failure is a network error", func(t *testing.T) {
		t.Parallel()

		stream := &failingStream{data: "event: progress\ndata: {}\n\n"}

		result, err := ProcessEventStream(stream, StreamCallbacks[QueryProgram]{})
		require.NoError(t, err)

		require.True(t, result.IsErr())
		assert.Equal(t, KindNetwork, result.Err.Kind)
	})

	t.Run("nil stream is a precondition error", func(t *testing.T) {
		t.Parallel()

		_, err := ProcessEventStream[QueryProgram](nil, StreamCallbacks[QueryProgram]{})
		assert.ErrorIs(t, err, ErrNilStream)
	})

	t.Run("stream is closed after consumption", func(t *testing.T) {
		t.Parallel()

		tracker := &closeTracker{Reader: strings.NewReader("event: complete\ndata: {}\n\n")}

		_, err := ProcessEventStream(tracker, StreamCallbacks[QueryProgram]{})
		require.NoError(t, err)
		assert.True(t, tracker.closed)
	})

	t.Run("malformed complete payload fails the result", func(t *testing.T) {
		t.Parallel()

		stream := io.NopCloser(strings.NewReader("event: complete\ndata: {not json\n\n"))

		result, err := ProcessEventStream(stream, StreamCallbacks[QueryProgram]{})
		require.NoError(t, err)

		require.True(t, result.IsErr())
		assert.Equal(t, KindAPI, result.Err.Kind)
	})
}

func TestProcessStreamOrResult(t *testing.T) {
	t.Parallel()
	t.Run("resolved result passes through", func(t *testing.T) {
		t.Parallel()

		source := StreamOrResult[QueryProgram]{
			Result: Fail[QueryProgram](ClassifyStatus(403, "", "denied", "", nil)),
		}

		result, err := ProcessStreamOrResult(source, StreamCallbacks[QueryProgram]{})
		require.NoError(t, err)
		require.True(t, result.IsErr())
		assert.Equal(t, KindPermission, result.Err.Kind)
	})

	t.Run("stream branch is consumed", func(t *testing.T) {
		t.Parallel()

		source := StreamOrResult[QueryProgram]{
			Stream: io.NopCloser(strings.NewReader("event: complete\ndata: {\"guid\":\"qp-2\"}\n\n")),
		}

		result, err := ProcessStreamOrResult(source, StreamCallbacks[QueryProgram]{})
		require.NoError(t, err)

		data, err := result.Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "qp-2", data.GUID)
	})
}

func TestToStreamEvent_RawFallback(t *testing.T) {
	t.Parallel()

	stream := io.NopCloser(strings.NewReader("data: plain text token\n\n"))

	var seen *StreamEvent

	_, err := ProcessEventStream(stream, StreamCallbacks[QueryProgram]{
		OnEvent: func(event *StreamEvent) {
			seen = event
		},
	})
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, EventKindData, seen.Kind)
	assert.Nil(t, seen.Data)
	assert.Equal(t, "plain text token", seen.Raw)
}

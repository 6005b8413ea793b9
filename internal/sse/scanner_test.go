package sse_test

import (
	"io"
	"strings"
	"testing"

	"github.com/querio-io/qapi/internal/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader returns its chunks one Read at a time, simulating frames
// arriving split across network reads.
type chunkReader struct {
	chunks []string
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}

	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]

	if r.chunks[0] == "" {
		r.chunks = r.chunks[1:]
	}

	return n, nil
}

func TestScanner_Next(t *testing.T) {
	t.Parallel()
	t.Run("single frame", func(t *testing.T) {
		t.Parallel()

		scanner := sse.NewScanner(strings.NewReader("event: progress\ndata: {\"step\":1}\n\n"))

		frame, err := scanner.Next()
		require.NoError(t, err)
		assert.Equal(t, "progress", frame.Event)
		assert.Equal(t, `{"step":1}`, frame.Data)

		_, err = scanner.Next()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("multiple frames", func(t *testing.T) {
		t.Parallel()

		input := "event: progress\ndata: one\n\nevent: complete\ndata: two\n\n"
		scanner := sse.NewScanner(strings.NewReader(input))

		first, err := scanner.Next()
		require.NoError(t, err)
		assert.Equal(t, "progress", first.Event)
		assert.Equal(t, "one", first.Data)

		second, err := scanner.Next()
		require.NoError(t, err)
		assert.Equal(t, "complete", second.Event)
		assert.Equal(t, "two", second.Data)

		_, err = scanner.Next()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("frame split across reads", func(t *testing.T) {
		t.Parallel()

		reader := &chunkReader{chunks: []string{
			"event: compl",
			"ete\ndat",
			"a: {\"x\":1}\n\n",
		}}
		scanner := sse.NewScanner(reader)

		frame, err := scanner.Next()
		require.NoError(t, err)
		assert.Equal(t, "complete", frame.Event)
		assert.Equal(t, `{"x":1}`, frame.Data)
	})

	t.Run("crlf framing", func(t *testing.T) {
		t.Parallel()

		scanner := sse.NewScanner(strings.NewReader("event: data\r\ndata: v\r\n\r\n"))

		frame, err := scanner.Next()
		require.NoError(t, err)
		assert.Equal(t, "data", frame.Event)
		assert.Equal(t, "v", frame.Data)
	})

	t.Run("multi-line data joined", func(t *testing.T) {
		t.Parallel()

		scanner := sse.NewScanner(strings.NewReader("data: line one\ndata: line two\n\n"))

		frame, err := scanner.Next()
		require.NoError(t, err)
		assert.Equal(t, "line one\nline two", frame.Data)
	})

	t.Run("comment-only blocks skipped", func(t *testing.T) {
		t.Parallel()

		scanner := sse.NewScanner(strings.NewReader(": keepalive\n\ndata: real\n\n"))

		frame, err := scanner.Next()
		require.NoError(t, err)
		assert.Equal(t, "real", frame.Data)
	})

	t.Run("id and retry fields", func(t *testing.T) {
		t.Parallel()

		scanner := sse.NewScanner(strings.NewReader("id: evt-7\nretry: 2500\ndata: x\n\n"))

		frame, err := scanner.Next()
		require.NoError(t, err)
		assert.Equal(t, "evt-7", frame.ID)
		assert.Equal(t, 2500, frame.Retry)
		assert.Equal(t, "x", frame.Data)
	})

	t.Run("final frame without trailing separator", func(t *testing.T) {
		t.Parallel()

		scanner := sse.NewScanner(strings.NewReader("event: complete\ndata: done"))

		frame, err := scanner.Next()
		require.NoError(t, err)
		assert.Equal(t, "complete", frame.Event)
		assert.Equal(t, "done", frame.Data)

		_, err = scanner.Next()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("value without space after colon", func(t *testing.T) {
		t.Parallel()

		scanner := sse.NewScanner(strings.NewReader("data:tight\n\n"))

		frame, err := scanner.Next()
		require.NoError(t, err)
		assert.Equal(t, "tight", frame.Data)
	})

	t.Run("empty stream", func(t *testing.T) {
		t.Parallel()

		scanner := sse.NewScanner(strings.NewReader(""))

		_, err := scanner.Next()
		assert.Equal(t, io.EOF, err)
	})
}

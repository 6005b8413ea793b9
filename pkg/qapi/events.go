package qapi

import "io"

// EventStream is the raw, unconsumed body of a text/event-stream response.
// At most one consumer may read it, and the consumer must close it on every
// exit path.
type EventStream = io.ReadCloser

// EventKind identifies the logical type of a server-sent event frame.
type EventKind string

const (
	// EventKindData is the default kind for frames without an event line.
	EventKindData EventKind = "data"

	// EventKindProgress carries intermediate progress payloads.
	EventKindProgress EventKind = "progress"

	// EventKindComplete carries the final payload of a generation or
	// execution stream.
	EventKindComplete EventKind = "complete"

	// EventKindError carries a structured API error terminating the stream.
	EventKindError EventKind = "error"
)

// StreamEvent is one logical frame from an event stream. Data holds the
// decoded JSON payload when the wire data parses as JSON, otherwise Raw
// carries the payload verbatim and Data is nil.
type StreamEvent struct {
	Kind  EventKind
	Data  map[string]interface{}
	Raw   string
	ID    string
	Retry int
}

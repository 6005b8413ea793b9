package qapi

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/querio-io/qapi/internal/sse"
)

// StreamCallbacks receives events while ProcessEventStream consumes a stream.
// All callbacks are optional. OnEvent is invoked for every frame in wire
// order. OnError fires at most once, after the OnEvent call for its frame.
// OnComplete fires at most once, after the stream is fully consumed, with the
// final payload; if several complete frames arrive, the last one wins.
type StreamCallbacks[T any] struct {
	OnEvent    func(event *StreamEvent)
	OnComplete func(data *T)
	OnError    func(apiErr *APIError)
}

// ProcessEventStream consumes an SSE body to completion and aggregates it
// into a single Result. The stream is always closed before returning. The
// returned error is non-nil only for the precondition violation of a nil
// stream; every runtime failure is reported through the Result envelope.
//
// A frame of kind "complete" sets the final payload; a frame of kind "error"
// terminates the stream with a failure envelope. If the stream ends without
// a complete frame, the success envelope wraps a zero value.
func ProcessEventStream[T any](stream EventStream, callbacks StreamCallbacks[T]) (Result[T], error) {
	if stream == nil {
		return Result[T]{}, ErrNilStream
	}

	defer func() { _ = stream.Close() }()

	scanner := sse.NewScanner(stream)

	var final *T

	for {
		frame, err := scanner.Next()
		if err != nil {
			if err == io.EOF {
				break
			}

			return Fail[T](NetworkError(err)), nil
		}

		event := toStreamEvent(frame)

		if callbacks.OnEvent != nil {
			callbacks.OnEvent(event)
		}

		switch event.Kind {
		case EventKindComplete:
			payload, err := decodeCompletePayload[T](frame.Data)
			if err != nil {
				return Fail[T](&APIError{
					Kind:    KindAPI,
					Code:    CodeUnknownError,
					Message: fmt.Sprintf("decoding complete event: %v", err),
				}), nil
			}

			final = payload

		case EventKindError:
			apiErr := streamErrorFromEvent(event)

			if callbacks.OnError != nil {
				callbacks.OnError(apiErr)
			}

			return Fail[T](apiErr), nil
		}
	}

	if final != nil && callbacks.OnComplete != nil {
		callbacks.OnComplete(final)
	}

	if final == nil {
		final = new(T)
	}

	return Ok(final), nil
}

// ProcessStreamOrResult treats streaming and buffered outcomes uniformly:
// an already-resolved result passes through unchanged, a stream is consumed
// via ProcessEventStream.
func ProcessStreamOrResult[T any](source StreamOrResult[T], callbacks StreamCallbacks[T]) (Result[T], error) {
	if source.Stream == nil {
		return source.Result, nil
	}

	return ProcessEventStream(source.Stream, callbacks)
}

// toStreamEvent converts a wire frame into a typed event. Payloads that do
// not parse as JSON objects are preserved verbatim in Raw.
func toStreamEvent(frame *sse.Frame) *StreamEvent {
	event := &StreamEvent{
		Kind:  EventKindData,
		Raw:   frame.Data,
		ID:    frame.ID,
		Retry: frame.Retry,
	}

	if frame.Event != "" {
		event.Kind = EventKind(frame.Event)
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(frame.Data), &data); err == nil {
		event.Data = data
	}

	return event
}

func decodeCompletePayload[T any](data string) (*T, error) {
	payload := new(T)

	if data == "" {
		return payload, nil
	}

	if err := json.Unmarshal([]byte(data), payload); err != nil {
		return nil, err
	}

	return payload, nil
}

// streamErrorFromEvent builds an APIError from an error frame's payload
// fields. A payload without a status keeps the generic API kind rather than
// being misclassified as a network failure.
func streamErrorFromEvent(event *StreamEvent) *APIError {
	if event.Data == nil {
		return &APIError{Kind: KindAPI, Code: CodeUnknownError, Message: event.Raw}
	}

	status := intField(event.Data, "status")
	code := stringField(event.Data, "code")
	requestID := stringField(event.Data, "request_id")

	message := stringField(event.Data, "message")
	if message == "" {
		message = stringField(event.Data, "detail")
	}

	var details map[string]interface{}
	if d, ok := event.Data["details"].(map[string]interface{}); ok {
		details = d
	}

	if status > 0 {
		return ClassifyStatus(status, code, message, requestID, details)
	}

	if code == "" {
		code = CodeUnknownError
	}

	return &APIError{
		Kind:      KindAPI,
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Details:   details,
	}
}

func stringField(data map[string]interface{}, key string) string {
	if value, ok := data[key].(string); ok {
		return value
	}

	return ""
}

func intField(data map[string]interface{}, key string) int {
	switch value := data[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return 0
	}
}

package qapi

import "errors"

// Static errors for err113 compliance.
var (
	ErrEmptyResult = errors.New("result has neither data nor error")
)

// Result is the success/failure envelope produced by the streaming layer.
// Exactly one of Data and Err is set; never both, never neither.
//
// Buffered call paths use Go's idiomatic (value, error) returns instead, with
// the *APIError extractable via errors.As. Result exists so that methods
// which may either stream or buffer can hand callers one uniform shape.
type Result[T any] struct {
	Data *T
	Err  *APIError
}

// Ok wraps a successful payload.
func Ok[T any](data *T) Result[T] {
	return Result[T]{Data: data}
}

// Fail wraps an API error.
func Fail[T any](apiErr *APIError) Result[T] {
	return Result[T]{Err: apiErr}
}

// IsErr reports whether the failure branch is populated.
func (r Result[T]) IsErr() bool {
	return r.Err != nil
}

// Unwrap converts the envelope back to an idiomatic (value, error) pair.
func (r Result[T]) Unwrap() (*T, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	if r.Data == nil {
		return nil, ErrEmptyResult
	}

	return r.Data, nil
}

// StreamOrResult is the tagged union returned by operations that either
// stream events or resolve immediately to a buffered result. Callers branch
// on Stream != nil rather than inspecting runtime types.
type StreamOrResult[T any] struct {
	// Stream, when non-nil, is the raw SSE body to be consumed by
	// ProcessEventStream. The caller owns it exclusively.
	Stream EventStream

	// Result holds the already-buffered outcome when Stream is nil.
	Result Result[T]
}

package qapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/querio-io/qapi/internal/constants"
)

// PollingOptions configures one Poll invocation. The zero value polls every
// second, backing off by 1.5x up to 30 seconds, for at most 5 minutes.
type PollingOptions[T any] struct {
	// Timeout bounds the whole polling loop.
	Timeout time.Duration

	// InitialInterval is the wait after the first unsatisfied probe.
	InitialInterval time.Duration

	// MaxInterval caps the grown interval. If InitialInterval exceeds it,
	// the initial interval is clamped down to MaxInterval.
	MaxInterval time.Duration

	// BackoffMultiplier grows the interval between attempts.
	BackoffMultiplier float64

	// EndCondition reports whether a probe result is terminal. If nil, Poll
	// returns after the first successful probe.
	EndCondition func(result T) bool

	// ErrorCheck inspects a probe result before EndCondition; a non-nil
	// return aborts polling immediately with that error.
	ErrorCheck func(result T) error

	// Test seams. When nil the real clock is used.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// PollingTimeoutError reports that a Poll deadline elapsed before the end
// condition was met.
type PollingTimeoutError struct {
	Elapsed  time.Duration
	Attempts int
}

// Error implements the error interface.
func (e *PollingTimeoutError) Error() string {
	return fmt.Sprintf("polling timed out after %.1fs (%d attempts)", e.Elapsed.Seconds(), e.Attempts)
}

// PollingCancelledError reports that the caller's context was cancelled
// while polling. Timeout and cancellation are never conflated.
type PollingCancelledError struct {
	Cause error
}

// Error implements the error interface.
func (e *PollingCancelledError) Error() string {
	return fmt.Sprintf("polling cancelled: %v", e.Cause)
}

// Unwrap returns the context error that caused the cancellation.
func (e *PollingCancelledError) Unwrap() error {
	return e.Cause
}

// IsPollingTimeout checks if the error is a polling timeout.
func IsPollingTimeout(err error) bool {
	target := &PollingTimeoutError{}

	return errors.As(err, &target)
}

// IsPollingCancelled checks if the error is a polling cancellation.
func IsPollingCancelled(err error) bool {
	target := &PollingCancelledError{}

	return errors.As(err, &target)
}

// Poll repeatedly invokes operation until its result satisfies EndCondition,
// ErrorCheck reports a failure, the timeout elapses, or ctx is cancelled.
// Attempts are strictly sequential. Cancellation is checked before every
// probe, not only at sleep boundaries, and a cancelled sleep returns
// immediately with its timer stopped.
func Poll[T any](ctx context.Context, operation func(ctx context.Context) (T, error), opts *PollingOptions[T]) (T, error) {
	var zero T

	if operation == nil {
		return zero, ErrNilOperation
	}

	if opts == nil {
		opts = &PollingOptions[T]{}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultPollTimeout
	}

	interval := opts.InitialInterval
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}

	maxInterval := opts.MaxInterval
	if maxInterval <= 0 {
		maxInterval = constants.DefaultMaxPollInterval
	}

	if interval > maxInterval {
		interval = maxInterval
	}

	multiplier := opts.BackoffMultiplier
	if multiplier <= 1 {
		multiplier = constants.DefaultBackoffMultiplier
	}

	now := opts.now
	if now == nil {
		now = time.Now
	}

	sleep := opts.sleep
	if sleep == nil {
		sleep = cancellableSleep
	}

	start := now()
	deadline := start.Add(timeout)
	attempts := 0

	for {
		if err := ctx.Err(); err != nil {
			return zero, &PollingCancelledError{Cause: err}
		}

		attempts++

		result, err := operation(ctx)
		if err != nil {
			return zero, wrapOperationError(err, attempts)
		}

		if opts.ErrorCheck != nil {
			if err := opts.ErrorCheck(result); err != nil {
				return zero, err
			}
		}

		if opts.EndCondition == nil || opts.EndCondition(result) {
			return result, nil
		}

		remaining := deadline.Sub(now())
		if remaining <= 0 {
			return zero, &PollingTimeoutError{Elapsed: now().Sub(start), Attempts: attempts}
		}

		wait := interval
		if wait > remaining {
			wait = remaining
		}

		if err := sleep(ctx, wait); err != nil {
			return zero, &PollingCancelledError{Cause: err}
		}

		interval = time.Duration(float64(interval) * multiplier)
		if interval > maxInterval {
			interval = maxInterval
		}
	}
}

// wrapOperationError preserves the identity of errors that are already part
// of the taxonomy and wraps everything else as a polling-layer failure.
func wrapOperationError(err error, attempts int) error {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return err
	}

	if IsPollingTimeout(err) || IsPollingCancelled(err) {
		return err
	}

	return fmt.Errorf("polling operation failed on attempt %d: %w", attempts, err)
}

// cancellableSleep waits for d or until ctx is cancelled, whichever comes
// first. The timer is always stopped, so no timer outlives the call.
func cancellableSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

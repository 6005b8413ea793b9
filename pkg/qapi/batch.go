package qapi

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/querio-io/qapi/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrBatchAborted = errors.New("batch aborted")
)

// BatchOperation is one unit of work in a batch. Execute is typically a
// closure over a resource client call.
type BatchOperation struct {
	// ID correlates the operation to its result.
	ID string

	// Execute performs the operation.
	Execute func(ctx context.Context) (interface{}, error)
}

// BatchResult is the outcome of one batch operation, at the same index as
// its operation.
type BatchResult struct {
	ID      string
	Success bool
	Data    interface{}
	Error   error
}

// BatchOptions tunes batch execution.
type BatchOptions struct {
	// Concurrency bounds how many operations run at once. Zero means the
	// default limit.
	Concurrency int

	// StopOnError cancels outstanding operations after the first failure.
	// Completed results are still returned; unstarted operations report a
	// batch-aborted error.
	StopOnError bool
}

// ExecuteBatch runs operations concurrently with a bounded worker pool and
// returns one result per operation, in operation order.
func ExecuteBatch(ctx context.Context, operations []BatchOperation, opts *BatchOptions) []BatchResult {
	if opts == nil {
		opts = &BatchOptions{}
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	results := make([]BatchResult, len(operations))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, op := range operations {
		group.Go(func() error {
			result := BatchResult{ID: op.ID}

			if err := groupCtx.Err(); err != nil {
				result.Error = fmt.Errorf("%w: %v", ErrBatchAborted, err)
				results[i] = result

				// An aborted sibling is not a new failure.
				return nil
			}

			data, err := op.Execute(groupCtx)
			result.Success = err == nil
			result.Data = data
			result.Error = err
			results[i] = result

			if err != nil && opts.StopOnError {
				return err
			}

			return nil
		})
	}

	_ = group.Wait()

	return results
}

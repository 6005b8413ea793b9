package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/querio-io/qapi/internal/constants"
	"github.com/querio-io/qapi/internal/http"
	"github.com/querio-io/qapi/pkg/qapi"
)

// JobsClient implements qapi.JobsClient.
type JobsClient struct {
	httpClient *http.Client
	polling    *qapi.PollingDefaults
}

// NewJobsClient creates a new jobs client. polling may be nil, in which case
// the default schedule applies.
func NewJobsClient(httpClient *http.Client, polling *qapi.PollingDefaults) *JobsClient {
	return &JobsClient{httpClient: httpClient, polling: polling}
}

// Get implements qapi.JobsClient.Get.
func (c *JobsClient) Get(ctx context.Context, guid string) (*qapi.Job, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	resp, err := c.httpClient.Get(ctx, "/v1/jobs/"+guid, nil)
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}

	var job qapi.Job
	if err := json.Unmarshal(resp.Body, &job); err != nil {
		return nil, fmt.Errorf("parsing job response: %w", err)
	}

	return &job, nil
}

// PollUntilComplete implements qapi.JobsClient.PollUntilComplete. A job that
// lands in the FAILED state returns an error carrying the job's first API
// error, with the rest summarized in the message.
func (c *JobsClient) PollUntilComplete(ctx context.Context, guid string) (*qapi.Job, error) {
	if guid == "" {
		return nil, qapi.ErrGUIDRequired
	}

	opts := &qapi.PollingOptions[*qapi.Job]{
		EndCondition: func(job *qapi.Job) bool {
			return job != nil && job.State == constants.JobStateComplete
		},
		ErrorCheck: func(job *qapi.Job) error {
			if job != nil && job.State == constants.JobStateFailed {
				return jobFailedError(job)
			}

			return nil
		},
	}

	if c.polling != nil {
		opts.Timeout = c.polling.Timeout
		opts.InitialInterval = c.polling.InitialInterval
		opts.MaxInterval = c.polling.MaxInterval
		opts.BackoffMultiplier = c.polling.BackoffMultiplier
	}

	return qapi.Poll(ctx, func(ctx context.Context) (*qapi.Job, error) {
		return c.Get(ctx, guid)
	}, opts)
}

// jobFailedError flattens a failed job's error list into a single error. The
// first API error stays unwrappable via errors.As.
func jobFailedError(job *qapi.Job) error {
	if len(job.Errors) == 0 {
		return fmt.Errorf("job %s failed", job.GUID)
	}

	messages := make([]string, 0, len(job.Errors))
	for i := range job.Errors {
		messages = append(messages, job.Errors[i].Message)
	}

	return fmt.Errorf("job %s failed: %s: %w", job.GUID, strings.Join(messages, "; "), &job.Errors[0])
}

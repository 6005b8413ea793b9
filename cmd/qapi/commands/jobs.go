package commands

import (
	"context"
	"fmt"

	"github.com/querio-io/qapi/internal/constants"
	"github.com/querio-io/qapi/pkg/qapi"
	"github.com/spf13/cobra"
)

// NewJobsCommand creates the jobs command group
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Manage asynchronous jobs",
		Long:    "Monitor and wait on Querio asynchronous jobs",
	}

	cmd.AddCommand(newJobsGetCommand())
	cmd.AddCommand(newJobsWaitCommand())

	return cmd
}

func newJobsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get JOB_GUID",
		Short: "Get job details",
		Long:  "Display detailed information about a specific job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			job, err := client.Jobs().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get job: %w", err)
			}

			return outputJob(job)
		},
	}
}

func newJobsWaitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wait JOB_GUID",
		Short: "Wait for a job to complete",
		Long:  "Poll a job until it completes, fails, or the polling schedule gives up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			job, err := client.Jobs().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get job: %w", err)
			}

			if job.State == constants.JobStateProcessing {
				fmt.Printf("Job %s is processing, waiting...\n", job.GUID)
			}

			job, err = client.Jobs().PollUntilComplete(ctx, args[0])
			if err != nil {
				if qapi.IsPollingTimeout(err) {
					return fmt.Errorf("job did not complete in time: %w", err)
				}

				return fmt.Errorf("failed to wait for job: %w", err)
			}

			if err := outputJob(job); err != nil {
				return err
			}

			if len(job.Errors) > 0 {
				return ErrJobCompletedWithErrors
			}

			return nil
		},
	}
}

func outputJob(job *qapi.Job) error {
	if handled, err := renderOutput(job); handled {
		return err
	}

	table := newPropertyTable()

	_ = table.Append("GUID", job.GUID)
	_ = table.Append("Operation", job.Operation)
	_ = table.Append("State", job.State)
	_ = table.Append("Created", job.CreatedAt.Format("2006-01-02 15:04:05"))
	_ = table.Append("Updated", job.UpdatedAt.Format("2006-01-02 15:04:05"))

	if len(job.Errors) > 0 {
		_ = table.Append("Errors", formatJobErrors(job.Errors))
	}

	if len(job.Warnings) > 0 {
		_ = table.Append("Warnings", formatWarnings(job.Warnings))
	}

	_ = table.Render()

	return nil
}

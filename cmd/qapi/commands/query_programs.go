package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/querio-io/qapi/internal/constants"
	"github.com/querio-io/qapi/pkg/qapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewQueryProgramsCommand creates the query programs command group.
func NewQueryProgramsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query-programs",
		Aliases: []string{"query-program", "qp"},
		Short:   "Manage query programs",
		Long:    "Generate, execute, publish, and delete query programs",
	}

	cmd.AddCommand(newQueryProgramsListCommand())
	cmd.AddCommand(newQueryProgramsGetCommand())
	cmd.AddCommand(newQueryProgramsGenerateCommand())
	cmd.AddCommand(newQueryProgramsExecuteCommand())
	cmd.AddCommand(newQueryProgramsPublishCommand())
	cmd.AddCommand(newQueryProgramsDeleteCommand())

	return cmd
}

func newQueryProgramsListCommand() *cobra.Command {
	var (
		projectGUID string
		perPage     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List query programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			params := qapi.NewQueryParams().WithPerPage(perPage)
			if projectGUID != "" {
				params = params.WithFilter("project_guid", projectGUID)
			}

			programs, err := client.QueryPrograms().List(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to list query programs: %w", err)
			}

			if handled, err := renderOutput(programs.Resources); handled {
				return err
			}

			if len(programs.Resources) == 0 {
				_, _ = os.Stdout.WriteString("No query programs found\n")

				return nil
			}

			table := newListTable("GUID", "Question", "Published", "Created")

			for _, program := range programs.Resources {
				_ = table.Append(program.GUID, program.Question,
					fmt.Sprintf("%t", program.Published),
					program.CreatedAt.Format("2006-01-02"))
			}

			_ = table.Render()

			return nil
		},
	}

	cmd.Flags().StringVar(&projectGUID, "project", "", "filter by project GUID")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")

	return cmd
}

func newQueryProgramsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROGRAM_GUID",
		Short: "Get query program details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			program, err := client.QueryPrograms().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get query program: %w", err)
			}

			if handled, err := renderOutput(program); handled {
				return err
			}

			table := newPropertyTable()

			_ = table.Append("GUID", program.GUID)
			_ = table.Append("Project", program.ProjectGUID)
			_ = table.Append("Question", program.Question)
			_ = table.Append("Published", fmt.Sprintf("%t", program.Published))
			_ = table.Append("Program", valueOrNA(program.Program))
			_ = table.Append("Reasoning", valueOrNA(program.Reasoning))

			_ = table.Render()

			return nil
		},
	}
}

func newQueryProgramsGenerateCommand() *cobra.Command {
	var projectGUID string

	cmd := &cobra.Command{
		Use:   "generate QUESTION",
		Short: "Generate a query program from a question",
		Long:  "Ask the model to build a query program from a natural-language question, streaming progress as it works",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectGUID == "" {
				return ErrProjectRequired
			}

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			stream, err := client.QueryPrograms().Generate(context.Background(), &qapi.QueryProgramGenerateRequest{
				ProjectGUID: projectGUID,
				Question:    args[0],
			})
			if err != nil {
				return fmt.Errorf("failed to start generation: %w", err)
			}

			result, err := qapi.ProcessStreamOrResult(stream, streamProgressCallbacks[qapi.QueryProgram]())
			if err != nil {
				return fmt.Errorf("reading generation stream: %w", err)
			}

			program, err := result.Unwrap()
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			if handled, err := renderOutput(program); handled {
				return err
			}

			fmt.Printf("\nGenerated program %s:\n%s\n", program.GUID, program.Program)

			return nil
		},
	}

	cmd.Flags().StringVar(&projectGUID, "project", "", "project GUID")

	return cmd
}

func newQueryProgramsExecuteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute PROGRAM_GUID",
		Short: "Execute a query program",
		Long:  "Run a query program to completion and print the tabular result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			result, err := client.QueryPrograms().Execute(context.Background(), args[0], &qapi.QueryProgramExecuteRequest{})
			if err != nil {
				return fmt.Errorf("failed to execute query program: %w", err)
			}

			if handled, err := renderOutput(result); handled {
				return err
			}

			return renderQueryResult(result)
		},
	}

	return cmd
}

func renderQueryResult(result *qapi.QueryResult) error {
	if result.RowCount == 0 {
		_, _ = os.Stdout.WriteString("No rows returned\n")

		return nil
	}

	table := newListTable(result.Columns...)

	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprintf("%v", cell)
		}

		_ = table.Append(toAnySlice(cells)...)
	}

	_ = table.Render()

	fmt.Printf("\n%d rows\n", result.RowCount)

	return nil
}

func newQueryProgramsPublishCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "publish PROGRAM_GUID",
		Short: "Publish a query program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			program, err := client.QueryPrograms().Publish(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to publish query program: %w", err)
			}

			fmt.Printf("Published query program %s\n", program.GUID)

			return nil
		},
	}
}

func newQueryProgramsDeleteCommand() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "delete PROGRAM_GUID",
		Short: "Delete a query program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			job, err := client.QueryPrograms().Delete(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to delete query program: %w", err)
			}

			if !wait {
				fmt.Printf("Deletion started, job GUID %s\n", job.GUID)

				return nil
			}

			if _, err := client.Jobs().PollUntilComplete(ctx, job.GUID); err != nil {
				return fmt.Errorf("waiting for deletion: %w", err)
			}

			fmt.Println("Query program deleted")

			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the deletion job to complete")

	return cmd
}

// streamProgressCallbacks prints progress events to stderr while a stream is
// being aggregated, keeping stdout clean for the final result.
func streamProgressCallbacks[T any]() qapi.StreamCallbacks[T] {
	verbose := viper.GetBool("verbose")

	return qapi.StreamCallbacks[T]{
		OnEvent: func(event *qapi.StreamEvent) {
			if event.Kind == qapi.EventKindProgress || verbose {
				if message, ok := event.Data["message"].(string); ok {
					fmt.Fprintln(os.Stderr, message)
				}
			}
		},
	}
}

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/querio-io/qapi/internal/constants"
	"github.com/querio-io/qapi/pkg/qapi"
	"github.com/spf13/cobra"
)

// NewDatasourcesCommand creates the datasources command group.
func NewDatasourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasources",
		Aliases: []string{"datasource", "ds"},
		Short:   "Manage datasources",
		Long:    "List, create, upload, and delete project datasources",
	}

	cmd.AddCommand(newDatasourcesListCommand())
	cmd.AddCommand(newDatasourcesGetCommand())
	cmd.AddCommand(newDatasourcesCreateCommand())
	cmd.AddCommand(newDatasourcesUploadCommand())
	cmd.AddCommand(newDatasourcesDeleteCommand())

	return cmd
}

func newDatasourcesListCommand() *cobra.Command {
	var (
		projectGUID string
		perPage     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List datasources",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			params := qapi.NewQueryParams().WithPerPage(perPage)
			if projectGUID != "" {
				params = params.WithFilter("project_guid", projectGUID)
			}

			datasources, err := client.Datasources().List(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to list datasources: %w", err)
			}

			if handled, err := renderOutput(datasources.Resources); handled {
				return err
			}

			if len(datasources.Resources) == 0 {
				_, _ = os.Stdout.WriteString("No datasources found\n")

				return nil
			}

			table := newListTable("Name", "GUID", "Type", "State", "Tables")

			for _, datasource := range datasources.Resources {
				_ = table.Append(datasource.Name, datasource.GUID, datasource.Type,
					datasource.State, fmt.Sprintf("%d", datasource.TableCount))
			}

			_ = table.Render()

			return nil
		},
	}

	cmd.Flags().StringVar(&projectGUID, "project", "", "filter by project GUID")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")

	return cmd
}

func newDatasourcesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get DATASOURCE_GUID",
		Short: "Get datasource details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			datasource, err := client.Datasources().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get datasource: %w", err)
			}

			if handled, err := renderOutput(datasource); handled {
				return err
			}

			table := newPropertyTable()

			_ = table.Append("Name", datasource.Name)
			_ = table.Append("GUID", datasource.GUID)
			_ = table.Append("Type", datasource.Type)
			_ = table.Append("State", datasource.State)
			_ = table.Append("Project", datasource.ProjectGUID)
			_ = table.Append("Tables", fmt.Sprintf("%d", datasource.TableCount))
			_ = table.Append("Created", datasource.CreatedAt.Format("2006-01-02 15:04:05"))

			_ = table.Render()

			return nil
		},
	}
}

func newDatasourcesCreateCommand() *cobra.Command {
	var (
		projectGUID   string
		dsType        string
		connectionURI string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a datasource",
		Long:  "Create a connection-backed datasource in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectGUID == "" {
				return ErrProjectRequired
			}

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			datasource, err := client.Datasources().Create(context.Background(), &qapi.DatasourceCreateRequest{
				Name:          args[0],
				Type:          dsType,
				ProjectGUID:   projectGUID,
				ConnectionURI: connectionURI,
			})
			if err != nil {
				return fmt.Errorf("failed to create datasource: %w", err)
			}

			fmt.Printf("Created datasource '%s' with GUID %s (state %s)\n",
				datasource.Name, datasource.GUID, datasource.State)

			return nil
		},
	}

	cmd.Flags().StringVar(&projectGUID, "project", "", "project GUID")
	cmd.Flags().StringVar(&dsType, "type", "postgres", "datasource type")
	cmd.Flags().StringVar(&connectionURI, "connection-uri", "", "connection URI")

	return cmd
}

func newDatasourcesUploadCommand() *cobra.Command {
	var (
		projectGUID string
		name        string
	)

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file-backed datasource",
		Long:  "Upload a file (e.g. CSV) as a new datasource; ingestion continues asynchronously",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectGUID == "" {
				return ErrProjectRequired
			}

			path := args[0]
			if name == "" {
				name = filepath.Base(path)
			}

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening file: %w", err)
			}
			defer func() { _ = file.Close() }()

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			datasource, err := client.Datasources().Upload(context.Background(),
				projectGUID, name, filepath.Base(path), file)
			if err != nil {
				return fmt.Errorf("failed to upload datasource: %w", err)
			}

			fmt.Printf("Uploaded datasource '%s' with GUID %s (state %s)\n",
				datasource.Name, datasource.GUID, datasource.State)

			return nil
		},
	}

	cmd.Flags().StringVar(&projectGUID, "project", "", "project GUID")
	cmd.Flags().StringVar(&name, "name", "", "datasource name (defaults to the file name)")

	return cmd
}

func newDatasourcesDeleteCommand() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "delete DATASOURCE_GUID",
		Short: "Delete a datasource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			job, err := client.Datasources().Delete(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to delete datasource: %w", err)
			}

			if !wait {
				fmt.Printf("Deletion started, job GUID %s\n", job.GUID)

				return nil
			}

			if _, err := client.Jobs().PollUntilComplete(ctx, job.GUID); err != nil {
				return fmt.Errorf("waiting for deletion: %w", err)
			}

			fmt.Println("Datasource deleted")

			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the deletion job to complete")

	return cmd
}

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/querio-io/qapi/internal/constants"
	"github.com/querio-io/qapi/pkg/qapi"
	"github.com/spf13/cobra"
)

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage projects",
		Long:    "List, create, update, and delete Querio projects",
	}

	cmd.AddCommand(newProjectsListCommand())
	cmd.AddCommand(newProjectsGetCommand())
	cmd.AddCommand(newProjectsCreateCommand())
	cmd.AddCommand(newProjectsUpdateCommand())
	cmd.AddCommand(newProjectsDeleteCommand())

	return cmd
}

func newProjectsListCommand() *cobra.Command {
	var perPage int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			params := qapi.NewQueryParams().WithPerPage(perPage)

			projects, err := client.Projects().List(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			if handled, err := renderOutput(projects.Resources); handled {
				return err
			}

			return renderProjectTable(projects)
		},
	}

	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")

	return cmd
}

func renderProjectTable(projects *qapi.ListResponse[qapi.Project]) error {
	if len(projects.Resources) == 0 {
		_, _ = os.Stdout.WriteString("No projects found\n")

		return nil
	}

	table := newListTable("Name", "GUID", "Description", "Created")

	for _, project := range projects.Resources {
		_ = table.Append(project.Name, project.GUID,
			valueOrNA(project.Description),
			project.CreatedAt.Format("2006-01-02"))
	}

	_ = table.Render()

	if projects.Pagination.TotalPages > 1 {
		_, _ = fmt.Fprintf(os.Stdout, "\nShowing page 1 of %d.\n", projects.Pagination.TotalPages)
	}

	return nil
}

func newProjectsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT_GUID",
		Short: "Get project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			project, err := client.Projects().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get project: %w", err)
			}

			if handled, err := renderOutput(project); handled {
				return err
			}

			table := newPropertyTable()

			_ = table.Append("Name", project.Name)
			_ = table.Append("GUID", project.GUID)
			_ = table.Append("Description", valueOrNA(project.Description))
			_ = table.Append("Organization", valueOrNA(project.OrganizationGUID))
			_ = table.Append("Created", project.CreatedAt.Format("2006-01-02 15:04:05"))
			_ = table.Append("Updated", project.UpdatedAt.Format("2006-01-02 15:04:05"))

			_ = table.Render()

			return nil
		},
	}
}

func newProjectsCreateCommand() *cobra.Command {
	var (
		description string
		orgGUID     string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			project, err := client.Projects().Create(context.Background(), &qapi.ProjectCreateRequest{
				Name:             args[0],
				Description:      description,
				OrganizationGUID: orgGUID,
			})
			if err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}

			fmt.Printf("Created project '%s' with GUID %s\n", project.Name, project.GUID)

			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&orgGUID, "org", "", "organization GUID")

	return cmd
}

func newProjectsUpdateCommand() *cobra.Command {
	var (
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update PROJECT_GUID",
		Short: "Update a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			request := &qapi.ProjectUpdateRequest{}
			if name != "" {
				request.Name = &name
			}

			if description != "" {
				request.Description = &description
			}

			project, err := client.Projects().Update(context.Background(), args[0], request)
			if err != nil {
				return fmt.Errorf("failed to update project: %w", err)
			}

			fmt.Printf("Updated project '%s'\n", project.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new project name")
	cmd.Flags().StringVar(&description, "description", "", "new project description")

	return cmd
}

func newProjectsDeleteCommand() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "delete PROJECT_GUID",
		Short: "Delete a project",
		Long:  "Delete a project. Deletion runs as an asynchronous job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			job, err := client.Projects().Delete(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to delete project: %w", err)
			}

			if !wait {
				fmt.Printf("Deletion started, job GUID %s\n", job.GUID)

				return nil
			}

			if _, err := client.Jobs().PollUntilComplete(ctx, job.GUID); err != nil {
				return fmt.Errorf("waiting for deletion: %w", err)
			}

			fmt.Println("Project deleted")

			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the deletion job to complete")

	return cmd
}

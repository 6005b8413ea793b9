package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/querio-io/qapi/pkg/qapi"
	"github.com/spf13/cobra"
)

// NewOrgsCommand creates the organizations command group.
func NewOrgsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orgs",
		Aliases: []string{"organizations", "org"},
		Short:   "Manage organizations",
		Long:    "List, view, and update Querio organizations",
	}

	cmd.AddCommand(newOrgsListCommand())
	cmd.AddCommand(newOrgsGetCommand())
	cmd.AddCommand(newOrgsUpdateCommand())

	return cmd
}

func newOrgsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			orgs, err := client.Organizations().List(context.Background(), qapi.NewQueryParams())
			if err != nil {
				return fmt.Errorf("failed to list organizations: %w", err)
			}

			if handled, err := renderOutput(orgs.Resources); handled {
				return err
			}

			if len(orgs.Resources) == 0 {
				_, _ = os.Stdout.WriteString("No organizations found\n")

				return nil
			}

			table := newListTable("Name", "GUID", "Plan", "Created")

			for _, org := range orgs.Resources {
				_ = table.Append(org.Name, org.GUID, valueOrNA(org.Plan),
					org.CreatedAt.Format("2006-01-02"))
			}

			_ = table.Render()

			return nil
		},
	}
}

func newOrgsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ORG_GUID",
		Short: "Get organization details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			org, err := client.Organizations().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get organization: %w", err)
			}

			if handled, err := renderOutput(org); handled {
				return err
			}

			table := newPropertyTable()

			_ = table.Append("Name", org.Name)
			_ = table.Append("GUID", org.GUID)
			_ = table.Append("Plan", valueOrNA(org.Plan))
			_ = table.Append("Created", org.CreatedAt.Format("2006-01-02 15:04:05"))
			_ = table.Append("Updated", org.UpdatedAt.Format("2006-01-02 15:04:05"))

			_ = table.Render()

			return nil
		},
	}
}

func newOrgsUpdateCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "update ORG_GUID",
		Short: "Update an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			request := &qapi.OrganizationUpdateRequest{}
			if name != "" {
				request.Name = &name
			}

			org, err := client.Organizations().Update(context.Background(), args[0], request)
			if err != nil {
				return fmt.Errorf("failed to update organization: %w", err)
			}

			fmt.Printf("Updated organization '%s'\n", org.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new organization name")

	return cmd
}

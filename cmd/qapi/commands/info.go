package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display API endpoint information",
		Long:  "Display information about the Querio API endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			info, err := client.GetInfo(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get API info: %w", err)
			}

			if handled, err := renderOutput(info); handled {
				return err
			}

			table := newPropertyTable()

			_ = table.Append("Name", info.Name)
			_ = table.Append("Description", info.Description)
			_ = table.Append("Version", fmt.Sprintf("%d", info.Version))

			if len(info.Links) > 0 {
				linkStrings := make([]string, 0, len(info.Links))
				for name, link := range info.Links {
					linkStrings = append(linkStrings, fmt.Sprintf("%s: %s", name, link.Href))
				}

				_ = table.Append("Links", strings.Join(linkStrings, "\n"))
			}

			_ = table.Render()

			return nil
		},
	}
}

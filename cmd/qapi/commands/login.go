package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/querio-io/qapi/internal/constants"
	"github.com/querio-io/qapi/pkg/qapi"
	"github.com/querio-io/qapi/pkg/qclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		apiEndpoint string
		apiKey      string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to Querio",
		Long:  "Store an API endpoint and API key after verifying them against the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get API endpoint
			if apiEndpoint == "" {
				apiEndpoint = viper.GetString("api")
			}

			if apiEndpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("API endpoint: ")
				apiEndpoint, _ = reader.ReadString('\n')
				apiEndpoint = strings.TrimSpace(apiEndpoint)
			}

			if apiEndpoint == "" {
				return ErrAPIEndpointRequired
			}

			// Get API key without echoing it
			if apiKey == "" {
				fmt.Print("API key: ")

				byteKey, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read API key: %w", err)
				}

				apiKey = string(byteKey)

				fmt.Println()
			}

			if apiKey == "" {
				return ErrAPIKeyRequired
			}

			// Create client and verify the credentials work
			client, err := qclient.New(&qapi.Config{
				APIEndpoint: apiEndpoint,
				APIKey:      apiKey,
			})
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), constants.ShortHTTPTimeout)
			defer cancel()

			info, err := client.GetInfo(ctx)
			if err != nil {
				if qapi.IsAuthentication(err) {
					return fmt.Errorf("API key was rejected: %w", err)
				}

				return fmt.Errorf("failed to reach API: %w", err)
			}

			config := loadConfig()
			config.API = apiEndpoint
			config.APIKey = apiKey

			if err := saveConfig(config); err != nil {
				return err
			}

			fmt.Printf("Logged in to %s (%s)\n", apiEndpoint, info.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&apiEndpoint, "api", "", "API endpoint URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from Querio",
		Long:  "Remove the stored API key for the configured endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.APIKey == "" {
				fmt.Println("Not logged in")

				return nil
			}

			config.APIKey = ""

			if err := saveConfig(config); err != nil {
				return err
			}

			fmt.Println("Logged out")

			return nil
		},
	}
}

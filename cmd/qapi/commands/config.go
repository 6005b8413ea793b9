package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const maskedValue = "***"

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "View and modify qapi CLI configuration settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			masked := *config
			if masked.APIKey != "" {
				masked.APIKey = maskedValue
			}

			if handled, err := renderOutput(masked); handled {
				return err
			}

			table := newPropertyTable()

			_ = table.Append("API", valueOrNA(config.API))
			_ = table.Append("API Key", maskIfSet(config.APIKey))
			_ = table.Append("Output", valueOrNA(config.Output))
			_ = table.Append("Config File", configFilePath())

			_ = table.Render()

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Supported keys: api, api_key, output",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.ToLower(args[0]), args[1]

			config := loadConfig()

			switch key {
			case "api":
				config.API = value
			case "api_key":
				config.APIKey = value
			case "output":
				config.Output = value
			default:
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if err := saveConfig(config); err != nil {
				return err
			}

			display := value
			if key == "api_key" {
				display = maskedValue
			}

			fmt.Printf("Set %s to %s\n", key, display)

			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove all stored configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile := viper.ConfigFileUsed()
			if configFile == "" {
				configFile = configFilePath()
			}

			err := os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			fmt.Println("Cleared all configuration")

			return nil
		},
	}
}

func maskIfSet(value string) string {
	if value == "" {
		return NotAvailable
	}

	return maskedValue
}

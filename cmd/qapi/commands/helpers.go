package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/querio-io/qapi/internal/constants"
	"github.com/querio-io/qapi/pkg/qapi"
	"github.com/querio-io/qapi/pkg/qclient"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// JSON formatting.
	defaultJSONIndent = "  "
)

// Common static errors used throughout the commands package.
var (
	ErrAPIEndpointRequired    = errors.New("API endpoint is required, use 'qapi login' or --api")
	ErrAPIKeyRequired         = errors.New("API key is required, use 'qapi login' or --api-key")
	ErrProjectRequired        = errors.New("project is required (use --project)")
	ErrQuestionRequired       = errors.New("question is required")
	ErrMessageRequired        = errors.New("message is required")
	ErrJobCompletedWithErrors = errors.New("job completed with errors")
)

// Config is the persisted CLI configuration.
type Config struct {
	API    string `yaml:"api,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`
	Output string `yaml:"output,omitempty"`
}

func configFilePath() string {
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		return cfgFile
	}

	home, _ := os.UserHomeDir()

	return filepath.Join(home, ".qapi", "config.yml")
}

func loadConfig() *Config {
	return &Config{
		API:    viper.GetString("api"),
		APIKey: viper.GetString("api_key"),
		Output: viper.GetString("output"),
	}
}

func saveConfig(config *Config) error {
	path := configFilePath()

	if err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateClient builds a qapi.Client from the effective configuration. An
// apiFlag value overrides the configured endpoint.
func CreateClient(apiFlag string) (qapi.Client, error) {
	endpoint := apiFlag
	if endpoint == "" {
		endpoint = viper.GetString("api")
	}

	if endpoint == "" {
		return nil, ErrAPIEndpointRequired
	}

	apiKey := viper.GetString("api_key")
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	return qclient.New(&qapi.Config{
		APIEndpoint: endpoint,
		APIKey:      apiKey,
		Debug:       viper.GetBool("verbose"),
	})
}

// renderOutput writes v as JSON or YAML when the --output flag asks for it
// and reports whether it handled the rendering. Table output stays with the
// caller.
func renderOutput(v interface{}) (bool, error) {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", defaultJSONIndent)

		return true, encoder.Encode(v)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		return true, encoder.Encode(v)
	default:
		return false, nil
	}
}

func newPropertyTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	return table
}

func newListTable(headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header(toAnySlice(headers)...)

	return table
}

func toAnySlice(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}

func formatJobErrors(errs []qapi.APIError) string {
	messages := make([]string, 0, len(errs))
	for i := range errs {
		messages = append(messages, fmt.Sprintf("%s: %s", errs[i].Code, errs[i].Message))
	}

	return strings.Join(messages, "\n")
}

func formatWarnings(warnings []qapi.Warning) string {
	details := make([]string, 0, len(warnings))
	for _, warning := range warnings {
		details = append(details, warning.Detail)
	}

	return strings.Join(details, "\n")
}

func valueOrNA(s string) string {
	if s == "" {
		return NotAvailable
	}

	return s
}

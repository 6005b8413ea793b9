// Package qclient provides the main entry point for creating Querio API clients
package qclient

import (
	"strings"

	"github.com/querio-io/qapi/internal/client"
	"github.com/querio-io/qapi/pkg/qapi"
)

// New creates a new Querio API client from config.
func New(config *qapi.Config) (qapi.Client, error) {
	if config == nil {
		return nil, qapi.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, qapi.ErrAPIEndpointRequired
	}

	if config.APIKey == "" {
		return nil, qapi.ErrAPIKeyRequired
	}

	// Normalize the endpoint into a copy; the caller's config is never
	// mutated.
	apiEndpoint := strings.TrimSuffix(config.APIEndpoint, "/")
	if !strings.HasPrefix(apiEndpoint, "http://") && !strings.HasPrefix(apiEndpoint, "https://") {
		apiEndpoint = "https://" + apiEndpoint
	}

	normalized := *config
	normalized.APIEndpoint = apiEndpoint

	return client.New(&normalized)
}

// NewWithAPIKey creates a new client with an API endpoint and API key.
func NewWithAPIKey(endpoint, apiKey string) (qapi.Client, error) {
	return New(&qapi.Config{
		APIEndpoint: endpoint,
		APIKey:      apiKey,
	})
}

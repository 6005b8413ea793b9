package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// StreamHTTPTimeout bounds the dial/response phase for streaming calls;
	// reading the stream itself is governed by the caller's context.
	StreamHTTPTimeout = 60 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Transport retry limits (transient failures only).
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Polling defaults.
const (
	// DefaultPollTimeout bounds a whole polling loop.
	DefaultPollTimeout = 5 * time.Minute

	// DefaultPollInterval is the initial wait between polling attempts.
	DefaultPollInterval = 1 * time.Second

	// DefaultMaxPollInterval caps the grown polling interval.
	DefaultMaxPollInterval = 30 * time.Second

	// DefaultBackoffMultiplier grows the polling interval between attempts.
	DefaultBackoffMultiplier = 1.5
)

// Cache defaults.
const (
	// DefaultCacheSize is the default cache entry limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit bounds concurrent batch operations.
	DefaultConcurrencyLimit = 3
)

// Pagination limits.
const (
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 50
)

// Job states reported by the API.
const (
	// JobStateProcessing indicates a job still in flight.
	JobStateProcessing = "PROCESSING"

	// JobStateComplete indicates a successfully finished job.
	JobStateComplete = "COMPLETE"

	// JobStateFailed indicates a failed job state.
	JobStateFailed = "FAILED"
)

// Output format constants.
const (
	// FormatTable for tabular output.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

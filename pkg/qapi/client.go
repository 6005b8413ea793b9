package qapi

import (
	"context"
	"io"
	"time"
)

// ProjectsClient manages projects.
type ProjectsClient interface {
	Create(ctx context.Context, request *ProjectCreateRequest) (*Project, error)
	Get(ctx context.Context, guid string) (*Project, error)
	List(ctx context.Context, params *QueryParams) (*ListResponse[Project], error)
	Update(ctx context.Context, guid string, request *ProjectUpdateRequest) (*Project, error)
	Delete(ctx context.Context, guid string) (*Job, error)
}

// DatasourcesClient manages data sources within projects.
type DatasourcesClient interface {
	Create(ctx context.Context, request *DatasourceCreateRequest) (*Datasource, error)
	Get(ctx context.Context, guid string) (*Datasource, error)
	List(ctx context.Context, params *QueryParams) (*ListResponse[Datasource], error)
	Delete(ctx context.Context, guid string) (*Job, error)

	// Upload pushes a file-backed datasource (e.g. CSV) as a multipart
	// request and returns the created datasource, whose ingestion continues
	// asynchronously via a job.
	Upload(ctx context.Context, projectGUID, name, filename string, file io.Reader) (*Datasource, error)
}

// QueryProgramsClient manages generated query programs.
type QueryProgramsClient interface {
	Get(ctx context.Context, guid string) (*QueryProgram, error)
	List(ctx context.Context, params *QueryParams) (*ListResponse[QueryProgram], error)
	Delete(ctx context.Context, guid string) (*Job, error)
	Publish(ctx context.Context, guid string) (*QueryProgram, error)

	// Generate streams the model's progress while it builds a program from a
	// natural-language question. Consume the result with
	// ProcessStreamOrResult, or pass callbacks to observe live events.
	Generate(ctx context.Context, request *QueryProgramGenerateRequest) (StreamOrResult[QueryProgram], error)

	// Execute runs a program to completion and buffers the tabular result.
	Execute(ctx context.Context, guid string, request *QueryProgramExecuteRequest) (*QueryResult, error)

	// ExecuteStream runs a program with row batches streamed as events.
	ExecuteStream(ctx context.Context, guid string, request *QueryProgramExecuteRequest) (StreamOrResult[QueryResult], error)
}

// ChatClient manages conversations and messages.
type ChatClient interface {
	CreateConversation(ctx context.Context, request *ConversationCreateRequest) (*Conversation, error)
	ListConversations(ctx context.Context, params *QueryParams) (*ListResponse[Conversation], error)

	// Send posts a message and buffers the full completion.
	Send(ctx context.Context, request *ChatRequest) (*ChatCompletion, error)

	// Stream posts a message and returns the completion as a live event
	// stream.
	Stream(ctx context.Context, request *ChatRequest) (StreamOrResult[ChatCompletion], error)
}

// JobsClient tracks asynchronous operations.
type JobsClient interface {
	Get(ctx context.Context, guid string) (*Job, error)

	// PollUntilComplete polls the job on the backoff schedule until it
	// reaches a terminal state or the polling options give up.
	PollUntilComplete(ctx context.Context, guid string) (*Job, error)
}

// OrganizationsClient manages organizations.
type OrganizationsClient interface {
	Get(ctx context.Context, guid string) (*Organization, error)
	List(ctx context.Context, params *QueryParams) (*ListResponse[Organization], error)
	Update(ctx context.Context, guid string, request *OrganizationUpdateRequest) (*Organization, error)
}

// Client is the full resource surface of the Querio API.
type Client interface {
	Projects() ProjectsClient
	Datasources() DatasourcesClient
	QueryPrograms() QueryProgramsClient
	Chat() ChatClient
	Jobs() JobsClient
	Organizations() OrganizationsClient

	GetInfo(ctx context.Context) (*Info, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a qapi.Client. The
// configuration is snapshotted at construction; to change it, build a new
// client rather than mutating shared state.
type Config struct {
	// APIEndpoint: base URL for the Querio API (e.g. "https://api.querio.io").
	// qclient.New normalizes this value by trimming a trailing slash and
	// adding "https://" if no scheme is present.
	APIEndpoint string

	// APIKey is attached to every request as "<AuthScheme> <APIKey>".
	APIKey string

	// AuthScheme overrides the Authorization scheme. Defaults to "Bearer".
	AuthScheme string

	// HTTPTimeout: optional default HTTP timeout where supported. Most
	// client calls should rely on context timeouts.
	HTTPTimeout time.Duration

	// RetryMax: maximum number of transport retries for transient failures
	// (>=500, 429, and connection errors). If 0, a sensible default is used.
	RetryMax int

	// RetryWaitMin: minimum backoff between transport retries.
	RetryWaitMin time.Duration

	// RetryWaitMax: maximum backoff between transport retries.
	RetryWaitMax time.Duration

	// RateLimit caps outgoing requests per second. Zero disables client-side
	// rate limiting.
	RateLimit float64

	// Debug enables verbose HTTP request/response logging when a Logger is
	// provided.
	Debug bool

	// Logger: optional structured logger used by the HTTP layer and helpers.
	Logger Logger

	// UserAgent overrides the default User-Agent header sent by the client.
	UserAgent string

	// Cache configures the optional GET-response cache. Nil disables caching.
	Cache *CacheConfig

	// Polling overrides the default job polling schedule.
	Polling *PollingDefaults
}

// PollingDefaults tunes JobsClient.PollUntilComplete.
type PollingDefaults struct {
	Timeout           time.Duration
	InitialInterval   time.Duration
	MaxInterval       time.Duration
	BackoffMultiplier float64
}

package qapi

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Resource represents the base structure for all Querio API resources.
type Resource struct {
	GUID      string    `json:"guid"       yaml:"guid"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
	Links     Links     `json:"links"      yaml:"links"`
}

// Links represents resource links.
type Links map[string]Link

// Link represents a single link.
type Link struct {
	Href   string `json:"href"             yaml:"href"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
}

// Metadata represents labels and annotations.
type Metadata struct {
	Labels      map[string]string `json:"labels,omitempty"      yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Pagination represents pagination information.
type Pagination struct {
	TotalResults int   `json:"total_results"      yaml:"total_results"`
	TotalPages   int   `json:"total_pages"        yaml:"total_pages"`
	First        Link  `json:"first"              yaml:"first"`
	Last         Link  `json:"last"               yaml:"last"`
	Next         *Link `json:"next,omitempty"     yaml:"next,omitempty"`
	Previous     *Link `json:"previous,omitempty" yaml:"previous,omitempty"`
}

// ListResponse represents a paginated list response.
type ListResponse[T any] struct {
	Pagination Pagination `json:"pagination" yaml:"pagination"`
	Resources  []T        `json:"resources"  yaml:"resources"`
}

// QueryParams expresses common list options.
type QueryParams struct {
	Page          int
	PerPage       int
	OrderBy       string
	LabelSelector string
	Filters       map[string][]string
}

// NewQueryParams creates an empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{Filters: make(map[string][]string)}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithOrderBy sets the sort order.
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithFilter appends a filter value.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}

// ToValues converts the params to url.Values. Multi-valued filters are
// comma-joined the way the API expects.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}

	if q.OrderBy != "" {
		values.Set("order_by", q.OrderBy)
	}

	if q.LabelSelector != "" {
		values.Set("label_selector", q.LabelSelector)
	}

	for key, vals := range q.Filters {
		if len(vals) > 0 {
			values.Set(key, strings.Join(vals, ","))
		}
	}

	return values
}

// Project represents a Querio project.
type Project struct {
	Resource

	Name             string    `json:"name"                        yaml:"name"`
	Description      string    `json:"description,omitempty"       yaml:"description,omitempty"`
	OrganizationGUID string    `json:"organization_guid,omitempty" yaml:"organization_guid,omitempty"`
	Metadata         *Metadata `json:"metadata,omitempty"          yaml:"metadata,omitempty"`
}

// ProjectCreateRequest is the payload for creating a project.
type ProjectCreateRequest struct {
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	OrganizationGUID string    `json:"organization_guid,omitempty"`
	Metadata         *Metadata `json:"metadata,omitempty"`
}

// ProjectUpdateRequest is the payload for updating a project.
type ProjectUpdateRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Metadata    *Metadata `json:"metadata,omitempty"`
}

// Datasource states reported by the API.
const (
	DatasourceStatePending = "PENDING"
	DatasourceStateSyncing = "SYNCING"
	DatasourceStateReady   = "READY"
	DatasourceStateFailed  = "FAILED"
)

// Datasource represents a connected data source within a project.
type Datasource struct {
	Resource

	Name        string    `json:"name"                  yaml:"name"`
	Type        string    `json:"type"                  yaml:"type"`
	ProjectGUID string    `json:"project_guid"          yaml:"project_guid"`
	State       string    `json:"state"                 yaml:"state"`
	TableCount  int       `json:"table_count,omitempty" yaml:"table_count,omitempty"`
	Metadata    *Metadata `json:"metadata,omitempty"    yaml:"metadata,omitempty"`
}

// DatasourceCreateRequest is the payload for connecting a datasource.
type DatasourceCreateRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	ProjectGUID   string `json:"project_guid"`
	ConnectionURI string `json:"connection_uri,omitempty"`
}

// QueryProgram represents a generated, executable query program.
type QueryProgram struct {
	Resource

	ProjectGUID string `json:"project_guid"        yaml:"project_guid"`
	Question    string `json:"question"            yaml:"question"`
	Program     string `json:"program,omitempty"   yaml:"program,omitempty"`
	Published   bool   `json:"published"           yaml:"published"`
	Reasoning   string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

// QueryProgramGenerateRequest asks the platform to generate a query program
// from a natural-language question.
type QueryProgramGenerateRequest struct {
	ProjectGUID string `json:"project_guid"`
	Question    string `json:"question"`
}

// QueryProgramExecuteRequest supplies runtime parameters for execution.
type QueryProgramExecuteRequest struct {
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// QueryResult is the tabular outcome of executing a query program.
type QueryResult struct {
	Columns  []string        `json:"columns"  yaml:"columns"`
	Rows     [][]interface{} `json:"rows"     yaml:"rows"`
	RowCount int             `json:"row_count" yaml:"row_count"`
}

// Conversation represents a chat conversation scoped to a project.
type Conversation struct {
	Resource

	ProjectGUID string `json:"project_guid"    yaml:"project_guid"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
}

// ConversationCreateRequest is the payload for starting a conversation.
type ConversationCreateRequest struct {
	ProjectGUID string `json:"project_guid"`
	Title       string `json:"title,omitempty"`
}

// ChatRequest sends one user message to a conversation.
type ChatRequest struct {
	ConversationGUID string `json:"conversation_guid,omitempty"`
	ProjectGUID      string `json:"project_guid,omitempty"`
	Message          string `json:"message"`
}

// ChatCompletion is the assistant's reply to a chat message.
type ChatCompletion struct {
	Resource

	ConversationGUID string `json:"conversation_guid" yaml:"conversation_guid"`
	Role             string `json:"role"              yaml:"role"`
	Content          string `json:"content"           yaml:"content"`
}

// Job represents an asynchronous operation.
type Job struct {
	Resource

	Operation string                 `json:"operation"          yaml:"operation"`
	State     string                 `json:"state"              yaml:"state"`
	Errors    []APIError             `json:"errors,omitempty"   yaml:"errors,omitempty"`
	Warnings  []Warning              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Result    map[string]interface{} `json:"result,omitempty"   yaml:"result,omitempty"`
}

// Warning represents a warning in API responses.
type Warning struct {
	Detail string `json:"detail" yaml:"detail"`
}

// Organization represents an organization owning projects.
type Organization struct {
	Resource

	Name string `json:"name"           yaml:"name"`
	Plan string `json:"plan,omitempty" yaml:"plan,omitempty"`
}

// OrganizationUpdateRequest is the payload for updating an organization.
type OrganizationUpdateRequest struct {
	Name *string `json:"name,omitempty"`
}

// Info represents the API info endpoint response.
type Info struct {
	Name        string `json:"name"        yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Version     int    `json:"version"     yaml:"version"`
	Links       Links  `json:"links"       yaml:"links"`
}

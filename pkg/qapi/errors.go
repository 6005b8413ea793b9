package qapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind is the machine-readable classification of an APIError.
type ErrorKind string

// The closed set of error kinds produced by the client.
const (
	KindValidation         ErrorKind = "validation"
	KindAuthentication     ErrorKind = "authentication"
	KindPermission         ErrorKind = "permission"
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindRateLimit          ErrorKind = "rate_limit"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindServer             ErrorKind = "server"
	KindNetwork            ErrorKind = "network"
	KindAPI                ErrorKind = "api"
)

// Default machine codes used when the API response carries none.
const (
	CodeValidationError     = "validation_error"
	CodeAuthenticationError = "authentication_error"
	CodePermissionDenied    = "permission_denied"
	CodeNotFound            = "not_found"
	CodeConflict            = "conflict"
	CodeRateLimitExceeded   = "rate_limit_exceeded"
	CodeServiceUnavailable  = "service_unavailable"
	CodeServerError         = "server_error"
	CodeNetworkError        = "network_error"
	CodeUnknownError        = "unknown_error"
)

// APIError represents an error returned by the Querio API. Status is the
// originating HTTP status, or 0 for transport-level failures with no HTTP
// response. An APIError is immutable once constructed.
type APIError struct {
	Kind      ErrorKind              `json:"kind"                 yaml:"kind"`
	Status    int                    `json:"status"               yaml:"status"`
	Code      string                 `json:"code"                 yaml:"code"`
	Message   string                 `json:"message"              yaml:"message"`
	RequestID string                 `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"    yaml:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (status=%d, code=%s, request_id=%s)",
			e.Kind, e.Message, e.Status, e.Code, e.RequestID)
	}

	return fmt.Sprintf("%s: %s (status=%d, code=%s)", e.Kind, e.Message, e.Status, e.Code)
}

// Fields returns the error as a plain map for structured logging.
func (e *APIError) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"kind":    string(e.Kind),
		"status":  e.Status,
		"code":    e.Code,
		"message": e.Message,
	}

	if e.RequestID != "" {
		fields["request_id"] = e.RequestID
	}

	if e.Details != nil {
		fields["details"] = e.Details
	}

	return fields
}

// ClassifyStatus builds an APIError of the kind mapped from an HTTP status
// code. A zero status means no HTTP response was obtained (network failure).
// If code is empty, the kind's default code is used; an unmapped status
// defaults to "unknown_error".
func ClassifyStatus(status int, code, message, requestID string, details map[string]interface{}) *APIError {
	kind, defaultCode := kindForStatus(status)

	if code == "" {
		code = defaultCode
	}

	if message == "" && status > 0 {
		message = http.StatusText(status)
	}

	return &APIError{
		Kind:      kind,
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Details:   details,
	}
}

func kindForStatus(status int) (ErrorKind, string) {
	switch {
	case status == http.StatusBadRequest:
		return KindValidation, CodeValidationError
	case status == http.StatusUnauthorized:
		return KindAuthentication, CodeAuthenticationError
	case status == http.StatusForbidden:
		return KindPermission, CodePermissionDenied
	case status == http.StatusNotFound:
		return KindNotFound, CodeNotFound
	case status == http.StatusConflict:
		return KindConflict, CodeConflict
	case status == http.StatusTooManyRequests:
		return KindRateLimit, CodeRateLimitExceeded
	case status == http.StatusServiceUnavailable:
		return KindServiceUnavailable, CodeServiceUnavailable
	case status >= 500:
		return KindServer, CodeServerError
	case status == 0:
		return KindNetwork, CodeNetworkError
	default:
		return KindAPI, CodeUnknownError
	}
}

// NetworkError wraps a transport-level failure (no HTTP response) as an
// APIError with Status 0.
func NetworkError(err error) *APIError {
	return &APIError{
		Kind:    KindNetwork,
		Status:  0,
		Code:    CodeNetworkError,
		Message: err.Error(),
	}
}

// ValidationIssue is one field-level problem in a validation error body.
type ValidationIssue struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// validationBody is the structured validation envelope the API returns for
// 400/422 responses: {"detail": [{"loc": ["body","name"], "msg": ..., "type": ...}]}.
type validationBody struct {
	Detail []ValidationIssue `json:"detail"`
}

// genericBody covers plain error bodies of the form {"message": ...} or
// {"detail": "..."} with an optional machine code.
type genericBody struct {
	Message string                 `json:"message"`
	Detail  string                 `json:"detail"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details"`
}

// ParseErrorBody constructs an APIError from a failed HTTP response body.
// JSON bodies are interpreted as a validation envelope or a generic error
// object; anything else is wrapped as plain text.
func ParseErrorBody(status int, body []byte, contentType, requestID string) *APIError {
	text := strings.TrimSpace(string(body))

	if !strings.Contains(contentType, "json") || len(text) == 0 {
		return ClassifyStatus(status, "", text, requestID, nil)
	}

	var vb validationBody
	if err := json.Unmarshal(body, &vb); err == nil && len(vb.Detail) > 0 {
		return ClassifyStatus(status, "", joinValidationIssues(vb.Detail), requestID, nil)
	}

	var gb genericBody
	if err := json.Unmarshal(body, &gb); err == nil {
		message := gb.Message
		if message == "" {
			message = gb.Detail
		}

		if message != "" || gb.Code != "" {
			return ClassifyStatus(status, gb.Code, message, requestID, gb.Details)
		}
	}

	return ClassifyStatus(status, "", text, requestID, nil)
}

// joinValidationIssues aggregates every field-level issue into one multi-line
// message, e.g. "body.name: field required".
func joinValidationIssues(issues []ValidationIssue) string {
	lines := make([]string, 0, len(issues))

	for _, issue := range issues {
		parts := make([]string, 0, len(issue.Loc))
		for _, loc := range issue.Loc {
			parts = append(parts, fmt.Sprint(loc))
		}

		if len(parts) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", strings.Join(parts, "."), issue.Msg))
		} else {
			lines = append(lines, issue.Msg)
		}
	}

	return strings.Join(lines, "\n")
}

// IsNotFound checks if the error is a not-found API error.
func IsNotFound(err error) bool {
	return isKind(err, KindNotFound)
}

// IsAuthentication checks if the error is an authentication failure.
func IsAuthentication(err error) bool {
	return isKind(err, KindAuthentication)
}

// IsPermission checks if the error is a permission failure.
func IsPermission(err error) bool {
	return isKind(err, KindPermission)
}

// IsValidation checks if the error is a validation failure.
func IsValidation(err error) bool {
	return isKind(err, KindValidation)
}

// IsRateLimit checks if the error is a rate-limit rejection.
func IsRateLimit(err error) bool {
	return isKind(err, KindRateLimit)
}

// IsNetwork checks if the error is a transport-level failure.
func IsNetwork(err error) bool {
	return isKind(err, KindNetwork)
}

func isKind(err error, kind ErrorKind) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}

	return false
}

// Static errors for precondition violations. These are programmer errors and
// are returned directly rather than through the APIError taxonomy.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrAPIKeyRequired      = errors.New("API key is required")
	ErrNilOperation        = errors.New("polling operation is required")
	ErrNilStream           = errors.New("stream is required")
	ErrGUIDRequired        = errors.New("resource guid is required")
	ErrRequestRequired     = errors.New("request body is required")
)

// Package pnerrs provides the error taxonomy shared by every pubnub-mcp
// component: validation, configuration, upstream API, network and
// guard-rail errors, plus the single normalization point used by tool
// handlers before results are returned to an MCP client.
package pnerrs

// ErrorCategory represents the broad class of an error.
type ErrorCategory string

const (
	// CategoryValidation represents local schema rejections.
	CategoryValidation ErrorCategory = "validation"
	// CategoryConfiguration represents missing or inconsistent environment.
	CategoryConfiguration ErrorCategory = "configuration"
	// CategoryUpstream represents non-2xx responses from admin or docs services.
	CategoryUpstream ErrorCategory = "upstream"
	// CategoryNetwork represents connection level failures.
	CategoryNetwork ErrorCategory = "network"
	// CategoryGuard represents local guard-rail refusals.
	CategoryGuard ErrorCategory = "guard"
)

// ErrorCode represents specific error codes within each category.
type ErrorCode string

// Validation error codes.
const (
	ErrCodeMissingField       ErrorCode = "missing_field"
	ErrCodeInvalidType        ErrorCode = "invalid_type"
	ErrCodeRangeViolation     ErrorCode = "range_violation"
	ErrCodeInvalidFormat      ErrorCode = "invalid_format"
	ErrCodeUnsupportedFeature ErrorCode = "unsupported_feature"
	ErrCodeSchemaViolation    ErrorCode = "schema_violation"
)

// Configuration error codes.
const (
	ErrCodeMissingPubSubKeys   ErrorCode = "missing_pubsub_keys"
	ErrCodeMissingAdminCreds   ErrorCode = "missing_admin_credentials"
	ErrCodeInvalidConfigOption ErrorCode = "invalid_config_option"
)

// Upstream error codes.
const (
	ErrCodeUpstreamUnauthorized ErrorCode = "upstream_unauthorized"
	ErrCodeUpstreamForbidden    ErrorCode = "upstream_forbidden"
	ErrCodeUpstreamNotFound     ErrorCode = "upstream_not_found"
	ErrCodeUpstreamBadRequest   ErrorCode = "upstream_bad_request"
	ErrCodeUpstreamServerError  ErrorCode = "upstream_server_error"
	ErrCodeUpstreamRateLimit    ErrorCode = "upstream_rate_limit"
	ErrCodeUpstreamDecode       ErrorCode = "upstream_decode"
)

// Network error codes.
const (
	ErrCodeNetworkTimeout   ErrorCode = "network_timeout"
	ErrCodeConnectionFailed ErrorCode = "connection_failed"
)

// Guard error codes.
const (
	ErrCodeKeysetMismatch ErrorCode = "keyset_mismatch"
	ErrCodeKeysetUnknown  ErrorCode = "keyset_unknown"
)

// PNError represents the base interface for all pubnub-mcp errors.
type PNError interface {
	error
	// Name returns the error name surfaced in tool results.
	Name() string
	// Message returns the human readable message.
	Message() string
	// Code returns the error code.
	Code() ErrorCode
	// Category returns the error category.
	Category() ErrorCategory
	// Unwrap returns the underlying error.
	Unwrap() error
	// Metadata returns additional error metadata.
	Metadata() map[string]any
}

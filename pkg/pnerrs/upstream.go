package pnerrs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// UpstreamError represents a non-2xx response from the admin or
// documentation services. Body holds the parsed JSON response so
// ParseError can surface vendor specific fields.
type UpstreamError struct {
	*BaseError
	status int
	body   any
}

// NewUpstreamError creates an upstream error for the given HTTP status.
// raw is decoded as JSON when possible and kept verbatim otherwise.
func NewUpstreamError(service string, status int, raw []byte) *UpstreamError {
	var body any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			body = string(raw)
		}
	}

	err := &UpstreamError{
		BaseError: NewBaseError(
			CategoryUpstream,
			codeForStatus(status),
			fmt.Sprintf("%s responded with HTTP %d", service, status),
			nil,
		),
		status: status,
		body:   body,
	}
	_ = err.WithMetadata("service", service)
	_ = err.WithMetadata("status", status)

	return err
}

// NewResponseError builds the error for a non-2xx resp whose body has
// already been read. A Retry-After header on 429 responses is recorded.
func NewResponseError(service string, resp *http.Response, body []byte) *UpstreamError {
	err := NewUpstreamError(service, resp.StatusCode, body)
	if resp.StatusCode == http.StatusTooManyRequests {
		if d, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			err.WithRetryAfter(d)
		}
	}

	return err
}

// NewDecodeError reports a 2xx response whose body could not be decoded.
func NewDecodeError(service string, status int, cause error) *UpstreamError {
	err := &UpstreamError{
		BaseError: NewBaseError(
			CategoryUpstream,
			ErrCodeUpstreamDecode,
			"decode "+service+" response",
			cause,
		),
		status: status,
	}
	_ = err.WithMetadata("service", service)
	_ = err.WithMetadata("status", status)

	return err
}

// Name returns the error name.
func (*UpstreamError) Name() string {
	return "UpstreamError"
}

// Message includes the upstream body so callers see what the service said.
func (e *UpstreamError) Message() string {
	if e.body == nil {
		return e.BaseError.Message()
	}

	if s, ok := e.body.(string); ok {
		return e.message + ": " + s
	}

	data, err := json.Marshal(e.body)
	if err != nil {
		return e.message
	}

	return e.message + ": " + string(data)
}

// Status returns the HTTP status code.
func (e *UpstreamError) Status() int {
	return e.status
}

// Body returns the parsed response body.
func (e *UpstreamError) Body() any {
	return e.body
}

// IsAuthFailure reports whether the upstream rejected the credentials.
func (e *UpstreamError) IsAuthFailure() bool {
	return e.status == http.StatusUnauthorized || e.status == http.StatusForbidden
}

// WithRetryAfter adds retry after metadata to the error.
func (e *UpstreamError) WithRetryAfter(retryAfter time.Duration) *UpstreamError {
	_ = e.WithMetadata("retry_after", retryAfter.Seconds())

	return e
}

// RetryAfter returns the delay the upstream asked for, if any.
func (e *UpstreamError) RetryAfter() (time.Duration, bool) {
	secs, ok := e.metadata["retry_after"].(float64)
	if !ok {
		return 0, false
	}

	return time.Duration(secs * float64(time.Second)), true
}

// parseRetryAfter reads delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}

		return 0, true
	}

	return 0, false
}

func codeForStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return ErrCodeUpstreamUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeUpstreamForbidden
	case status == http.StatusNotFound:
		return ErrCodeUpstreamNotFound
	case status == http.StatusTooManyRequests:
		return ErrCodeUpstreamRateLimit
	case status >= http.StatusInternalServerError:
		return ErrCodeUpstreamServerError
	default:
		return ErrCodeUpstreamBadRequest
	}
}

package pnerrs

import (
	"context"
	"errors"
	"net"
)

// NetworkError represents connection level failures.
type NetworkError struct {
	*BaseError
}

// NewNetworkError creates a new network error.
func NewNetworkError(
	code ErrorCode,
	message string,
	cause error,
) *NetworkError {
	return &NetworkError{
		BaseError: NewBaseError(CategoryNetwork, code, message, cause),
	}
}

// Name returns the error name.
func (*NetworkError) Name() string {
	return "NetworkError"
}

// WithHost adds host metadata to the error.
func (e *NetworkError) WithHost(host string) *NetworkError {
	_ = e.WithMetadata("host", host)

	return e
}

// NewRequestError classifies a failed HTTP round-trip: deadlines and
// transport timeouts get ErrCodeNetworkTimeout, everything else
// ErrCodeConnectionFailed.
func NewRequestError(message, host string, cause error) *NetworkError {
	code := ErrCodeConnectionFailed
	var ne net.Error
	if errors.Is(cause, context.DeadlineExceeded) || (errors.As(cause, &ne) && ne.Timeout()) {
		code = ErrCodeNetworkTimeout
	}

	return NewNetworkError(code, message, cause).WithHost(host)
}

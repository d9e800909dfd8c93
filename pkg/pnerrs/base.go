package pnerrs

import (
	"log/slog"
	"maps"
	"slices"
)

// BaseError carries the fields shared by every typed error. Typed errors
// embed it and override Name.
type BaseError struct {
	category ErrorCategory
	code     ErrorCode
	message  string
	cause    error
	metadata map[string]any
}

// NewBaseError creates a base error; cause may be nil.
func NewBaseError(
	category ErrorCategory,
	code ErrorCode,
	message string,
	cause error,
) *BaseError {
	return &BaseError{
		category: category,
		code:     code,
		message:  message,
		cause:    cause,
	}
}

// Error prefixes Message with the category.
func (e *BaseError) Error() string {
	return string(e.category) + ": " + e.Message()
}

// Name returns the error name reported to MCP clients.
func (*BaseError) Name() string {
	return "Error"
}

// Message returns the message and cause without the category prefix.
func (e *BaseError) Message() string {
	if e.cause == nil {
		return e.message
	}

	return e.message + ": " + e.cause.Error()
}

// Code returns the error code.
func (e *BaseError) Code() ErrorCode { return e.code }

// Category returns the error category.
func (e *BaseError) Category() ErrorCategory { return e.category }

// Unwrap returns the cause.
func (e *BaseError) Unwrap() error { return e.cause }

// Metadata returns a copy of the attached metadata.
func (e *BaseError) Metadata() map[string]any {
	return maps.Clone(e.metadata)
}

// WithMetadata attaches key to the error.
func (e *BaseError) WithMetadata(key string, value any) *BaseError {
	if e.metadata == nil {
		e.metadata = make(map[string]any)
	}
	e.metadata[key] = value

	return e
}

// LogValue renders the error as a structured slog group.
func (e *BaseError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("category", string(e.category)),
		slog.String("code", string(e.code)),
		slog.String("message", e.Message()),
	}
	for _, k := range slices.Sorted(maps.Keys(e.metadata)) {
		attrs = append(attrs, slog.Any(k, e.metadata[k]))
	}

	return slog.GroupValue(attrs...)
}

package pnerrs

import (
	"strings"
)

// Issue is a single validation failure anchored at a field path.
type Issue struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// PathString renders the path in dotted form, e.g. config.files.region.
func (i Issue) PathString() string {
	return strings.Join(i.Path, ".")
}

// String renders the issue as "path: message".
func (i Issue) String() string {
	if len(i.Path) == 0 {
		return i.Message
	}

	return i.PathString() + ": " + i.Message
}

// ValidationError represents a local rejection of tool arguments.
type ValidationError struct {
	*BaseError
	issues []Issue
}

// NewValidationError creates a validation error from one or more issues.
func NewValidationError(code ErrorCode, issues ...Issue) *ValidationError {
	parts := make([]string, 0, len(issues))
	for _, is := range issues {
		parts = append(parts, is.String())
	}

	err := &ValidationError{
		BaseError: NewBaseError(
			CategoryValidation,
			code,
			"Invalid arguments: "+strings.Join(parts, "; "),
			nil,
		),
		issues: issues,
	}
	if len(issues) > 0 {
		_ = err.WithMetadata("path", issues[0].PathString())
	}

	return err
}

// Name returns the error name.
func (*ValidationError) Name() string {
	return "ValidationError"
}

// Issues returns every issue carried by the error.
func (e *ValidationError) Issues() []Issue {
	return e.issues
}

// Field returns the dotted path of the first issue.
func (e *ValidationError) Field() string {
	if len(e.issues) == 0 {
		return ""
	}

	return e.issues[0].PathString()
}

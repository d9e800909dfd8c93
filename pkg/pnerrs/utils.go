package pnerrs

import "errors"

// AsPNError extracts a PNError from the error chain.
func AsPNError(err error) (PNError, bool) {
	var pnErr PNError
	if errors.As(err, &pnErr) {
		return pnErr, true
	}

	return nil, false
}

func isCategory(err error, category ErrorCategory) bool {
	if pnErr, ok := AsPNError(err); ok {
		return pnErr.Category() == category
	}

	return false
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	return isCategory(err, CategoryValidation)
}

// IsConfigurationError checks if the error is a configuration error.
func IsConfigurationError(err error) bool {
	return isCategory(err, CategoryConfiguration)
}

// IsUpstreamError checks if the error is an upstream API error.
func IsUpstreamError(err error) bool {
	return isCategory(err, CategoryUpstream)
}

// IsNetworkError checks if the error is a network error.
func IsNetworkError(err error) bool {
	return isCategory(err, CategoryNetwork)
}

// IsGuardError checks if the error is a guard-rail refusal.
func IsGuardError(err error) bool {
	return isCategory(err, CategoryGuard)
}

// IsAuthFailure reports whether err is an upstream 401 or 403.
func IsAuthFailure(err error) bool {
	var up *UpstreamError
	if errors.As(err, &up) {
		return up.IsAuthFailure()
	}

	return false
}

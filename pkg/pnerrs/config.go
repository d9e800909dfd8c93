package pnerrs

// ConfigurationError represents missing required environment.
type ConfigurationError struct {
	*BaseError
	variables []string
}

// NewConfigurationError creates a configuration error naming every
// variable that would satisfy the requirement.
func NewConfigurationError(
	code ErrorCode,
	message string,
	variables ...string,
) *ConfigurationError {
	err := &ConfigurationError{
		BaseError: NewBaseError(CategoryConfiguration, code, message, nil),
		variables: variables,
	}
	_ = err.WithMetadata("variables", variables)

	return err
}

// Name returns the error name.
func (*ConfigurationError) Name() string {
	return "ConfigurationError"
}

// Variables returns the environment variables named by the error.
func (e *ConfigurationError) Variables() []string {
	return e.variables
}

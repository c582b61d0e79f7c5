package config

import "fmt"

// ConfigError represents an invalid run configuration.
type ConfigError struct {
	// Field is the configuration field that caused the error.
	Field string
	// Message is the error message.
	Message string
	// Cause is the underlying error if any.
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		if e.Cause != nil {
			return fmt.Sprintf("invalid configuration [%s]: %s: %v", e.Field, e.Message, e.Cause)
		}
		return fmt.Sprintf("invalid configuration [%s]: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewFieldError creates a ConfigError for a single field.
func NewFieldError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

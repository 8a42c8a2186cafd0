package models

import (
	"errors"
	"fmt"
)

// ErrRuntimeFailure marks an unexpected fault inside a trajectory. It aborts
// the whole run; there is no retry.
var ErrRuntimeFailure = errors.New("simulation runtime failure")

// ConfigurationError reports a malformed portfolio or option set.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Message
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// NewConfigurationError builds a ConfigurationError with a formatted message.
func NewConfigurationError(field, format string, a ...interface{}) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, a...)}
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

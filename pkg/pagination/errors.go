package pagination

import "fmt"

// ConfigurationError reports an invalid pagination parameter or config
// value. It is always raised before any page fetch is issued: a zero or
// negative limit is rejected, not clamped, so caller bugs stay visible.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("pagination config: %s %s", e.Field, e.Reason)
}

func newConfigError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

package pagination

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds page sizing and auto-pagination policy for a Paginator.
type Config struct {
	// DefaultPageSize is used when a call does not request a page size.
	DefaultPageSize int `validate:"required,gt=0"`

	// MaxPageSize is the hard upper clamp on any requested page size.
	MaxPageSize int `validate:"required,gtefield=DefaultPageSize"`

	// MaxTotalResults caps cumulative items across one retrieval,
	// truncating the final page. Zero means no cap.
	MaxTotalResults int `validate:"gte=0"`

	// AutoPaginate is the default policy when a call does not choose one.
	// When false, FetchAll and IterPages stop after the first page.
	AutoPaginate bool

	// WarnOnLargeRequests logs a warning for unbounded or very large
	// retrievals. Advisory only, no behavioral change.
	WarnOnLargeRequests bool
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		DefaultPageSize:     100,
		MaxPageSize:         1000,
		MaxTotalResults:     10000,
		AutoPaginate:        true,
		WarnOnLargeRequests: true,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return newConfigError("config", "invalid: %v", err)
	}
	return nil
}

package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ConfigurationError reports missing or unusable configuration. It is raised
// before any network call.
type ConfigurationError struct {
	Missing []string          // required variables that are unset or empty
	Invalid map[string]string // variable -> problem
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required environment variables: "+strings.Join(e.Missing, ", "))
	}
	for _, key := range slices.Sorted(maps.Keys(e.Invalid)) {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Invalid[key]))
	}
	if len(parts) == 0 {
		return "invalid configuration"
	}
	return strings.Join(parts, "; ")
}

// Empty reports whether nothing was recorded.
func (e *ConfigurationError) Empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

// AuthenticationError means no access token could be obtained. Fatal.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string { return "authentication failed: " + e.Err.Error() }
func (e *AuthenticationError) Unwrap() error { return e.Err }

// ListingError means the registrations collection could not be fetched. Fatal.
type ListingError struct {
	Err error
}

func (e *ListingError) Error() string { return "listing registrations failed: " + e.Err.Error() }
func (e *ListingError) Unwrap() error { return e.Err }

// MalformedResponseError means a response body did not have the expected
// shape. Fatal where the token or listing is concerned.
type MalformedResponseError struct {
	Endpoint string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.Endpoint, e.Err)
}
func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ExportError means the report file could not be written.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s failed: %v", e.Path, e.Err)
}
func (e *ExportError) Unwrap() error { return e.Err }

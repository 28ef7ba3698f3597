package models

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigError represents missing or invalid settings detected before any network call
type ConfigError struct {
	Setting string // "aws.regions", "aws.max_attempts", etc.
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid configuration for %s: %s: %v", e.Setting, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid configuration for %s: %s", e.Setting, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// TemplateError represents a parameter name template that could not be rendered
type TemplateError struct {
	Template string
	Message  string
	Cause    error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to render template '%s': %s: %v", e.Template, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to render template '%s': %s", e.Template, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// FetchError represents a failed parameter fetch in a single region
type FetchError struct {
	Region string
	Cause  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch parameters in %s: %v", e.Region, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// KeyFailure is a single parameter write that did not succeed
type KeyFailure struct {
	Region string
	Name   string
	Cause  error
}

// SetError lists every parameter that could not be written. All other
// parameters were still attempted.
type SetError struct {
	Failures []KeyFailure
}

func (e *SetError) Error() string {
	lines := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		lines = append(lines, fmt.Sprintf("  %s in %s: %v", f.Name, f.Region, f.Cause))
	}
	sort.Strings(lines)
	return fmt.Sprintf("failed to set %d parameter(s):\n%s", len(e.Failures), strings.Join(lines, "\n"))
}

func (e *SetError) Unwrap() []error {
	causes := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		causes = append(causes, f.Cause)
	}
	return causes
}

// Mismatch is a parameter whose live value differs from the requested one.
// Actual is nil when the parameter does not exist.
type Mismatch struct {
	Region   string
	Name     string
	Expected string
	Actual   *string
}

// ValidationError lists every written parameter whose live value does not
// match what was requested
type ValidationError struct {
	Mismatches []Mismatch
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		actual := "<missing>"
		if m.Actual != nil {
			actual = fmt.Sprintf("'%s'", *m.Actual)
		}
		lines = append(lines, fmt.Sprintf("  %s in %s: expected '%s', found %s", m.Name, m.Region, m.Expected, actual))
	}
	sort.Strings(lines)
	return fmt.Sprintf("%d parameter(s) do not match requested values:\n%s", len(e.Mismatches), strings.Join(lines, "\n"))
}

// EmptySourceError means no parameters exist for the source version
type EmptySourceError struct {
	Version string
}

func (e *EmptySourceError) Error() string {
	return fmt.Sprintf("found no parameters in source version %s", e.Version)
}

// LookupError means a name expected by an association is absent
type LookupError struct {
	Region string
	Name   string
	Source string // "association", "write-set"
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("parameter '%s' in %s not found in %s", e.Name, e.Region, e.Source)
}

// MissingFieldError represents a required field absent from an API response
type MissingFieldError struct {
	Region string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %s in image returned from %s", e.Field, e.Region)
}

// MissingExpectedPublicError means the backend returned an image that was not requested
type MissingExpectedPublicError struct {
	Region  string
	ImageID string
}

func (e *MissingExpectedPublicError) Error() string {
	return fmt.Sprintf("image %s returned from %s is missing from expected image publicity map", e.ImageID, e.Region)
}

// DescribeImagesError represents a failed image listing in a region
type DescribeImagesError struct {
	Region string
	Cause  error
}

func (e *DescribeImagesError) Error() string {
	return fmt.Sprintf("failed to describe images in %s: %v", e.Region, e.Cause)
}

func (e *DescribeImagesError) Unwrap() error {
	return e.Cause
}

// LaunchPermissionsError represents a failed launch permission lookup for one image
type LaunchPermissionsError struct {
	Region  string
	ImageID string
	Cause   error
}

func (e *LaunchPermissionsError) Error() string {
	return fmt.Sprintf("failed to retrieve launch permissions for image %s in %s: %v", e.ImageID, e.Region, e.Cause)
}

func (e *LaunchPermissionsError) Unwrap() error {
	return e.Cause
}

// ProviderError represents cloud provider operation errors
type ProviderError struct {
	Provider  string // "aws"
	Operation string // "load-config", "validate-credentials", etc.
	Resource  string // region, profile, bucket, etc.
	Cause     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error during %s operation on resource '%s': %v",
		e.Provider, e.Operation, e.Resource, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// DocumentError represents a document that could not be read, parsed or written
type DocumentError struct {
	Location  string
	Operation string // "read", "parse", "write", "serialize"
	Cause     error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("failed to %s document '%s': %v", e.Operation, e.Location, e.Cause)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// InputValidationError represents user input validation errors
type InputValidationError struct {
	InputType string // "architecture", "status filter", etc.
	Value     string
	Expected  string // description of expected format
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s value '%s' (expected: %s)", e.InputType, e.Value, e.Expected)
}

package models

import (
	"errors"
	"fmt"
)

// ConfigurationError reports invalid run settings such as a non-positive
// concurrency cap or an empty pattern. It is always raised before any
// file is read.
type ConfigurationError struct {
	Field   string // Setting that failed validation (e.g. "threads")
	Message string // Human-readable explanation
}

// NewConfigurationError creates a ConfigurationError for the given field.
func NewConfigurationError(field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface for ConfigurationError.
func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Message)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// DirectoryAccessError reports that the root directory could not be listed,
// or that one of its entries could not be read. It aborts the whole run.
type DirectoryAccessError struct {
	Dir string
	Err error
}

// NewDirectoryAccessError wraps err with the directory it occurred in.
func NewDirectoryAccessError(dir string, err error) *DirectoryAccessError {
	return &DirectoryAccessError{Dir: dir, Err: err}
}

// Error implements the error interface for DirectoryAccessError.
func (e *DirectoryAccessError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot access directory %s", e.Dir)
	}
	return fmt.Sprintf("cannot access directory %s: %v", e.Dir, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *DirectoryAccessError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsDirectoryAccessError reports whether err is or wraps a DirectoryAccessError.
func IsDirectoryAccessError(err error) bool {
	var target *DirectoryAccessError
	return errors.As(err, &target)
}

// SPDX-License-Identifier: MPL-2.0

package modspec

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the sentinel wrapped by ConfigurationError.
	ErrConfiguration = errors.New("configuration error")
	// ErrIO is the sentinel wrapped by IOError.
	ErrIO = errors.New("i/o error")
)

type (
	// ConfigurationError reports declared inputs that cannot be satisfied:
	// a module that matches no artifact, a matched artifact without a file,
	// or an invalid effective module value.
	ConfigurationError struct {
		// Module identifies the offending module (may be empty).
		Module string
		// Reason is a human-readable description.
		Reason string
		// Err is the optional underlying cause.
		Err error
	}

	// IOError reports a failed filesystem operation.
	IOError struct {
		// Op is the operation that failed (e.g., "create module directory").
		Op string
		// Path is the path involved.
		Path string
		// Err is the underlying cause.
		Err error
	}
)

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(module, reason string, cause error) *ConfigurationError {
	return &ConfigurationError{Module: module, Reason: reason, Err: cause}
}

// NewIOError creates an IOError.
func NewIOError(op, path string, cause error) *IOError {
	return &IOError{Op: op, Path: path, Err: cause}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := e.Reason
	if e.Module != "" {
		msg = fmt.Sprintf("module %s: %s", e.Module, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the sentinel and the cause so both match with errors.Is().
func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Err}
}

// Error implements the error interface.
func (e *IOError) Error() string {
	msg := fmt.Sprintf("can't %s %q", e.Op, e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the sentinel and the cause so both match with errors.Is().
func (e *IOError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrIO}
	}
	return []error{ErrIO, e.Err}
}

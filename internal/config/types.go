// SPDX-License-Identifier: MPL-2.0

package config

import (
	"archive/zip"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// LogLevelDebug logs every staging step.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs progress messages.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"

	// CompressionDeflate compresses archive file entries with Deflate.
	CompressionDeflate Compression = "deflate"
	// CompressionStore writes archive file entries uncompressed.
	CompressionStore Compression = "store"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidCompression is returned when a Compression value is not recognized.
	ErrInvalidCompression = errors.New("invalid archive compression")
	// ErrInvalidFileName is returned when a configured file or directory name
	// is empty or not a single path segment.
	ErrInvalidFileName = errors.New("invalid file name")
	// ErrInvalidDebounce is returned when the watch debounce is not positive.
	ErrInvalidDebounce = errors.New("invalid watch debounce")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of messages written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// Compression selects how archive file entries are stored.
	Compression string

	// InvalidCompressionError is returned when a Compression value is not recognized.
	// It wraps ErrInvalidCompression for errors.Is() compatibility.
	InvalidCompressionError struct {
		Value Compression
	}

	// FileName is a single path segment: a file or directory name without
	// separators.
	FileName string

	// InvalidFileNameError is returned when a FileName is empty, whitespace,
	// "." or "..", or contains a path separator.
	InvalidFileNameError struct {
		Value FileName
	}

	// InvalidDebounceError is returned when the watch debounce is zero or negative.
	InvalidDebounceError struct {
		Value time.Duration
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sections.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// LogLevel is the minimum level written by the logger.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// Staging configures the staging tree under the build directory.
		Staging StagingConfig `json:"staging" mapstructure:"staging"`
		// Archive configures the zip writer.
		Archive ArchiveConfig `json:"archive" mapstructure:"archive"`
		// Ledger configures the attachment ledger.
		Ledger LedgerConfig `json:"ledger" mapstructure:"ledger"`
		// Watch configures `slotpack watch`.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// StagingConfig configures the staging tree.
	StagingConfig struct {
		DirName FileName `json:"dir_name" mapstructure:"dir_name"`
		Keep    bool     `json:"keep" mapstructure:"keep"`
	}

	// ArchiveConfig configures the archive writer.
	ArchiveConfig struct {
		Compression Compression `json:"compression" mapstructure:"compression"`
	}

	// LedgerConfig configures the attachment ledger.
	LedgerConfig struct {
		FileName FileName `json:"file_name" mapstructure:"file_name"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		// Debounce is how long to wait after the last change before re-running.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		// Ignore lists doublestar globs excluded from watching.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables verbose error output.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: LogLevelInfo,
		Staging: StagingConfig{
			DirName: "modules",
			Keep:    true,
		},
		Archive: ArchiveConfig{
			Compression: CompressionDeflate,
		},
		Ledger: LedgerConfig{
			FileName: "slotpack-attachments.yaml",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
			Ignore:   []string{},
		},
	}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Level converts the LogLevel to a charmbracelet/log level. Unknown values
// map to info.
func (l LogLevel) Level() log.Level {
	lvl, err := log.ParseLevel(string(l))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel so callers can use errors.Is for programmatic detection.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the Compression.
func (c Compression) String() string { return string(c) }

// IsValid returns whether the Compression is one of the defined methods.
func (c Compression) IsValid() (bool, []error) {
	switch c {
	case CompressionDeflate, CompressionStore:
		return true, nil
	default:
		return false, []error{&InvalidCompressionError{Value: c}}
	}
}

// Method returns the zip method for the Compression. Unknown values use Deflate.
func (c Compression) Method() uint16 {
	if c == CompressionStore {
		return zip.Store
	}
	return zip.Deflate
}

// Error implements the error interface.
func (e *InvalidCompressionError) Error() string {
	return fmt.Sprintf("invalid archive compression %q (valid: deflate, store)", e.Value)
}

// Unwrap returns ErrInvalidCompression so callers can use errors.Is for programmatic detection.
func (e *InvalidCompressionError) Unwrap() error { return ErrInvalidCompression }

// String returns the string representation of the FileName.
func (n FileName) String() string { return string(n) }

// IsValid returns whether the FileName is a single, non-blank path segment.
func (n FileName) IsValid() (bool, []error) {
	s := string(n)
	if strings.TrimSpace(s) == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return false, []error{&InvalidFileNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidFileNameError) Error() string {
	return fmt.Sprintf("invalid file name %q (must be a single path segment)", e.Value)
}

// Unwrap returns ErrInvalidFileName so callers can use errors.Is for programmatic detection.
func (e *InvalidFileNameError) Unwrap() error { return ErrInvalidFileName }

// Error implements the error interface.
func (e *InvalidDebounceError) Error() string {
	return fmt.Sprintf("invalid watch debounce %s (must be positive)", e.Value)
}

// Unwrap returns ErrInvalidDebounce so callers can use errors.Is for programmatic detection.
func (e *InvalidDebounceError) Unwrap() error { return ErrInvalidDebounce }

// IsValid returns whether the Config has valid fields. Values coming from
// environment variables bypass the CUE schema, so this runs after every load.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Staging.DirName.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Archive.Compression.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Ledger.FileName.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Watch.Debounce <= 0 {
		errs = append(errs, &InvalidDebounceError{Value: c.Watch.Debounce})
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig so callers can use errors.Is for programmatic detection.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

const (
	// exitCodeFailure reports I/O and runtime failures.
	exitCodeFailure = 1
	// exitCodeConfiguration reports an unusable manifest or module
	// declaration that a rerun cannot fix.
	exitCodeConfiguration = 2
)

// ExitError signals a specific non-zero exit code without calling os.Exit
// inside RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the slotpack CLI commands.
//
// Every command receives an *App carrying the configuration provider, the
// filesystem and the output writers, so tests can run the full command tree
// against temporary directories and captured output.
package cmd

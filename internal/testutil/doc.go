// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on error, and a
// fixture that lays out a complete slotpack project on disk.
package testutil

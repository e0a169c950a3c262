// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of known issues.
//
// An [ActionableError] says which operation failed, on which resource, and
// what the user can do about it. Known failure classes have an [Issue] page
// with Markdown guidance that the CLI renders with glamour.
package issue

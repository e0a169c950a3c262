// SPDX-License-Identifier: MPL-2.0

// Package assemble builds a project's module-repository archive: it merges the
// hand-authored module descriptors into a staging tree, places the module
// artifacts in their slot directories, zips the tree and registers the zip as
// an attached build output.
//
// Projects without a src/main/modules directory are skipped without error.
package assemble

// SPDX-License-Identifier: MPL-2.0

// Package manifest loads the inputs of a module assembly run from disk.
//
// A project manifest (slotpack.cue) describes the project identity, the
// modules to materialize, an optional category, and where the resolved
// dependencies come from. Resolved dependencies are read from a TOML or YAML
// resolution file written by the build's dependency resolution, optionally
// followed by entries listed inline in the manifest.
package manifest

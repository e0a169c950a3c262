// SPDX-License-Identifier: MPL-2.0

// Package config handles slotpack's user configuration using Viper with CUE as
// the file format.
//
// Configuration is loaded from ~/.config/slotpack/config.cue (XDG on Linux,
// ~/Library/Application Support/slotpack/config.cue on macOS,
// %APPDATA%\slotpack\config.cue on Windows), or from the file given with
// --config. Files are validated against the embedded config_schema.cue before
// being merged over the defaults. SLOTPACK_* environment variables override
// both (for example SLOTPACK_ARCHIVE_COMPRESSION=store).
package config

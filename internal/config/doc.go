// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/modrun/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/modrun/config.cue on macOS, %APPDATA%\modrun\config.cue
// on Windows, or $MODRUN_CONFIG_DIR when set), falling back to config.cue in the current
// directory. It selects the module repositories, the git clone cache, the default entry
// point and UI settings. Environment variables prefixed with MODRUN_ override file values.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config

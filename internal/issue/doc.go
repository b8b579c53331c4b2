// SPDX-License-Identifier: MPL-2.0

// Package issue turns launch and configuration failures into user-facing
// output.
//
// ActionableError wraps a failure with the operation, the module or file
// involved and one-line hints. The catalog maps each failure class to an
// Id with a Markdown page, rendered with glamour in verbose mode.
package issue

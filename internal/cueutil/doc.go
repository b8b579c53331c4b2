// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and
// decodes them into Go values.
//
// Compile the schema once, then decode each document against it:
//
//	var moduleSchema = cueutil.MustCompile(schemaSource, "#Module")
//
//	var d Descriptor
//	err := moduleSchema.Decode(data, &d, cueutil.WithFilename(path))
//
// Errors are reported as "<file>: <path>: <message>" so users can find the
// offending field.
package cueutil

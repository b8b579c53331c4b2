// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers that fail the test on error, for
// laying out repository and module fixtures on disk.
package testutil

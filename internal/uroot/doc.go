// SPDX-License-Identifier: MPL-2.0

// Package uroot runs common file utilities in-process with the u-root core
// implementations, so entry-point scripts behave the same on hosts without
// a POSIX userland.
package uroot

// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModuleNotFound is returned when no repository holds the module.
	ErrModuleNotFound = errors.New("module not found")
	// ErrNoMatchingVersion is returned when the module exists but no version
	// satisfies the request.
	ErrNoMatchingVersion = errors.New("no matching version")
	// ErrVersionConflict is returned when one module is required at two
	// different versions.
	ErrVersionConflict = errors.New("version conflict")
	// ErrUnsupportedRepository is returned for repository locations that
	// cannot be read.
	ErrUnsupportedRepository = errors.New("unsupported repository")
)

type (
	// NotFoundError reports a module missing from every repository.
	NotFoundError struct {
		Name    string
		Version string
		// Searched lists the repository locations in search order.
		Searched []string
	}

	// ConflictError reports a module required at incompatible versions.
	ConflictError struct {
		Name string
		// Versions are the two resolved versions, first one kept.
		Versions [2]string
		// RequiredBy is the module whose requirement caused the conflict.
		RequiredBy string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	module := e.Name
	if e.Version != "" {
		module += "/" + e.Version
	}
	if len(e.Searched) == 0 {
		return fmt.Sprintf("module %s not found: no repositories configured", module)
	}
	return fmt.Sprintf("module %s not found in %s", module, strings.Join(e.Searched, ", "))
}

// Unwrap returns ErrModuleNotFound.
func (e *NotFoundError) Unwrap() error { return ErrModuleNotFound }

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("module %s is required at version %s by %s but version %s is already selected",
		e.Name, e.Versions[1], e.RequiredBy, e.Versions[0])
}

// Unwrap returns ErrVersionConflict.
func (e *ConflictError) Unwrap() error { return ErrVersionConflict }

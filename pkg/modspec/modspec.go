// SPDX-License-Identifier: MPL-2.0

// Package modspec parses the "name[/version]" module token accepted on the
// command line.
package modspec

import (
	"errors"
	"fmt"
	"strings"
)

// Separator splits the module name from its version.
const Separator = "/"

// ErrMalformed is the sentinel error wrapped by MalformedError.
var ErrMalformed = errors.New("malformed module spec")

type (
	// Reference identifies a module by name and, optionally, version.
	// An empty Version means no version was requested.
	Reference struct {
		Name    string
		Version string
	}

	// MalformedError is returned when a module token cannot be split into
	// a name and a version. Missing names the half that was absent.
	MalformedError struct {
		Input   string
		Missing string
	}
)

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("missing %s: %s", e.Missing, e.Input)
}

// Unwrap returns ErrMalformed so callers can use errors.Is.
func (e *MalformedError) Unwrap() error { return ErrMalformed }

// Parse splits token at the first separator. A token without a separator
// is a bare module name.
func Parse(token string) (Reference, error) {
	p := strings.Index(token, Separator)
	switch {
	case token == "" || p == 0:
		return Reference{}, &MalformedError{Input: token, Missing: "module name"}
	case p == len(token)-1:
		return Reference{}, &MalformedError{Input: token, Missing: "version"}
	case p < 0:
		return Reference{Name: token}, nil
	}
	return Reference{Name: token[:p], Version: token[p+1:]}, nil
}

// HasVersion reports whether a version was requested.
func (r Reference) HasVersion() bool {
	return r.Version != ""
}

// String returns the reference in "name[/version]" form.
func (r Reference) String() string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + Separator + r.Version
}

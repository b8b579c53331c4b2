// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"errors"
	"fmt"

	"github.com/invowk/modrun/pkg/modspec"
)

const (
	// KindFunction is an entry point whose name starts with a lowercase letter.
	KindFunction Kind = iota
	// KindClass is an entry point whose name starts with an uppercase letter.
	KindClass
)

var (
	// ErrMalformedModuleSpec is returned for a bad "name[/version]" token.
	ErrMalformedModuleSpec = modspec.ErrMalformed
	// ErrNoInitialModule is returned when no module was given.
	ErrNoInitialModule = errors.New("no initial module defined")
	// ErrModuleNameMismatch is returned when the descriptor declares another name.
	ErrModuleNameMismatch = errors.New("module name mismatch")
	// ErrModuleVersionMismatch is returned when the descriptor declares another version.
	ErrModuleVersionMismatch = errors.New("module version mismatch")
	// ErrEntryPointNotFound is returned when no symbol matches the entry point.
	ErrEntryPointNotFound = errors.New("entry point not found")
	// ErrEntryPointNotAccessible is returned when the entry point is not shared.
	ErrEntryPointNotAccessible = errors.New("entry point not accessible")
	// ErrEntryPointNotInvocable is returned when the entry point requires arguments.
	ErrEntryPointNotInvocable = errors.New("entry point not invocable")

	// ErrSymbolNotFound is returned by ExecutionContext lookups for names
	// that do not exist. It is never returned to launch callers directly.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNoExecutionContext is returned by Call outside of a launch.
	ErrNoExecutionContext = errors.New("no active execution context")
)

type (
	// Kind classifies an entry point for diagnostics.
	Kind int

	// MismatchError reports a disagreement between the requested module
	// identity and the identity the module declares.
	MismatchError struct {
		// Err is ErrModuleNameMismatch or ErrModuleVersionMismatch.
		Err       error
		Requested string
		Declared  string
	}

	// EntryPointError reports an entry point that cannot be run.
	EntryPointError struct {
		// Err is one of the ErrEntryPoint* sentinels.
		Err  error
		Kind Kind
		// Name is the entry point as requested, before quoting and mangling.
		Name string
		// Suggestion is a qualified alternative name, set only for
		// unqualified names that were not found.
		Suggestion string
	}
)

// String returns "class" or "function".
func (k Kind) String() string {
	if k == KindClass {
		return "class"
	}
	return "function"
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	field := "name"
	if errors.Is(e.Err, ErrModuleVersionMismatch) {
		field = "version"
	}
	return fmt.Sprintf("input module %s doesn't match module's %s: %s != %s", field, field, e.Requested, e.Declared)
}

// Unwrap returns the sentinel error.
func (e *MismatchError) Unwrap() error { return e.Err }

// Error implements the error interface.
func (e *EntryPointError) Error() string {
	switch {
	case errors.Is(e.Err, ErrEntryPointNotFound):
		msg := fmt.Sprintf("could not find toplevel %s '%s'", e.Kind, e.Name)
		if e.Suggestion != "" {
			msg += fmt.Sprintf("; class and function names need to be fully qualified, maybe you meant '%s'?", e.Suggestion)
		}
		return msg
	case errors.Is(e.Err, ErrEntryPointNotAccessible):
		return fmt.Sprintf("cannot run toplevel %s '%s': it should be shared", e.Kind, e.Name)
	case errors.Is(e.Err, ErrEntryPointNotInvocable):
		return fmt.Sprintf("cannot run toplevel %s '%s': it should have no parameters or they should all have default values", e.Kind, e.Name)
	default:
		return fmt.Sprintf("cannot run toplevel %s '%s': %v", e.Kind, e.Name, e.Err)
	}
}

// Unwrap returns the sentinel error.
func (e *EntryPointError) Unwrap() error { return e.Err }

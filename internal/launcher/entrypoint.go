// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultModule is the reserved name for loose, unnamed code.
	DefaultModule = "default"
	// DefaultEntry is the entry point used when none is given.
	DefaultEntry = "run"
	// MangleSuffix is appended to lowercase-initial entry points before lookup.
	MangleSuffix = "_"

	namespaceQualifier = "::"
	memberQualifier    = "."
)

// EntryPoint is a resolved entry point.
type EntryPoint struct {
	// Module is the module the entry point was resolved for.
	Module string
	// Raw is the reference as given by the caller; empty when defaulted.
	Raw string
	// Target is the name requested, with "::" normalised to ".".
	Target string
	// Lookup is the name the symbol was found under.
	Lookup string
	Kind   Kind
	Symbol Symbol
}

// TargetName returns the entry point name to resolve for module. Without
// raw it is "<module>.run", or plain "run" for the default module.
// Otherwise raw is returned with every "::" replaced by ".".
func TargetName(module, raw string) string {
	if raw == "" {
		if module == DefaultModule {
			return DefaultEntry
		}
		return module + memberQualifier + DefaultEntry
	}
	return strings.ReplaceAll(raw, namespaceQualifier, memberQualifier)
}

// ResolveEntryPoint resolves the entry point of module inside ec. raw is
// the caller's reference and may be empty.
func ResolveEntryPoint(ec ExecutionContext, module, raw string) (*EntryPoint, error) {
	target := TargetName(module, raw)
	quoted := ec.QuoteKeywords(target)
	ep := &EntryPoint{
		Module: module,
		Raw:    raw,
		Target: target,
		Kind:   classify(quoted),
	}

	candidates := []string{quoted}
	if isMangled(target) {
		candidates = []string{quoted + MangleSuffix, quoted}
	}

	for _, name := range candidates {
		sym, err := ec.Resolve(name)
		if err == nil {
			ep.Lookup = name
			ep.Symbol = sym
			return ep, nil
		}
		if !errors.Is(err, ErrSymbolNotFound) {
			return nil, err
		}
	}

	notFound := &EntryPointError{Err: ErrEntryPointNotFound, Kind: ep.Kind, Name: target}
	if module != DefaultModule && !strings.Contains(target, memberQualifier) {
		notFound.Suggestion = module + namespaceQualifier + raw
	}
	return nil, notFound
}

// classify reports the kind of name from its first letter. Unlike
// isMangled it looks at the whole qualified name, so "com.example.Main"
// is a function in diagnostics while still being looked up unmangled.
func classify(name string) Kind {
	if unicode.IsUpper(firstRune(name)) {
		return KindClass
	}
	return KindFunction
}

// isMangled reports whether the symbol for name carries MangleSuffix. It
// looks at the unquoted final segment, so quoting never changes the result.
func isMangled(name string) bool {
	return unicode.IsLower(firstRune(lastSegment(name)))
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, memberQualifier); i >= 0 {
		return name[i+1:]
	}
	return name
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

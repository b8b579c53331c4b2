// SPDX-License-Identifier: MPL-2.0

// Package semver parses semantic versions and matches them against version
// constraints. It is used to pick the effective version of a module when
// the requested version is absent or is a range.
package semver

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidVersion is returned when a string is not a semantic version.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidConstraint is returned when a string is not a version constraint.
	ErrInvalidConstraint = errors.New("invalid constraint")
	// ErrNoMatch is returned by Resolve when no version satisfies the constraint.
	ErrNoMatch = errors.New("no matching version")
)

type (
	// Version represents a parsed semantic version.
	Version struct {
		Major      int
		Minor      int
		Patch      int
		Prerelease string
		Original   string
	}

	// Term is a single comparison such as ">=1.2.0" or "^1.0".
	Term struct {
		// Op is the comparison operator (=, ^, ~, >, >=, <, <=).
		Op string
		// Version is the version to compare against.
		Version *Version
	}

	// Constraint is a conjunction of terms separated by whitespace,
	// e.g. ">=1.0.0 <2.0.0".
	Constraint struct {
		Terms    []Term
		Original string
	}
)

// semverRegex matches semantic version strings.
var semverRegex = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:-([0-9A-Za-z\-\.]+))?(?:\+([0-9A-Za-z\-\.]+))?$`)

// termRegex matches a single constraint term.
var termRegex = regexp.MustCompile(`^([~^]|>=|<=|>|<|=)?\s*(v?\d+(?:\.\d+)?(?:\.\d+)?(?:-[0-9A-Za-z\-\.]+)?)$`)

// Parse parses a version string into a Version.
func Parse(s string) (*Version, error) {
	matches := semverRegex.FindStringSubmatch(s)
	if matches == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	v := &Version{Original: s, Prerelease: matches[4]}

	var err error
	if v.Major, err = strconv.Atoi(matches[1]); err != nil {
		return nil, fmt.Errorf("%w: major component of %q: %w", ErrInvalidVersion, s, err)
	}
	if matches[2] != "" {
		if v.Minor, err = strconv.Atoi(matches[2]); err != nil {
			return nil, fmt.Errorf("%w: minor component of %q: %w", ErrInvalidVersion, s, err)
		}
	}
	if matches[3] != "" {
		if v.Patch, err = strconv.Atoi(matches[3]); err != nil {
			return nil, fmt.Errorf("%w: patch component of %q: %w", ErrInvalidVersion, s, err)
		}
	}

	return v, nil
}

// IsValid reports whether s is a semantic version.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the version as originally written.
func (v *Version) String() string {
	return v.Original
}

// Compare returns -1 if v < other, 0 if they are equal and 1 if v > other.
// Prerelease versions sort below their release.
func (v *Version) Compare(other *Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}

	switch {
	case v.Prerelease == other.Prerelease:
		return 0
	case v.Prerelease == "":
		return 1
	case other.Prerelease == "":
		return -1
	case v.Prerelease < other.Prerelease:
		return -1
	default:
		return 1
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ParseConstraint parses a whitespace-separated conjunction of terms.
func ParseConstraint(s string) (*Constraint, error) {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidConstraint)
	}

	c := &Constraint{Original: s}
	for i := 0; i < len(fields); i++ {
		field := fields[i]
		// Allow a detached operator, as in ">= 1.0.0".
		if isOperator(field) && i+1 < len(fields) {
			field += fields[i+1]
			i++
		}
		m := termRegex.FindStringSubmatch(field)
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidConstraint, s)
		}
		op := m[1]
		if op == "" {
			op = "="
		}
		v, err := Parse(m[2])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidConstraint, s, err)
		}
		c.Terms = append(c.Terms, Term{Op: op, Version: v})
	}
	return c, nil
}

func isOperator(s string) bool {
	switch s {
	case "=", "^", "~", ">", ">=", "<", "<=":
		return true
	}
	return false
}

// IsConstraint reports whether s parses as a constraint.
func IsConstraint(s string) bool {
	_, err := ParseConstraint(s)
	return err == nil
}

// Matches reports whether v satisfies every term of the constraint.
func (c *Constraint) Matches(v *Version) bool {
	for _, t := range c.Terms {
		if !t.Matches(v) {
			return false
		}
	}
	return true
}

// String returns the constraint as originally written.
func (c *Constraint) String() string {
	return c.Original
}

// Matches reports whether v satisfies the term.
func (t Term) Matches(v *Version) bool {
	c := t.Version
	switch t.Op {
	case "=":
		return v.Compare(c) == 0
	case "^":
		// ^1.2.3 := >=1.2.3 <2.0.0, ^0.2.3 := >=0.2.3 <0.3.0, ^0.0.3 := >=0.0.3 <0.0.4
		if v.Compare(c) < 0 {
			return false
		}
		if c.Major != 0 {
			return v.Major == c.Major
		}
		if c.Minor != 0 {
			return v.Major == 0 && v.Minor == c.Minor
		}
		return v.Major == 0 && v.Minor == 0 && v.Patch == c.Patch
	case "~":
		// ~1.2.3 := >=1.2.3 <1.3.0
		if v.Compare(c) < 0 {
			return false
		}
		return v.Major == c.Major && v.Minor == c.Minor
	case ">":
		return v.Compare(c) > 0
	case ">=":
		return v.Compare(c) >= 0
	case "<":
		return v.Compare(c) < 0
	case "<=":
		return v.Compare(c) <= 0
	default:
		return false
	}
}

// Sort returns the valid versions of vs in descending order (newest first).
// Strings that are not versions are dropped.
func Sort(vs []string) []string {
	parsed := make([]*Version, 0, len(vs))
	for _, s := range vs {
		v, err := Parse(s)
		if err != nil {
			continue
		}
		parsed = append(parsed, v)
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].Compare(parsed[j]) > 0
	})

	result := make([]string, len(parsed))
	for i, v := range parsed {
		result[i] = v.Original
	}
	return result
}

// Latest returns the highest valid version of vs, or "" if none is valid.
func Latest(vs []string) string {
	sorted := Sort(vs)
	if len(sorted) == 0 {
		return ""
	}
	return sorted[0]
}

// Resolve returns the highest version in available that satisfies the
// constraint string.
func Resolve(constraint string, available []string) (string, error) {
	c, err := ParseConstraint(constraint)
	if err != nil {
		return "", err
	}
	for _, s := range Sort(available) {
		v, err := Parse(s)
		if err != nil {
			continue
		}
		if c.Matches(v) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: %s)", ErrNoMatch, constraint, strings.Join(available, ", "))
}

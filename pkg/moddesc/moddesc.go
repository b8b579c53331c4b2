// SPDX-License-Identifier: MPL-2.0

// Package moddesc decodes module descriptors.
//
// A descriptor declares a module's canonical name and version and the
// modules it requires. Two formats are accepted: the current CUE format,
// validated against an embedded schema, and the legacy TOML format.
package moddesc

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/invowk/modrun/internal/cueutil"
)

const (
	// ExtCUE is the file extension of current-format descriptors.
	ExtCUE = ".cue"
	// ExtTOML is the file extension of legacy-format descriptors.
	ExtTOML = ".toml"
)

var (
	//go:embed descriptor_schema.cue
	descriptorSchema string

	moduleSchema = cueutil.MustCompile(descriptorSchema, "#Module")

	// ErrInvalidDescriptor is the sentinel error wrapped by InvalidDescriptorError.
	ErrInvalidDescriptor = errors.New("invalid module descriptor")
	// ErrUnknownFormat is returned by Load for files that are neither CUE nor TOML.
	ErrUnknownFormat = errors.New("unknown descriptor format")

	moduleNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)*$`)
)

type (
	// Descriptor is a module's declared identity and requirements.
	Descriptor struct {
		Name        string        `json:"name" toml:"name"`
		Version     string        `json:"version" toml:"version"`
		Description string        `json:"description,omitempty" toml:"description,omitempty"`
		Requires    []Requirement `json:"requires,omitempty" toml:"requires,omitempty"`
		// FilePath is where the descriptor was read from (not part of the file).
		FilePath string `json:"-" toml:"-"`
	}

	// Requirement declares a dependency on another module.
	Requirement struct {
		Name string `json:"name" toml:"name"`
		// Version is an exact version or a constraint; empty means latest.
		Version string `json:"version,omitempty" toml:"version,omitempty"`
	}

	// InvalidDescriptorError collects field-level problems of a descriptor.
	InvalidDescriptorError struct {
		FilePath string
		Problems []string
	}
)

// Error implements the error interface.
func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("%s: %s", e.FilePath, strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrInvalidDescriptor so callers can use errors.Is.
func (e *InvalidDescriptorError) Unwrap() error { return ErrInvalidDescriptor }

// IsValidModuleName reports whether name is a dot-separated identifier
// sequence such as "com.example.foobar".
func IsValidModuleName(name string) bool {
	return moduleNameRegex.MatchString(name)
}

// ParseCUE decodes a current-format descriptor.
func ParseCUE(data []byte, filename string) (*Descriptor, error) {
	var d Descriptor
	if err := moduleSchema.Decode(data, &d, cueutil.WithFilename(filename)); err != nil {
		return nil, err
	}
	d.FilePath = filename
	return &d, nil
}

// ParseTOML decodes a legacy-format descriptor. The TOML format has no
// schema, so the same constraints are checked in Go.
func ParseTOML(data []byte, filename string) (*Descriptor, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}

	var d Descriptor
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	d.FilePath = filename

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads a descriptor file, choosing the format from its extension.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module descriptor: %w", err)
	}

	switch filepath.Ext(path) {
	case ExtCUE:
		return ParseCUE(data, path)
	case ExtTOML:
		return ParseTOML(data, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Validate checks the descriptor fields.
func (d *Descriptor) Validate() error {
	var problems []string
	if !IsValidModuleName(d.Name) {
		problems = append(problems, fmt.Sprintf("name %q is not a valid module name", d.Name))
	}
	if strings.TrimSpace(d.Version) == "" {
		problems = append(problems, "version must not be empty")
	}
	for i, req := range d.Requires {
		if !IsValidModuleName(req.Name) {
			problems = append(problems, fmt.Sprintf("requires[%d]: name %q is not a valid module name", i, req.Name))
		}
	}
	if len(problems) > 0 {
		return &InvalidDescriptorError{FilePath: d.FilePath, Problems: problems}
	}
	return nil
}

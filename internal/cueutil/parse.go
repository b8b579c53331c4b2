// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultMaxFileSize is the default maximum size of a decoded document (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	// Schema is one definition of a compiled CUE schema. Documents are
	// unified with it and validated before decoding. A Schema is safe for
	// concurrent use.
	Schema struct {
		mu   sync.Mutex
		ctx  *cue.Context
		def  cue.Value
		name string
	}

	// Option configures a single decode.
	Option func(*decodeOptions)

	decodeOptions struct {
		maxFileSize int64
		partial     bool
		filename    string
	}
)

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *decodeOptions) { o.filename = name }
}

// WithMaxFileSize sets the maximum accepted document size.
func WithMaxFileSize(size int64) Option {
	return func(o *decodeOptions) { o.maxFileSize = size }
}

// Partial accepts documents that leave optional fields without concrete
// values, as config files do.
func Partial() Option {
	return func(o *decodeOptions) { o.partial = true }
}

// Compile compiles src and selects the definition at path (e.g. "#Module").
func Compile(src, path string) (*Schema, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(src)
	if root.Err() != nil {
		return nil, fmt.Errorf("compile schema: %w", root.Err())
	}
	def := root.LookupPath(cue.ParsePath(path))
	if def.Err() != nil {
		return nil, fmt.Errorf("schema definition %s: %w", path, def.Err())
	}
	return &Schema{ctx: ctx, def: def, name: path}, nil
}

// MustCompile is Compile for embedded schemas; it panics on error.
func MustCompile(src, path string) *Schema {
	s, err := Compile(src, path)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the definition path the schema was compiled with.
func (s *Schema) Name() string { return s.name }

// Decode validates data and decodes it into target, which is usually a
// pointer to a struct with json tags.
func (s *Schema) Decode(data []byte, target any, opts ...Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unified, filename, err := s.unify(data, opts)
	if err != nil {
		return err
	}
	if err := unified.Decode(target); err != nil {
		return FormatError(err, filename)
	}
	return nil
}

// DecodeMap validates data and decodes it into a generic map, suitable for
// merging into viper. Unset optional fields are absent from the map.
func (s *Schema) DecodeMap(data []byte, opts ...Option) (map[string]any, error) {
	var m map[string]any
	if err := s.Decode(data, &m, opts...); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Schema) unify(data []byte, opts []Option) (cue.Value, string, error) {
	o := decodeOptions{maxFileSize: DefaultMaxFileSize, filename: "<input>"}
	for _, opt := range opts {
		opt(&o)
	}

	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return cue.Value{}, o.filename, err
	}

	doc := s.ctx.CompileBytes(data, cue.Filename(o.filename))
	if doc.Err() != nil {
		return cue.Value{}, o.filename, FormatError(doc.Err(), o.filename)
	}

	unified := s.def.Unify(doc)
	if err := unified.Validate(cue.Concrete(!o.partial)); err != nil {
		return cue.Value{}, o.filename, FormatError(err, o.filename)
	}
	return unified, o.filename, nil
}

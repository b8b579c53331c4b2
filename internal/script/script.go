// SPDX-License-Identifier: MPL-2.0

package script

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/invowk/modrun/internal/launcher"
)

const (
	// Ext is the file extension of entry point scripts.
	Ext = ".sh"

	directivePrefix = "#modrun:"

	directiveShared = "shared"
	directiveParam  = "param"
	directiveDoc    = "doc"
)

// ErrInvalidHeader is the sentinel error wrapped by HeaderError.
var ErrInvalidHeader = errors.New("invalid script header")

type (
	// Script is a parsed entry point. It implements launcher.Symbol.
	Script struct {
		path   string
		name   string
		shared bool
		params []launcher.Param
		doc    string
		file   *syntax.File
	}

	// HeaderError reports a bad #modrun: directive.
	HeaderError struct {
		Path string
		Line int
		Msg  string
	}
)

// Error implements the error interface.
func (e *HeaderError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// Unwrap returns ErrInvalidHeader.
func (e *HeaderError) Unwrap() error { return ErrInvalidHeader }

// Load reads and parses the script at path. name is the symbol name the
// script was resolved under.
func Load(path, name string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return Parse(bytes.NewReader(data), path, name)
}

// Parse parses a script from r. path is used in error messages.
func Parse(r io.Reader, path, name string) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}

	s := &Script{path: path, name: name}
	if err := s.parseHeader(data); err != nil {
		return nil, err
	}

	file, err := syntax.NewParser().Parse(bytes.NewReader(data), path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	s.file = file
	return s, nil
}

// Name returns the symbol name.
func (s *Script) Name() string { return s.name }

// Shared reports whether the script is marked #modrun:shared.
func (s *Script) Shared() bool { return s.shared }

// Params returns the declared parameters in declaration order.
func (s *Script) Params() []launcher.Param { return s.params }

// Doc returns the #modrun:doc text.
func (s *Script) Doc() string { return s.doc }

// Path returns the file the script was read from.
func (s *Script) Path() string { return s.path }

// parseHeader reads directives from the leading comment block. The block
// ends at the first line that is neither blank nor a comment.
func (s *Script) parseHeader(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var docs []string
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if !strings.HasPrefix(text, "#") {
			break
		}
		directive, ok := strings.CutPrefix(text, directivePrefix)
		if !ok {
			continue
		}

		key, value, _ := strings.Cut(directive, " ")
		value = strings.TrimSpace(value)
		switch key {
		case directiveShared:
			if value != "" {
				return s.headerError(line, "#modrun:shared takes no value")
			}
			s.shared = true
		case directiveParam:
			if err := s.addParam(line, value); err != nil {
				return err
			}
		case directiveDoc:
			docs = append(docs, value)
		default:
			return s.headerError(line, fmt.Sprintf("unknown directive %q", key))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script %s: %w", s.path, err)
	}
	s.doc = strings.Join(docs, "\n")
	return nil
}

func (s *Script) addParam(line int, decl string) error {
	name, def, hasDefault := strings.Cut(decl, "=")
	if !syntax.ValidName(name) {
		return s.headerError(line, fmt.Sprintf("invalid parameter name %q", name))
	}
	for _, p := range s.params {
		if p.Name == name {
			return s.headerError(line, fmt.Sprintf("duplicate parameter %q", name))
		}
	}
	s.params = append(s.params, launcher.Param{Name: name, Default: def, HasDefault: hasDefault})
	return nil
}

func (s *Script) headerError(line int, msg string) error {
	return &HeaderError{Path: s.path, Line: line, Msg: msg}
}

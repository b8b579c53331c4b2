// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/syntax"

	"github.com/invowk/modrun/internal/launcher"
	"github.com/invowk/modrun/internal/script"
	"github.com/invowk/modrun/internal/uroot"
	"github.com/invowk/modrun/pkg/moddesc"
)

const (
	// EnvModule, EnvVersion and EnvPath are exported to running scripts.
	EnvModule  = "MODRUN_MODULE"
	EnvVersion = "MODRUN_VERSION"
	EnvPath    = "MODRUN_PATH"

	quotePrefix = "$"
)

var descriptorExts = []string{moddesc.ExtCUE, moddesc.ExtTOML}

type (
	// Dependency is a module resolved from a requirement.
	Dependency struct {
		Name    string
		Version string
		Root    string
	}

	// Context is an execution context over module roots on disk. It
	// implements launcher.ExecutionContext.
	Context struct {
		module  string
		version string
		roots   []string
		deps    []Dependency

		env      []string
		dir      string
		io       script.IO
		builtins *uroot.Registry
		logger   *log.Logger

		mu      sync.Mutex
		scripts map[string]*script.Script
	}
)

// ReadModuleMetadata reads the descriptor of module from a single module
// root, without any repository or dependency lookup.
func ReadModuleMetadata(root, module string) (*launcher.Metadata, error) {
	return launcher.ReadMetadata(newContext(module, "", []string{root}), module)
}

func newContext(module, version string, roots []string) *Context {
	return &Context{
		module:  module,
		version: version,
		roots:   roots,
		logger:  log.New(io.Discard),
		scripts: make(map[string]*script.Script),
	}
}

// Module implements launcher.ExecutionContext.
func (c *Context) Module() string { return c.module }

// Version implements launcher.ExecutionContext.
func (c *Context) Version() string { return c.version }

// Roots returns the search path: the module root, then its dependencies.
func (c *Context) Roots() []string { return c.roots }

// Dependencies returns the resolved requirements in search order.
func (c *Context) Dependencies() []Dependency { return c.deps }

// Resolve implements launcher.ExecutionContext. name must be quoted as
// QuoteKeywords does; an unquoted reserved word never resolves.
func (c *Context) Resolve(name string) (launcher.Symbol, error) {
	rel, ok := symbolPath(name, true)
	if !ok {
		return nil, fmt.Errorf("%w: invalid name %q", launcher.ErrSymbolNotFound, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.scripts[name]; ok {
		return s, nil
	}

	for _, root := range c.roots {
		path := filepath.Join(root, rel+script.Ext)
		if !isFile(path) {
			continue
		}
		s, err := script.Load(path, name)
		if err != nil {
			return nil, err
		}
		c.scripts[name] = s
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", launcher.ErrSymbolNotFound, name)
}

// Descriptor implements launcher.ExecutionContext.
func (c *Context) Descriptor(name string) (*launcher.Metadata, error) {
	d, err := c.descriptor(name)
	if err != nil {
		return nil, err
	}
	return &launcher.Metadata{Name: d.Name, Version: d.Version}, nil
}

// ModuleDescriptor returns the full descriptor of module, or nil when it
// has none.
func (c *Context) ModuleDescriptor(module string) (*moddesc.Descriptor, error) {
	for _, suffix := range []string{launcher.DescriptorSuffix, launcher.LegacyDescriptorSuffix} {
		d, err := c.descriptor(module + suffix)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, launcher.ErrSymbolNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func (c *Context) descriptor(name string) (*moddesc.Descriptor, error) {
	rel, ok := symbolPath(name, false)
	if !ok {
		return nil, fmt.Errorf("%w: invalid name %q", launcher.ErrSymbolNotFound, name)
	}
	for _, root := range c.roots {
		for _, ext := range descriptorExts {
			path := filepath.Join(root, rel+ext)
			if isFile(path) {
				return moddesc.Load(path)
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", launcher.ErrSymbolNotFound, name)
}

// QuoteKeywords implements launcher.ExecutionContext. Segments that are
// shell reserved words get a "$" prefix.
func (c *Context) QuoteKeywords(name string) string {
	segments := strings.Split(name, ".")
	for i, s := range segments {
		if syntax.IsKeyword(s) {
			segments[i] = quotePrefix + s
		}
	}
	return strings.Join(segments, ".")
}

// Invoke implements launcher.ExecutionContext. Nested calls write to the
// streams of the calling script.
func (c *Context) Invoke(ctx context.Context, sym launcher.Symbol, args []string) error {
	s, ok := sym.(*script.Script)
	if !ok {
		return fmt.Errorf("cannot invoke %s: not a script", sym.Name())
	}

	env := c.env
	if env == nil {
		env = os.Environ()
	}
	env = append(env[:len(env):len(env)],
		EnvModule+"="+c.module,
		EnvVersion+"="+c.version,
		EnvPath+"="+strings.Join(c.roots, string(os.PathListSeparator)),
	)

	streams := c.io
	if caller, ok := script.IOFrom(ctx); ok {
		streams = caller
	}

	c.logger.Debug("invoking script", "symbol", s.Name(), "path", s.Path(), "args", len(args))
	return s.Run(ctx, script.RunOptions{
		Args:     args,
		Env:      env,
		Dir:      c.dir,
		IO:       streams,
		Builtins: c.builtins,
	})
}

// symbolPath maps a dotted name to a path relative to a module root. With
// unquote set, "$"-quoted segments lose their prefix and bare reserved words
// are rejected; otherwise segments are taken literally.
func symbolPath(name string, unquote bool) (string, bool) {
	if name == "" {
		return "", false
	}
	segments := strings.Split(name, ".")
	for i, s := range segments {
		if unquote {
			if quoted, ok := strings.CutPrefix(s, quotePrefix); ok {
				s = quoted
			} else if syntax.IsKeyword(s) {
				return "", false
			}
		}
		if s == "" || s == ".." || strings.ContainsAny(s, `/\`) {
			return "", false
		}
		segments[i] = s
	}
	return filepath.Join(segments...), true
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

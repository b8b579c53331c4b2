// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type (
	fakeSymbol struct {
		name   string
		shared bool
		params []Param
	}

	invocation struct {
		symbol  string
		args    []string
		slot    ExecutionContext
		context ExecutionContext
	}

	// fakeContext resolves symbols from maps and records invocations.
	fakeContext struct {
		module      string
		version     string
		symbols     map[string]*fakeSymbol
		descriptors map[string]*Metadata
		keywords    map[string]bool
		resolveErr  error
		descErr     error
		invokeErr   error
		slot        *Slot

		lookups     []string
		invocations []invocation
	}

	fakeBuilder struct {
		ec    *fakeContext
		err   error
		calls []string
	}
)

func (s *fakeSymbol) Name() string    { return s.name }
func (s *fakeSymbol) Shared() bool    { return s.shared }
func (s *fakeSymbol) Params() []Param { return s.params }

func newFakeContext(module, version string) *fakeContext {
	return &fakeContext{
		module:      module,
		version:     version,
		symbols:     make(map[string]*fakeSymbol),
		descriptors: make(map[string]*Metadata),
		keywords:    map[string]bool{"do": true, "if": true},
	}
}

func (c *fakeContext) addSymbol(name string, shared bool, params ...Param) *fakeContext {
	c.symbols[name] = &fakeSymbol{name: name, shared: shared, params: params}
	return c
}

func (c *fakeContext) Module() string  { return c.module }
func (c *fakeContext) Version() string { return c.version }

func (c *fakeContext) Resolve(name string) (Symbol, error) {
	c.lookups = append(c.lookups, name)
	if c.resolveErr != nil {
		return nil, c.resolveErr
	}
	sym, ok := c.symbols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}
	return sym, nil
}

func (c *fakeContext) Descriptor(name string) (*Metadata, error) {
	c.lookups = append(c.lookups, name)
	if c.descErr != nil {
		return nil, c.descErr
	}
	md, ok := c.descriptors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}
	return md, nil
}

func (c *fakeContext) QuoteKeywords(name string) string {
	segments := strings.Split(name, ".")
	for i, s := range segments {
		if c.keywords[s] {
			segments[i] = "$" + s
		}
	}
	return strings.Join(segments, ".")
}

func (c *fakeContext) Invoke(ctx context.Context, sym Symbol, args []string) error {
	inv := invocation{symbol: sym.Name(), args: args}
	if c.slot != nil {
		inv.slot = c.slot.Current()
	}
	inv.context, _ = ExecutionContextFrom(ctx)
	c.invocations = append(c.invocations, inv)
	return c.invokeErr
}

func (b *fakeBuilder) Build(_ context.Context, name, version string, _ Repositories) (ExecutionContext, error) {
	b.calls = append(b.calls, name+"|"+version)
	if b.err != nil {
		return nil, b.err
	}
	return b.ec, nil
}

var errBoom = errors.New("boom")
